package coding

// Location is an ordered (group_id, object_id) pair with lexicographic
// ordering: group_id dominates, object_id breaks ties.
type Location struct {
	Group  uint64
	Object uint64
}

// Compare returns -1, 0, or 1 as l is less than, equal to, or greater
// than other, comparing Group first and Object second.
func (l Location) Compare(other Location) int {
	switch {
	case l.Group < other.Group:
		return -1
	case l.Group > other.Group:
		return 1
	case l.Object < other.Object:
		return -1
	case l.Object > other.Object:
		return 1
	default:
		return 0
	}
}

// Less reports whether l sorts before other.
func (l Location) Less(other Location) bool {
	return l.Compare(other) < 0
}

// Encode writes Group then Object, each as a varint.
func (l Location) Encode(w *Writer) error {
	if err := w.WriteVarInt(l.Group); err != nil {
		return err
	}
	return w.WriteVarInt(l.Object)
}

// DecodeLocation reads a Location.
func DecodeLocation(r *Reader) (Location, error) {
	group, err := r.ReadVarInt()
	if err != nil {
		return Location{}, err
	}
	object, err := r.ReadVarInt()
	if err != nil {
		return Location{}, err
	}
	return Location{Group: group, Object: object}, nil
}
