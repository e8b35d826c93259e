package coding

import "strings"

// maxNamespaceFields bounds the number of fields in a TrackNamespace.
const maxNamespaceFields = 32

// TrackNamespace is a tuple of byte-string fields forming a hierarchy
// via prefix matching. Two namespaces are equal iff field-by-field
// equal.
type TrackNamespace struct {
	Fields []TupleField
}

// NewTrackNamespace builds a TrackNamespace from plain strings, as a
// convenience for callers that don't need raw byte fields.
func NewTrackNamespace(parts ...string) TrackNamespace {
	fields := make([]TupleField, len(parts))
	for i, p := range parts {
		fields[i] = TupleField(p)
	}
	return TrackNamespace{Fields: fields}
}

// Len returns the number of fields.
func (n TrackNamespace) Len() int {
	return len(n.Fields)
}

// Equal reports whether n and other have identical fields in order.
func (n TrackNamespace) Equal(other TrackNamespace) bool {
	if len(n.Fields) != len(other.Fields) {
		return false
	}
	for i := range n.Fields {
		if string(n.Fields[i]) != string(other.Fields[i]) {
			return false
		}
	}
	return true
}

// IsPrefixOf reports whether n's fields equal other's first len(n)
// fields. A namespace is always a prefix of itself.
func (n TrackNamespace) IsPrefixOf(other TrackNamespace) bool {
	if len(n.Fields) > len(other.Fields) {
		return false
	}
	for i := range n.Fields {
		if string(n.Fields[i]) != string(other.Fields[i]) {
			return false
		}
	}
	return true
}

// Prefixes returns every non-empty prefix of n, longest (n itself)
// first, down to the single-field prefix.
func (n TrackNamespace) Prefixes() []TrackNamespace {
	if len(n.Fields) == 0 {
		return nil
	}
	out := make([]TrackNamespace, 0, len(n.Fields))
	for l := len(n.Fields); l >= 1; l-- {
		out = append(out, TrackNamespace{Fields: append([]TupleField(nil), n.Fields[:l]...)})
	}
	return out
}

// String renders the namespace as a '/'-joined path, for logging.
func (n TrackNamespace) String() string {
	parts := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		parts[i] = string(f)
	}
	return strings.Join(parts, "/")
}

// Encode writes the namespace as a varint field count followed by
// each length-prefixed field, rejecting more than maxNamespaceFields.
func (n TrackNamespace) Encode(w *Writer) error {
	if len(n.Fields) > maxNamespaceFields {
		return &EncodeError{Kind: ErrFieldBounds, Field: "track_namespace"}
	}
	if err := w.WriteVarInt(uint64(len(n.Fields))); err != nil {
		return err
	}
	for _, f := range n.Fields {
		if err := f.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTrackNamespace reads a TrackNamespace.
func DecodeTrackNamespace(r *Reader) (TrackNamespace, error) {
	count, err := r.ReadVarInt()
	if err != nil {
		return TrackNamespace{}, err
	}
	if count > maxNamespaceFields {
		return TrackNamespace{}, &DecodeError{Kind: ErrFieldBoundsExceeded, Field: "track_namespace"}
	}
	fields := make([]TupleField, count)
	for i := uint64(0); i < count; i++ {
		f, err := DecodeTupleField(r)
		if err != nil {
			return TrackNamespace{}, err
		}
		fields[i] = f
	}
	return TrackNamespace{Fields: fields}, nil
}
