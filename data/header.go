package data

import (
	"fmt"

	"github.com/quic-moq/moqt/coding"
)

// StreamHeaderType selects which of the subgroup-stream variants or
// the fetch-stream variant begins a unidirectional QUIC stream. The
// range 0x10..=0x1d is reserved for subgroup variants; 0x05 is Fetch.
type StreamHeaderType uint64

const (
	StreamHeaderSubgroupZeroID              StreamHeaderType = 0x10
	StreamHeaderSubgroupZeroIDExt           StreamHeaderType = 0x11
	StreamHeaderSubgroupObjectID            StreamHeaderType = 0x12
	StreamHeaderSubgroupObjectIDExt         StreamHeaderType = 0x13
	StreamHeaderSubgroupID                  StreamHeaderType = 0x14
	StreamHeaderSubgroupIDExt               StreamHeaderType = 0x15
	StreamHeaderSubgroupZeroIDEndOfGroup    StreamHeaderType = 0x18
	StreamHeaderSubgroupZeroIDExtEndOfGroup StreamHeaderType = 0x19
	StreamHeaderSubgroupObjectIDEndOfGroup  StreamHeaderType = 0x1a
	StreamHeaderSubgroupObjectIDExtEndOfGroup StreamHeaderType = 0x1b
	StreamHeaderSubgroupIDEndOfGroup        StreamHeaderType = 0x1c
	StreamHeaderSubgroupIDExtEndOfGroup     StreamHeaderType = 0x1d
	StreamHeaderFetch                      StreamHeaderType = 0x05
)

// IsSubgroup reports whether t is one of the subgroup-stream variants.
func (t StreamHeaderType) IsSubgroup() bool {
	return t >= 0x10 && t <= 0x1d
}

// IsFetch reports whether t is the fetch-stream variant.
func (t StreamHeaderType) IsFetch() bool {
	return t == StreamHeaderFetch
}

// HasExtensionHeaders reports whether the variant carries extension
// headers on every object.
func (t StreamHeaderType) HasExtensionHeaders() bool {
	switch t {
	case StreamHeaderSubgroupZeroIDExt, StreamHeaderSubgroupObjectIDExt, StreamHeaderSubgroupIDExt,
		StreamHeaderSubgroupZeroIDExtEndOfGroup, StreamHeaderSubgroupObjectIDExtEndOfGroup, StreamHeaderSubgroupIDExtEndOfGroup,
		StreamHeaderFetch:
		return true
	default:
		return false
	}
}

// HasSubgroupID reports whether the variant carries an explicit
// subgroup_id field (as opposed to implying zero, or implying the
// first object's object_id).
func (t StreamHeaderType) HasSubgroupID() bool {
	switch t {
	case StreamHeaderSubgroupID, StreamHeaderSubgroupIDExt, StreamHeaderSubgroupIDEndOfGroup, StreamHeaderSubgroupIDExtEndOfGroup:
		return true
	default:
		return false
	}
}

// IsEndOfGroup reports whether the variant marks the stream as the
// final subgroup in its group.
func (t StreamHeaderType) IsEndOfGroup() bool {
	switch t {
	case StreamHeaderSubgroupZeroIDEndOfGroup, StreamHeaderSubgroupZeroIDExtEndOfGroup,
		StreamHeaderSubgroupObjectIDEndOfGroup, StreamHeaderSubgroupObjectIDExtEndOfGroup,
		StreamHeaderSubgroupIDEndOfGroup, StreamHeaderSubgroupIDExtEndOfGroup:
		return true
	default:
		return false
	}
}

func (t StreamHeaderType) String() string {
	return fmt.Sprintf("StreamHeaderType(%#x)", uint64(t))
}

// Encode writes the type tag as a varint.
func (t StreamHeaderType) Encode(w *coding.Writer) error {
	return w.WriteVarInt(uint64(t))
}

// DecodeStreamHeaderType reads and validates a StreamHeaderType tag.
func DecodeStreamHeaderType(r *coding.Reader) (StreamHeaderType, error) {
	v, err := r.ReadVarInt()
	if err != nil {
		return 0, err
	}
	t := StreamHeaderType(v)
	if !t.IsSubgroup() && !t.IsFetch() {
		return 0, &coding.DecodeError{Kind: coding.ErrInvalidHeaderType, Tag: v}
	}
	return t, nil
}

// SubgroupHeader begins a subgroup stream. SubgroupID is nil when the
// type doesn't carry it explicitly (the caller infers zero or
// first-object-id per the type).
type SubgroupHeader struct {
	Type              StreamHeaderType
	TrackAlias        uint64
	GroupID           uint64
	SubgroupID        *uint64
	PublisherPriority byte
}

// Encode writes the header type followed by its fields, per the
// variant's field-presence rules.
func (h SubgroupHeader) Encode(w *coding.Writer) error {
	if !h.Type.IsSubgroup() {
		return &coding.EncodeError{Kind: coding.ErrInvalidValue}
	}
	if err := h.Type.Encode(w); err != nil {
		return err
	}
	if err := w.WriteVarInt(h.TrackAlias); err != nil {
		return err
	}
	if err := w.WriteVarInt(h.GroupID); err != nil {
		return err
	}
	if h.Type.HasSubgroupID() {
		if h.SubgroupID == nil {
			return &coding.EncodeError{Kind: coding.ErrMissingField, Field: "subgroup_id"}
		}
		if err := w.WriteVarInt(*h.SubgroupID); err != nil {
			return err
		}
	}
	return w.WriteByte(h.PublisherPriority)
}

// DecodeSubgroupHeader reads the remainder of a subgroup header given
// its already-decoded type tag.
func DecodeSubgroupHeader(t StreamHeaderType, r *coding.Reader) (SubgroupHeader, error) {
	h := SubgroupHeader{Type: t}

	alias, err := r.ReadVarInt()
	if err != nil {
		return SubgroupHeader{}, err
	}
	h.TrackAlias = alias

	group, err := r.ReadVarInt()
	if err != nil {
		return SubgroupHeader{}, err
	}
	h.GroupID = group

	if t.HasSubgroupID() {
		sg, err := r.ReadVarInt()
		if err != nil {
			return SubgroupHeader{}, err
		}
		h.SubgroupID = &sg
	}

	priority, err := r.ReadByte()
	if err != nil {
		return SubgroupHeader{}, err
	}
	h.PublisherPriority = priority

	return h, nil
}

// EffectiveSubgroupID resolves the subgroup id implied by the header's
// type when SubgroupID isn't explicit: zero for the ZeroID family,
// firstObjectID for the ObjectID family.
func (h SubgroupHeader) EffectiveSubgroupID(firstObjectID uint64) uint64 {
	if h.SubgroupID != nil {
		return *h.SubgroupID
	}
	switch h.Type {
	case StreamHeaderSubgroupObjectID, StreamHeaderSubgroupObjectIDExt,
		StreamHeaderSubgroupObjectIDEndOfGroup, StreamHeaderSubgroupObjectIDExtEndOfGroup:
		return firstObjectID
	default:
		return 0
	}
}

// FetchHeader begins a fetch stream.
type FetchHeader struct {
	Type      StreamHeaderType
	RequestID uint64
}

// Encode writes the header type followed by the request id.
func (h FetchHeader) Encode(w *coding.Writer) error {
	if !h.Type.IsFetch() {
		return &coding.EncodeError{Kind: coding.ErrInvalidValue}
	}
	if err := h.Type.Encode(w); err != nil {
		return err
	}
	return w.WriteVarInt(h.RequestID)
}

// DecodeFetchHeader reads the remainder of a fetch header given its
// already-decoded type tag.
func DecodeFetchHeader(t StreamHeaderType, r *coding.Reader) (FetchHeader, error) {
	id, err := r.ReadVarInt()
	if err != nil {
		return FetchHeader{}, err
	}
	return FetchHeader{Type: t, RequestID: id}, nil
}

// StreamHeader is the tagged union of the two unidirectional-stream
// opening headers.
type StreamHeader struct {
	Type     StreamHeaderType
	Subgroup *SubgroupHeader
	Fetch    *FetchHeader
}

// Encode delegates to whichever sub-header is present; the type tag
// itself is written by that sub-header's own Encode.
func (h StreamHeader) Encode(w *coding.Writer) error {
	if h.Type.IsSubgroup() {
		if h.Subgroup == nil {
			return &coding.EncodeError{Kind: coding.ErrMissingField, Field: "subgroup_header"}
		}
		return h.Subgroup.Encode(w)
	}
	if h.Fetch == nil {
		return &coding.EncodeError{Kind: coding.ErrMissingField, Field: "fetch_header"}
	}
	return h.Fetch.Encode(w)
}

// DecodeStreamHeader reads the type tag then dispatches to the
// matching sub-header decoder.
func DecodeStreamHeader(r *coding.Reader) (StreamHeader, error) {
	t, err := DecodeStreamHeaderType(r)
	if err != nil {
		return StreamHeader{}, err
	}
	if t.IsSubgroup() {
		sg, err := DecodeSubgroupHeader(t, r)
		if err != nil {
			return StreamHeader{}, err
		}
		return StreamHeader{Type: t, Subgroup: &sg}, nil
	}
	fh, err := DecodeFetchHeader(t, r)
	if err != nil {
		return StreamHeader{}, err
	}
	return StreamHeader{Type: t, Fetch: &fh}, nil
}
