package data

import "github.com/quic-moq/moqt/coding"

// DatagramType selects one of ten datagram shapes along three
// orthogonal flags (object_id present, extension headers present,
// end-of-group marker) plus an is-status flag that replaces the
// payload with an ObjectStatus.
type DatagramType uint64

const (
	DatagramObjectIDPayload              DatagramType = 0x00
	DatagramObjectIDPayloadExt           DatagramType = 0x01
	DatagramObjectIDPayloadEndOfGroup    DatagramType = 0x02
	DatagramObjectIDPayloadExtEndOfGroup DatagramType = 0x03
	DatagramPayload                      DatagramType = 0x04
	DatagramPayloadExt                   DatagramType = 0x05
	DatagramPayloadEndOfGroup            DatagramType = 0x06
	DatagramPayloadExtEndOfGroup         DatagramType = 0x07
	DatagramObjectIDStatus               DatagramType = 0x20
	DatagramObjectIDStatusExt            DatagramType = 0x21
)

// HasObjectID reports whether t carries an explicit object_id field.
func (t DatagramType) HasObjectID() bool {
	switch t {
	case DatagramObjectIDPayload, DatagramObjectIDPayloadExt, DatagramObjectIDPayloadEndOfGroup,
		DatagramObjectIDPayloadExtEndOfGroup, DatagramObjectIDStatus, DatagramObjectIDStatusExt:
		return true
	default:
		return false
	}
}

// HasExtensionHeaders reports whether t carries extension headers.
func (t DatagramType) HasExtensionHeaders() bool {
	switch t {
	case DatagramObjectIDPayloadExt, DatagramObjectIDPayloadExtEndOfGroup,
		DatagramPayloadExt, DatagramPayloadExtEndOfGroup, DatagramObjectIDStatusExt:
		return true
	default:
		return false
	}
}

// IsEndOfGroup reports whether t marks the end of a group.
func (t DatagramType) IsEndOfGroup() bool {
	switch t {
	case DatagramObjectIDPayloadEndOfGroup, DatagramObjectIDPayloadExtEndOfGroup,
		DatagramPayloadEndOfGroup, DatagramPayloadExtEndOfGroup:
		return true
	default:
		return false
	}
}

// IsStatus reports whether t carries an ObjectStatus instead of a
// payload.
func (t DatagramType) IsStatus() bool {
	switch t {
	case DatagramObjectIDStatus, DatagramObjectIDStatusExt:
		return true
	default:
		return false
	}
}

func (t DatagramType) valid() bool {
	switch t {
	case DatagramObjectIDPayload, DatagramObjectIDPayloadExt, DatagramObjectIDPayloadEndOfGroup,
		DatagramObjectIDPayloadExtEndOfGroup, DatagramPayload, DatagramPayloadExt,
		DatagramPayloadEndOfGroup, DatagramPayloadExtEndOfGroup, DatagramObjectIDStatus, DatagramObjectIDStatusExt:
		return true
	default:
		return false
	}
}

// Datagram is a single self-contained MoQ object sent as one QUIC
// datagram. Field presence is entirely determined by Type; Encode and
// Decode both enforce that only the fields the variant demands are
// read or written.
type Datagram struct {
	Type              DatagramType
	TrackAlias        uint64
	GroupID           uint64
	ObjectID          *uint64 // present iff Type.HasObjectID()
	PublisherPriority byte
	ExtensionHeaders  ExtensionHeaders // present iff Type.HasExtensionHeaders()
	Status            *ObjectStatus    // present iff Type.IsStatus()
	Payload           []byte           // present iff !Type.IsStatus()
}

// Encode writes the datagram, returning MissingField if a
// variant-required field is absent.
func (d Datagram) Encode(w *coding.Writer) error {
	if !d.Type.valid() {
		return &coding.EncodeError{Kind: coding.ErrInvalidValue}
	}
	if err := w.WriteVarInt(uint64(d.Type)); err != nil {
		return err
	}
	if err := w.WriteVarInt(d.TrackAlias); err != nil {
		return err
	}
	if err := w.WriteVarInt(d.GroupID); err != nil {
		return err
	}

	if d.Type.HasObjectID() {
		if d.ObjectID == nil {
			return &coding.EncodeError{Kind: coding.ErrMissingField, Field: "object_id"}
		}
		if err := w.WriteVarInt(*d.ObjectID); err != nil {
			return err
		}
	}

	if err := w.WriteByte(d.PublisherPriority); err != nil {
		return err
	}

	if d.Type.HasExtensionHeaders() {
		if err := d.ExtensionHeaders.Encode(w); err != nil {
			return err
		}
	}

	if d.Type.IsStatus() {
		if d.Status == nil {
			return &coding.EncodeError{Kind: coding.ErrMissingField, Field: "status"}
		}
		return (*d.Status).Encode(w)
	}

	w.Write(d.Payload)
	return nil
}

// DecodeDatagram reads a Datagram, populating only the fields its type
// carries.
func DecodeDatagram(r *coding.Reader) (Datagram, error) {
	typeVal, err := r.ReadVarInt()
	if err != nil {
		return Datagram{}, err
	}
	t := DatagramType(typeVal)
	if !t.valid() {
		return Datagram{}, &coding.DecodeError{Kind: coding.ErrInvalidDatagramType, Tag: typeVal}
	}
	d := Datagram{Type: t}

	alias, err := r.ReadVarInt()
	if err != nil {
		return Datagram{}, err
	}
	d.TrackAlias = alias

	group, err := r.ReadVarInt()
	if err != nil {
		return Datagram{}, err
	}
	d.GroupID = group

	if t.HasObjectID() {
		oid, err := r.ReadVarInt()
		if err != nil {
			return Datagram{}, err
		}
		d.ObjectID = &oid
	}

	priority, err := r.ReadByte()
	if err != nil {
		return Datagram{}, err
	}
	d.PublisherPriority = priority

	if t.HasExtensionHeaders() {
		headers, err := DecodeExtensionHeaders(r)
		if err != nil {
			return Datagram{}, err
		}
		d.ExtensionHeaders = headers
	}

	if t.IsStatus() {
		status, err := DecodeObjectStatus(r)
		if err != nil {
			return Datagram{}, err
		}
		d.Status = &status
		return d, nil
	}

	// The remainder of the datagram is the payload; datagrams carry no
	// further framing after the fields above.
	d.Payload = append([]byte(nil), r.Rest()...)
	return d, nil
}
