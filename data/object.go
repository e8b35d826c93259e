package data

import "github.com/quic-moq/moqt/coding"

// SubgroupObjectRecord is one object within a subgroup stream:
// object_id (or its delta, per the caller's framing choice),
// extension headers when the stream's header type carries them,
// payload length, an explicit status only when payload length is
// zero, and finally the payload bytes.
type SubgroupObjectRecord struct {
	ObjectID         uint64
	ExtensionHeaders ExtensionHeaders // only encoded/decoded when hasExtensions
	PayloadLength    uint64
	Status           *ObjectStatus // present iff PayloadLength == 0
	Payload          []byte
}

// EncodeSubgroupObjectHeader writes everything up to the payload:
// object_id, extension headers (when hasExtensions), and the payload
// length (or status, when the declared length is zero). Splitting
// this from the payload write lets a caller stream payload bytes as
// they arrive instead of assembling the whole object in memory first.
func EncodeSubgroupObjectHeader(w *coding.Writer, objectID uint64, ext ExtensionHeaders, hasExtensions bool, payloadLength int, status *ObjectStatus) error {
	if err := w.WriteVarInt(objectID); err != nil {
		return err
	}
	if hasExtensions {
		if err := ext.Encode(w); err != nil {
			return err
		}
	}
	if err := w.WriteVarInt(uint64(payloadLength)); err != nil {
		return err
	}
	if payloadLength == 0 {
		if status == nil {
			normal := ObjectStatusNormal
			status = &normal
		}
		return (*status).Encode(w)
	}
	return nil
}

// EncodeSubgroupObject writes rec according to hasExtensions (from the
// enclosing stream's header type).
func EncodeSubgroupObject(w *coding.Writer, rec SubgroupObjectRecord, hasExtensions bool) error {
	if err := EncodeSubgroupObjectHeader(w, rec.ObjectID, rec.ExtensionHeaders, hasExtensions, len(rec.Payload), rec.Status); err != nil {
		return err
	}
	if len(rec.Payload) > 0 {
		w.Write(rec.Payload)
	}
	return nil
}

// DecodeSubgroupObject reads one SubgroupObjectRecord.
func DecodeSubgroupObject(r *coding.Reader, hasExtensions bool) (SubgroupObjectRecord, error) {
	var rec SubgroupObjectRecord

	id, err := r.ReadVarInt()
	if err != nil {
		return rec, err
	}
	rec.ObjectID = id

	if hasExtensions {
		headers, err := DecodeExtensionHeaders(r)
		if err != nil {
			return rec, err
		}
		rec.ExtensionHeaders = headers
	}

	length, err := r.ReadVarInt()
	if err != nil {
		return rec, err
	}
	rec.PayloadLength = length

	if length == 0 {
		status, err := DecodeObjectStatus(r)
		if err != nil {
			return rec, err
		}
		rec.Status = &status
		return rec, nil
	}

	payload, err := r.ReadN(int(length))
	if err != nil {
		return rec, err
	}
	rec.Payload = append([]byte(nil), payload...)
	return rec, nil
}

// FetchObjectRecord is one object within a fetch stream: full location
// plus priority, extension headers, payload length, status when
// length is zero, and the payload itself.
type FetchObjectRecord struct {
	GroupID           uint64
	SubgroupID        uint64
	ObjectID          uint64
	PublisherPriority byte
	ExtensionHeaders  ExtensionHeaders
	PayloadLength     uint64
	Status            *ObjectStatus
	Payload           []byte
}

// Encode writes the record.
func (rec FetchObjectRecord) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(rec.GroupID); err != nil {
		return err
	}
	if err := w.WriteVarInt(rec.SubgroupID); err != nil {
		return err
	}
	if err := w.WriteVarInt(rec.ObjectID); err != nil {
		return err
	}
	if err := w.WriteByte(rec.PublisherPriority); err != nil {
		return err
	}
	if err := rec.ExtensionHeaders.Encode(w); err != nil {
		return err
	}
	if err := w.WriteVarInt(uint64(len(rec.Payload))); err != nil {
		return err
	}
	if len(rec.Payload) == 0 {
		status := rec.Status
		if status == nil {
			normal := ObjectStatusNormal
			status = &normal
		}
		return (*status).Encode(w)
	}
	w.Write(rec.Payload)
	return nil
}

// DecodeFetchObject reads one FetchObjectRecord.
func DecodeFetchObject(r *coding.Reader) (FetchObjectRecord, error) {
	var rec FetchObjectRecord

	group, err := r.ReadVarInt()
	if err != nil {
		return rec, err
	}
	rec.GroupID = group

	subgroup, err := r.ReadVarInt()
	if err != nil {
		return rec, err
	}
	rec.SubgroupID = subgroup

	object, err := r.ReadVarInt()
	if err != nil {
		return rec, err
	}
	rec.ObjectID = object

	priority, err := r.ReadByte()
	if err != nil {
		return rec, err
	}
	rec.PublisherPriority = priority

	headers, err := DecodeExtensionHeaders(r)
	if err != nil {
		return rec, err
	}
	rec.ExtensionHeaders = headers

	length, err := r.ReadVarInt()
	if err != nil {
		return rec, err
	}
	rec.PayloadLength = length

	if length == 0 {
		status, err := DecodeObjectStatus(r)
		if err != nil {
			return rec, err
		}
		rec.Status = &status
		return rec, nil
	}

	payload, err := r.ReadN(int(length))
	if err != nil {
		return rec, err
	}
	rec.Payload = append([]byte(nil), payload...)
	return rec, nil
}
