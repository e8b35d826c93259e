// Package data implements MoQ Transport's data-plane framing: datagram
// variants, subgroup/fetch stream headers, and per-object framing.
package data

import "github.com/quic-moq/moqt/coding"

// ObjectStatus is carried instead of a payload when an object's status
// must be signalled without data (e.g. the end of a group or track).
type ObjectStatus uint64

const (
	ObjectStatusNormal       ObjectStatus = 0x0
	ObjectStatusDoesNotExist ObjectStatus = 0x1
	ObjectStatusEndOfGroup   ObjectStatus = 0x3
	ObjectStatusEndOfTrack   ObjectStatus = 0x4
)

// Encode writes the status as a varint.
func (s ObjectStatus) Encode(w *coding.Writer) error {
	return w.WriteVarInt(uint64(s))
}

// DecodeObjectStatus reads and validates an ObjectStatus tag.
func DecodeObjectStatus(r *coding.Reader) (ObjectStatus, error) {
	v, err := r.ReadVarInt()
	if err != nil {
		return 0, err
	}
	switch ObjectStatus(v) {
	case ObjectStatusNormal, ObjectStatusDoesNotExist, ObjectStatusEndOfGroup, ObjectStatusEndOfTrack:
		return ObjectStatus(v), nil
	default:
		return 0, &coding.DecodeError{Kind: coding.ErrInvalidObjectStatus, Tag: v}
	}
}
