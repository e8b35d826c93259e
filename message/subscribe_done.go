package message

import "github.com/quic-moq/moqt/coding"

// SubscribeDone closes a subscription the publisher previously
// accepted, reporting how many streams it opened for it. Note the
// draft also names this PublishDone; this module keeps one name.
type SubscribeDone struct {
	ID           uint64
	StatusCode   uint64
	StreamCount  uint64
	ReasonPhrase coding.ReasonPhrase
}

// Encode writes the closure.
func (m SubscribeDone) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(m.ID); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.StatusCode); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.StreamCount); err != nil {
		return err
	}
	return m.ReasonPhrase.Encode(w)
}

// DecodeSubscribeDone reads a SubscribeDone.
func DecodeSubscribeDone(r *coding.Reader) (SubscribeDone, error) {
	var m SubscribeDone

	id, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.ID = id

	status, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.StatusCode = status

	count, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.StreamCount = count

	reason, err := coding.DecodeReasonPhrase(r)
	if err != nil {
		return m, err
	}
	m.ReasonPhrase = reason

	return m, nil
}
