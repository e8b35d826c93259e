package message

import "github.com/quic-moq/moqt/coding"

// SubscribeNamespaceError rejects a SubscribeNamespace with a numeric
// code and reason, mirroring SubscribeError's shape.
type SubscribeNamespaceError struct {
	ID           uint64
	ErrorCode    uint64
	ReasonPhrase coding.ReasonPhrase
}

// Encode writes the rejection.
func (m SubscribeNamespaceError) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(m.ID); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.ErrorCode); err != nil {
		return err
	}
	return m.ReasonPhrase.Encode(w)
}

// DecodeSubscribeNamespaceError reads a SubscribeNamespaceError.
func DecodeSubscribeNamespaceError(r *coding.Reader) (SubscribeNamespaceError, error) {
	var m SubscribeNamespaceError

	id, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.ID = id

	code, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.ErrorCode = code

	reason, err := coding.DecodeReasonPhrase(r)
	if err != nil {
		return m, err
	}
	m.ReasonPhrase = reason

	return m, nil
}

// FetchError rejects a Fetch with a numeric code and reason,
// mirroring SubscribeError's shape.
type FetchError struct {
	ID           uint64
	ErrorCode    uint64
	ReasonPhrase coding.ReasonPhrase
}

// Encode writes the rejection.
func (m FetchError) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(m.ID); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.ErrorCode); err != nil {
		return err
	}
	return m.ReasonPhrase.Encode(w)
}

// DecodeFetchError reads a FetchError.
func DecodeFetchError(r *coding.Reader) (FetchError, error) {
	var m FetchError

	id, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.ID = id

	code, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.ErrorCode = code

	reason, err := coding.DecodeReasonPhrase(r)
	if err != nil {
		return m, err
	}
	m.ReasonPhrase = reason

	return m, nil
}
