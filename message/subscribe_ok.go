package message

import "github.com/quic-moq/moqt/coding"

// SubscribeOk accepts a Subscribe, assigning the data-plane
// track_alias (by convention equal to the request id) and the
// publisher's chosen delivery order.
type SubscribeOk struct {
	ID            uint64
	TrackAlias    uint64
	Expires       uint64 // milliseconds; 0 means "does not expire"
	GroupOrder    GroupOrder
	ContentExists bool
	Latest        coding.Location // present iff ContentExists
	Params        coding.KeyValuePairs
}

// Encode writes the acceptance.
func (m SubscribeOk) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(m.ID); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.TrackAlias); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.Expires); err != nil {
		return err
	}
	if err := m.GroupOrder.Encode(w); err != nil {
		return err
	}
	exists := byte(0)
	if m.ContentExists {
		exists = 1
	}
	if err := w.WriteByte(exists); err != nil {
		return err
	}
	if m.ContentExists {
		if err := m.Latest.Encode(w); err != nil {
			return err
		}
	}
	params := m.Params
	if params == nil {
		params = coding.NewKeyValuePairs()
	}
	return params.Encode(w)
}

// DecodeSubscribeOk reads a SubscribeOk.
func DecodeSubscribeOk(r *coding.Reader) (SubscribeOk, error) {
	var m SubscribeOk

	id, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.ID = id

	alias, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.TrackAlias = alias

	expires, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.Expires = expires

	order, err := DecodeGroupOrder(r)
	if err != nil {
		return m, err
	}
	m.GroupOrder = order

	exists, err := r.ReadByte()
	if err != nil {
		return m, err
	}
	m.ContentExists = exists != 0

	if m.ContentExists {
		latest, err := coding.DecodeLocation(r)
		if err != nil {
			return m, err
		}
		m.Latest = latest
	}

	params, err := coding.DecodeKeyValuePairs(r)
	if err != nil {
		return m, err
	}
	m.Params = params

	return m, nil
}

// SubscribeError rejects a Subscribe with a numeric code and reason.
type SubscribeError struct {
	ID           uint64
	ErrorCode    uint64
	ReasonPhrase coding.ReasonPhrase
}

// Encode writes the rejection.
func (m SubscribeError) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(m.ID); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.ErrorCode); err != nil {
		return err
	}
	return m.ReasonPhrase.Encode(w)
}

// DecodeSubscribeError reads a SubscribeError.
func DecodeSubscribeError(r *coding.Reader) (SubscribeError, error) {
	var m SubscribeError

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
