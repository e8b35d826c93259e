package message

import "github.com/quic-moq/moqt/coding"

// RequestsBlocked tells the peer the sender wanted to issue a request
// beyond its current id ceiling.
type RequestsBlocked struct {
	MaxRequestID uint64
}

// Encode writes the ceiling the sender hit.
func (m RequestsBlocked) Encode(w *coding.Writer) error {
	return w.WriteVarInt(m.MaxRequestID)
}

// DecodeRequestsBlocked reads a RequestsBlocked.
func DecodeRequestsBlocked(r *coding.Reader) (RequestsBlocked, error) {
	id, err := r.ReadVarInt()
	if err != nil {
		return RequestsBlocked{}, err
	}
	return RequestsBlocked{MaxRequestID: id}, nil
}
