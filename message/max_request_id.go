package message

import "github.com/quic-moq/moqt/coding"

// MaxRequestID raises the peer's allowance of outstanding request
// ids, mirroring QUIC's own MAX_STREAMS flow control.
type MaxRequestID struct {
	RequestID uint64
}

// Encode writes the new ceiling.
func (m MaxRequestID) Encode(w *coding.Writer) error {
	return w.WriteVarInt(m.RequestID)
}

// DecodeMaxRequestID reads a MaxRequestID.
func DecodeMaxRequestID(r *coding.Reader) (MaxRequestID, error) {
	id, err := r.ReadVarInt()
	if err != nil {
		return MaxRequestID{}, err
	}
	return MaxRequestID{RequestID: id}, nil
}
