package message

import "github.com/quic-moq/moqt/coding"

// GroupOrder selects the delivery order a subscriber prefers for
// groups within a track. Publisher defers to the publisher's own
// order; it is the zero value and Subscribe encodes it like the others.
type GroupOrder uint8

const (
	GroupOrderPublisher  GroupOrder = 0x0
	GroupOrderAscending  GroupOrder = 0x1
	GroupOrderDescending GroupOrder = 0x2
)

// Encode writes the order as a single byte.
func (o GroupOrder) Encode(w *coding.Writer) error {
	return w.WriteByte(byte(o))
}

// DecodeGroupOrder reads and validates a GroupOrder byte.
func DecodeGroupOrder(r *coding.Reader) (GroupOrder, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch GroupOrder(b) {
	case GroupOrderPublisher, GroupOrderAscending, GroupOrderDescending:
		return GroupOrder(b), nil
	default:
		return 0, &coding.DecodeError{Kind: coding.ErrInvalidGroupOrder, Tag: uint64(b)}
	}
}
