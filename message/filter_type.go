package message

import "github.com/quic-moq/moqt/coding"

// FilterType selects which range of a track a Subscribe request wants.
// AbsoluteStart and AbsoluteRange carry a start Location; AbsoluteRange
// also carries an end group id.
type FilterType uint64

const (
	FilterNextGroupStart FilterType = 0x1
	FilterLargestObject  FilterType = 0x2
	FilterAbsoluteStart  FilterType = 0x3
	FilterAbsoluteRange  FilterType = 0x4
)

// Encode writes the filter type as a varint.
func (f FilterType) Encode(w *coding.Writer) error {
	return w.WriteVarInt(uint64(f))
}

// DecodeFilterType reads and validates a FilterType tag.
func DecodeFilterType(r *coding.Reader) (FilterType, error) {
	v, err := r.ReadVarInt()
	if err != nil {
		return 0, err
	}
	switch FilterType(v) {
	case FilterNextGroupStart, FilterLargestObject, FilterAbsoluteStart, FilterAbsoluteRange:
		return FilterType(v), nil
	default:
		return 0, &coding.DecodeError{Kind: coding.ErrInvalidFilterType, Tag: v}
	}
}
