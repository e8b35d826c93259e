// Package coding implements the MoQ Transport wire primitives: variable
// length integers, bounded strings, namespace tuples, locations, and
// key/value parameter lists.
package coding

import "fmt"

// DecodeErrorKind classifies a decode failure.
type DecodeErrorKind int

const (
	// ErrMore means decoding needs at least More additional bytes before
	// it can make progress; the caller may read more data and retry
	// decoding from the same offset.
	ErrMore DecodeErrorKind = iota
	ErrInvalidMessage
	ErrInvalidDatagramType
	ErrInvalidFilterType
	ErrInvalidFetchType
	ErrInvalidObjectStatus
	ErrInvalidGroupOrder
	ErrInvalidHeaderType
	ErrInvalidTrackStatusCode
	ErrMissingParameter
	ErrInvalidParameter
	ErrDuplicateParameter
	ErrKeyValuePairLengthExceeded
	ErrFieldBoundsExceeded
	ErrBoundsExceeded
)

// DecodeError is returned by every Decode operation in this module.
type DecodeError struct {
	Kind  DecodeErrorKind
	More  uint64 // valid when Kind == ErrMore: bytes still needed
	Tag   uint64 // valid for Invalid* kinds carrying a wire tag
	Field string // valid for ErrFieldBoundsExceeded
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case ErrMore:
		return fmt.Sprintf("coding: need %d more bytes", e.More)
	case ErrInvalidMessage:
		return fmt.Sprintf("coding: invalid message type %#x", e.Tag)
	case ErrInvalidDatagramType:
		return fmt.Sprintf("coding: invalid datagram type %#x", e.Tag)
	case ErrInvalidFilterType:
		return fmt.Sprintf("coding: invalid filter type %#x", e.Tag)
	case ErrInvalidFetchType:
		return fmt.Sprintf("coding: invalid fetch type %#x", e.Tag)
	case ErrInvalidObjectStatus:
		return fmt.Sprintf("coding: invalid object status %#x", e.Tag)
	case ErrInvalidGroupOrder:
		return fmt.Sprintf("coding: invalid group order %#x", e.Tag)
	case ErrInvalidHeaderType:
		return fmt.Sprintf("coding: invalid stream header type %#x", e.Tag)
	case ErrInvalidTrackStatusCode:
		return fmt.Sprintf("coding: invalid track status code %#x", e.Tag)
	case ErrMissingParameter:
		return "coding: missing parameter"
	case ErrInvalidParameter:
		return "coding: invalid parameter"
	case ErrDuplicateParameter:
		return "coding: duplicate parameter"
	case ErrKeyValuePairLengthExceeded:
		return "coding: key/value pair length exceeded"
	case ErrFieldBoundsExceeded:
		return fmt.Sprintf("coding: field %q exceeds its bound", e.Field)
	case ErrBoundsExceeded:
		return "coding: integer bounds exceeded"
	default:
		return "coding: decode error"
	}
}

// IsMore reports whether err is a DecodeError signalling that more bytes
// are needed, as opposed to a terminal protocol violation.
func IsMore(err error) bool {
	de, ok := err.(*DecodeError)
	return ok && de.Kind == ErrMore
}

// EncodeErrorKind classifies an encode failure.
type EncodeErrorKind int

const (
	ErrFieldBounds EncodeErrorKind = iota
	ErrMsgBounds
	ErrMissingField
	ErrInvalidValue
	ErrIntBounds
)

// EncodeError is returned by every Encode operation in this module.
type EncodeError struct {
	Kind  EncodeErrorKind
	Field string
}

func (e *EncodeError) Error() string {
	switch e.Kind {
	case ErrFieldBounds:
		return fmt.Sprintf("coding: field %q exceeds its bound", e.Field)
	case ErrMsgBounds:
		return "coding: message exceeds its bound"
	case ErrMissingField:
		return fmt.Sprintf("coding: missing field %q", e.Field)
	case ErrInvalidValue:
		return "coding: invalid value"
	case ErrIntBounds:
		return "coding: integer bounds exceeded"
	default:
		return "coding: encode error"
	}
}
