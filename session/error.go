// Package session implements the MoQT session runtime: handshake,
// the four concurrent per-connection tasks, and the publisher and
// subscriber sides of the control protocol.
package session

import (
	"errors"
	"fmt"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/message"
	"github.com/quic-moq/moqt/serve"
)

// Wire codes for session-terminating errors, per the MoQT session
// termination error registry (draft-ietf-moq-transport-14 §13.1.1).
const (
	CodeInternal                 = 0x1
	CodeRoleViolation            = 0x3
	CodeVersionNegotiationFailed = 0x15
	CodeDuplicateTrackAlias      = 0x5
)

// Sentinel session errors that carry no extra context.
var (
	ErrRoleViolation = &Error{Code: CodeRoleViolation, message: "role violation"}
	ErrDuplicate     = &Error{Code: CodeDuplicateTrackAlias, message: "duplicate"}
	ErrInternal      = &Error{Code: CodeInternal, message: "internal error"}
	ErrWrongSize     = &Error{Code: CodeRoleViolation, message: "wrong size"}
)

// Error is a session-terminating error: anything that reaches it
// closes the QUIC connection with Code as the application error code.
type Error struct {
	Code    uint64
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("session: %s: %v", e.message, e.cause)
	}
	return "session: " + e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Wrap builds a session error from a lower-layer cause, using code as
// its wire code and message to describe which layer failed.
func Wrap(code uint64, message string, cause error) *Error {
	return &Error{Code: code, message: message, cause: cause}
}

// VersionError reports that CLIENT_SETUP and SERVER_SETUP carried no
// overlapping version.
func VersionError(client, server message.Versions) *Error {
	return &Error{
		Code:    CodeVersionNegotiationFailed,
		message: fmt.Sprintf("unsupported versions: client=%v server=%v", client, server),
	}
}

// FromDecodeError wraps a coding.DecodeError as PROTOCOL_VIOLATION.
func FromDecodeError(err *coding.DecodeError) *Error {
	return Wrap(CodeRoleViolation, "decode", err)
}

// FromEncodeError wraps a coding.EncodeError as INTERNAL_ERROR.
func FromEncodeError(err *coding.EncodeError) *Error {
	return Wrap(CodeInternal, "encode", err)
}

// Unimplemented logs (by returning, for the caller to log) a
// NotImplemented serve.Error for a wire-defined but unhandled
// feature, without terminating the session.
func Unimplemented(feature string) *serve.Error {
	return serve.NotImplemented(feature)
}

// reservedFeatureName names a wire-defined but unimplemented message
// type for use in a NotImplemented error.
func reservedFeatureName(typ uint64) string {
	switch typ {
	case message.TypeTrackStatus:
		return "track status"
	case message.TypeSubscribeNamespace:
		return "subscribe namespace"
	case message.TypeSubscribeNamespaceOk:
		return "subscribe namespace ok"
	case message.TypeSubscribeNamespaceError:
		return "subscribe namespace error"
	case message.TypeUnsubscribeNamespace:
		return "unsubscribe namespace"
	case message.TypeFetch:
		return "fetch"
	case message.TypeFetchCancel:
		return "fetch cancel"
	case message.TypeFetchOk:
		return "fetch ok"
	case message.TypeFetchError:
		return "fetch error"
	case message.TypeRequestsBlocked:
		return "requests blocked"
	default:
		return fmt.Sprintf("message type %#x", typ)
	}
}

// reservedRequestID best-effort reads the leading request id off a
// reserved message's raw payload: every MoQT message that expects a
// reply carries its request id first on the wire.
func reservedRequestID(msg message.Message) (uint64, bool) {
	if msg.Reserved == nil {
		return 0, false
	}
	id, err := coding.NewReader(msg.Reserved.Payload).ReadVarInt()
	if err != nil {
		return 0, false
	}
	return id, true
}

// ToServeError narrows a session error to a per-request serve.Error,
// for contexts (e.g. SubscribeError) that need a request-scoped
// failure rather than a connection-terminating one.
func ToServeError(err error) *serve.Error {
	var se *serve.Error
	if errors.As(err, &se) {
		return se
	}
	return serve.Internal(err.Error())
}
