package serve

import (
	"errors"
	"fmt"
)

// Wire codes a Error.Code can carry, per the MoQT per-request error
// registries (SUBSCRIBE_ERROR, PUBLISH_DONE, PUBLISH_NAMESPACE_ERROR,
// FETCH_ERROR, ...).
const (
	CodeInternal      = 0x0
	CodeCancel        = 0x1
	CodeNotSupported  = 0x3
	CodeTrackNotExist = 0x4
	CodeDuplicate     = 0x5
)

// Sentinel serve errors that carry no extra context beyond their wire
// code. Use errors.Is to test for these; use Closed, Internal, or
// NotImplemented to build ones that carry a value.
var (
	ErrDone      = errors.New("serve: done")
	ErrCancel    = &Error{Code: CodeCancel, Message: "cancelled"}
	ErrNotFound  = &Error{Code: CodeTrackNotExist, Message: "not found"}
	ErrDuplicate = &Error{Code: CodeDuplicate, Message: "duplicate"}
	ErrMode      = &Error{Code: CodeNotSupported, Message: "multiple stream modes"}
	ErrSize      = &Error{Code: CodeNotSupported, Message: "wrong size"}
)

// Error is a per-request serve-layer error: the kind of failure that
// surfaces as SubscribeError, PublishDone, PublishNamespaceError, or
// PublishNamespaceCancel on the wire rather than tearing down the
// session.
type Error struct {
	Code    uint64
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("serve: %s (code=%#x)", e.Message, e.Code)
}

// Closed builds the error a track or subgroup closes with when the
// application supplies its own wire code, e.g. from PublishDone.
func Closed(code uint64) *Error {
	return &Error{Code: code, Message: fmt.Sprintf("closed, code=%#x", code)}
}

// Internal builds an internal-error value. The message is logged by
// the caller; callers that forward it onto the wire should prefer a
// generic reason phrase instead of exposing message verbatim.
func Internal(message string) *Error {
	return &Error{Code: CodeInternal, Message: message}
}

// NotImplemented builds the error returned for wire-defined but
// unhandled features, e.g. Fetch or SubscribeNamespace.
func NotImplemented(feature string) *Error {
	return &Error{Code: CodeNotSupported, Message: fmt.Sprintf("not implemented: %s", feature)}
}
