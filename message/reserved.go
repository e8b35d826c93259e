package message

import "github.com/quic-moq/moqt/coding"

// ReservedMessage holds the raw payload of a message type this module
// decodes but doesn't implement a handler for: SubscribeNamespace,
// SubscribeNamespaceOk, UnsubscribeNamespace, TrackStatus, Fetch,
// FetchCancel, FetchOk. The session layer logs them as NotImplemented
// (replying with an error only to SubscribeNamespace and Fetch)
// rather than closing the connection, since these are wire-defined
// but not must-implement. SubscribeNamespaceError and FetchError are
// decoded as their own typed messages instead, since the session
// layer sends them itself when rejecting SubscribeNamespace/Fetch.
type ReservedMessage struct {
	Type    uint64
	Payload []byte
}

// Encode writes the payload verbatim; callers that construct a
// ReservedMessage to echo back are responsible for producing bytes
// that are valid for Type.
func (m *ReservedMessage) Encode(w *coding.Writer) error {
	w.Write(m.Payload)
	return nil
}
