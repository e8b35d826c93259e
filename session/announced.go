package session

import "github.com/quic-moq/moqt/coding"

// Announced is the subscriber-side record of a namespace the peer has
// announced with PublishNamespace, delivered to the application via
// Subscriber.Announced so it can decide whether to subscribe to any
// of the tracks within it.
type Announced struct {
	ID        uint64
	Namespace coding.TrackNamespace

	subscriber *Subscriber
}

// Accept confirms the announcement, replying PublishNamespaceOk.
func (a *Announced) Accept() error {
	return a.subscriber.acceptAnnounced(a)
}

// Reject declines the announcement, replying PublishNamespaceError.
func (a *Announced) Reject(code uint64, reason string) error {
	return a.subscriber.rejectAnnounced(a, code, reason)
}
