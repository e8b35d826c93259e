package session

import (
	"context"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/serve"
)

// announceEntry is the publisher's record of one namespace it has
// announced with PublishNamespace: enough to resolve incoming
// Subscribe requests for that namespace against the tracks it
// actually offers, and to deliver the eventual Ok/Error/Cancel back
// to whichever goroutine is blocked in Publisher.Announce.
type announceEntry struct {
	id       uint64
	tracks   *serve.TracksReader
	accepted chan error
	canceled chan struct{}
}

func newAnnounceEntry(id uint64, tracks *serve.TracksReader) *announceEntry {
	return &announceEntry{id: id, tracks: tracks, accepted: make(chan error, 1), canceled: make(chan struct{})}
}

// resolve looks up the track (namespace, name) against the
// announced broadcast, requesting it be created if the writer hasn't
// already produced it.
func (e *announceEntry) resolve(namespace coding.TrackNamespace, name string) *serve.TrackReader {
	return e.tracks.Subscribe(namespace, name)
}

func namespaceKey(namespace coding.TrackNamespace) string {
	return namespace.String()
}
