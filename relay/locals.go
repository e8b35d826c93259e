// Package relay implements namespace-based routing between sessions:
// tracks announced locally are looked up directly, and anything else
// falls through to an upstream session.
package relay

import (
	"sync"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/serve"
)

// Locals is the set of namespaces currently announced to this relay
// by local publishers, keyed so a Subscribe for any of them can be
// resolved without going upstream.
type Locals struct {
	mu     sync.Mutex
	tracks map[string]*serve.TracksReader
}

// NewLocals returns an empty registry.
func NewLocals() *Locals {
	return &Locals{tracks: make(map[string]*serve.TracksReader)}
}

// Registration releases a namespace's local registration when no
// longer needed.
type Registration struct {
	locals    *Locals
	namespace string
}

// Close removes the namespace's registration, after which Subscribe
// falls through to upstream for it again.
func (r *Registration) Close() {
	r.locals.mu.Lock()
	defer r.locals.mu.Unlock()
	delete(r.locals.tracks, r.namespace)
}

// Register makes tracks resolvable locally under its namespace,
// returning a handle the caller closes when the publisher disconnects.
func (l *Locals) Register(tracks *serve.TracksReader) (*Registration, error) {
	key := tracks.Info.Namespace.String()

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.tracks[key]; exists {
		return nil, serve.ErrDuplicate
	}
	l.tracks[key] = tracks
	return &Registration{locals: l, namespace: key}, nil
}

// Get returns the TracksReader registered under namespace, or nil.
func (l *Locals) Get(namespace coding.TrackNamespace) *serve.TracksReader {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tracks[namespace.String()]
}
