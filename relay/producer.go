package relay

import (
	"context"

	"github.com/quic-moq/moqt/message"
	"github.com/quic-moq/moqt/serve"
	"github.com/quic-moq/moqt/session"
)

// Producer resolves Subscribe requests a session couldn't match
// against its own locally-announced namespaces: first against other
// local publishers sharing this relay, then, if configured, against
// an upstream session acting as this relay's own subscriber.
type Producer struct {
	locals   *Locals
	upstream *session.Subscriber
}

// NewProducer builds a Producer resolving against locals, forwarding
// to upstream (which may be nil, for a relay with no upstream) when a
// namespace isn't registered locally.
func NewProducer(locals *Locals, upstream *session.Subscriber) *Producer {
	return &Producer{locals: locals, upstream: upstream}
}

// Serve resolves subscribed's requested track and drives its lifetime
// to completion (replying SubscribeOk/SubscribeError and forwarding
// objects), the way Publisher.serveSubscribed does for a locally
// matched announce.
func (p *Producer) Serve(ctx context.Context, subscribed *session.Subscribed) error {
	track, err := p.resolve(ctx, subscribed.Request)
	if err != nil {
		return subscribed.Deny(err)
	}
	defer track.Release()
	return subscribed.Serve(ctx, track)
}

func (p *Producer) resolve(ctx context.Context, req message.Subscribe) (*serve.TrackReader, error) {
	name := string(req.TrackName)

	if tracks := p.locals.Get(req.TrackNamespace); tracks != nil {
		reader := tracks.Subscribe(req.TrackNamespace, name)
		if reader == nil {
			return nil, serve.ErrNotFound
		}
		return reader, nil
	}

	if p.upstream == nil {
		return nil, serve.ErrNotFound
	}

	writer, reader := serve.Track{Namespace: req.TrackNamespace, Name: name}.Produce()
	cfg := session.SubscribeConfig{
		Priority:   req.Priority,
		GroupOrder: req.GroupOrder,
		Forward:    true,
		Filter:     message.FilterLargestObject,
	}
	if err := p.upstream.Subscribe(ctx, writer, req.TrackNamespace, name, cfg); err != nil {
		return nil, err
	}
	return reader, nil
}
