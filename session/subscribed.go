package session

import (
	"context"

	"github.com/quic-moq/moqt/message"
	"github.com/quic-moq/moqt/serve"
)

// Subscribed is the publisher-side record of one accepted
// Subscribe request: enough to reply SubscribeOk/SubscribeError and,
// once a track is resolved, forward its objects.
type Subscribed struct {
	ID        uint64
	Request   message.Subscribe
	outgoing  *outgoingQueue
	transport Transport
}

// newSubscribed builds the publisher-side handle for an incoming
// Subscribe request, keeping the id the session will use as the
// track_alias (the two are the same number in this implementation, as
// permitted by the wire format).
func newSubscribed(req message.Subscribe, outgoing *outgoingQueue, transport Transport) *Subscribed {
	return &Subscribed{ID: req.ID, Request: req, outgoing: outgoing, transport: transport}
}

// Serve resolves track's mode, replies SubscribeOk (waiting for the
// send loop to observe it before any data is forwarded, per the
// ordering invariant that a subscriber must see SUBSCRIBE_OK before
// the first object it describes) and then forwards objects until ctx
// is cancelled or the track closes, at which point it replies
// SubscribeDone.
func (s *Subscribed) Serve(ctx context.Context, track *serve.TrackReader) error {
	mode, err := track.Mode(ctx)
	if err != nil {
		se := ToServeError(err)
		return s.outgoing.sendAndWait(ctx, message.Message{
			Type: message.TypeSubscribeError,
			SubscribeError: &message.SubscribeError{
				ID:        s.ID,
				ErrorCode: se.Code,
			},
		})
	}

	latest, exists := mode.Latest()
	ok := message.SubscribeOk{
		ID:            s.ID,
		TrackAlias:    s.ID,
		GroupOrder:    s.Request.GroupOrder,
		ContentExists: exists,
		Latest:        latest,
	}
	if err := s.outgoing.sendAndWait(ctx, message.Message{Type: message.TypeSubscribeOk, SubscribeOk: &ok}); err != nil {
		return err
	}

	forwardErr := s.forward(ctx, mode)

	status := uint64(0)
	if forwardErr != nil {
		status = ToServeError(forwardErr).Code
	}
	return s.outgoing.send(message.Message{
		Type: message.TypeSubscribeDone,
		SubscribeDone: &message.SubscribeDone{
			ID:         s.ID,
			StatusCode: status,
		},
	})
}

// Deny replies SubscribeError for a request that never resolved to a
// track at all, for a caller that couldn't even produce a TrackReader
// to pass to Serve.
func (s *Subscribed) Deny(err error) error {
	se := ToServeError(err)
	return s.outgoing.send(message.Message{
		Type: message.TypeSubscribeError,
		SubscribeError: &message.SubscribeError{
			ID:        s.ID,
			ErrorCode: se.Code,
		},
	})
}

func (s *Subscribed) forward(ctx context.Context, mode serve.TrackReaderMode) error {
	switch {
	case mode.Subgroups != nil:
		return forwardSubgroups(ctx, s.transport, s.ID, mode.Subgroups)
	case mode.Datagrams != nil:
		return forwardDatagrams(ctx, s.transport, s.ID, mode.Datagrams)
	case mode.Stream != nil:
		return forwardStream(ctx, s.transport, s.ID, mode.Stream)
	default:
		return nil
	}
}
