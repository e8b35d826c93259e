package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/message"
	"github.com/quic-moq/moqt/serve"
	"github.com/quic-moq/moqt/watch"
)

// Publisher is the publisher-side half of one session: it announces
// namespaces, accepts the Subscribe requests that land on them, and
// forwards the resulting tracks' objects over the data plane.
type Publisher struct {
	outgoing  *outgoingQueue
	transport Transport
	requestID *requestIDAllocator

	mu          sync.Mutex
	announces   map[string]*announceEntry
	subscribeds map[uint64]*Subscribed

	unknownSubscribed *watch.Queue[*Subscribed]
}

func newPublisher(outgoing *outgoingQueue, transport Transport, requestID *requestIDAllocator) *Publisher {
	return &Publisher{
		outgoing:          outgoing,
		transport:         transport,
		requestID:         requestID,
		announces:         make(map[string]*announceEntry),
		subscribeds:       make(map[uint64]*Subscribed),
		unknownSubscribed: watch.NewQueue[*Subscribed](),
	}
}

// Announce advertises tracks' namespace to the peer and, once
// accepted, serves every Subscribe request that arrives for a track
// within it until ctx is cancelled or the peer cancels the
// announcement. It never returns nil early: a caller that wants
// fire-and-forget announcing should run it in its own goroutine.
func (p *Publisher) Announce(ctx context.Context, tracks *serve.TracksReader) error {
	id := p.requestID.Next()
	entry := newAnnounceEntry(id, tracks)
	key := namespaceKey(tracks.Info.Namespace)

	p.mu.Lock()
	if _, exists := p.announces[key]; exists {
		p.mu.Unlock()
		return ErrDuplicate
	}
	p.announces[key] = entry
	p.mu.Unlock()

	cleanup := func() {
		p.mu.Lock()
		delete(p.announces, key)
		p.mu.Unlock()
	}

	if err := p.outgoing.send(message.Message{
		Type:             message.TypePublishNamespace,
		PublishNamespace: &message.PublishNamespace{ID: id, TrackNamespace: tracks.Info.Namespace},
	}); err != nil {
		cleanup()
		return err
	}

	select {
	case err := <-entry.accepted:
		if err != nil {
			cleanup()
			return err
		}
	case <-ctx.Done():
		cleanup()
		return ctx.Err()
	}

	select {
	case <-entry.canceled:
	case <-ctx.Done():
	}
	cleanup()

	return p.outgoing.send(message.Message{
		Type:                 message.TypePublishNamespaceDone,
		PublishNamespaceDone: &message.PublishNamespaceDone{TrackNamespace: tracks.Info.Namespace},
	})
}

// Subscribed blocks for the next Subscribe request that didn't match
// any locally-announced namespace, for a caller (typically a relay
// forwarding upstream) to resolve by other means.
func (p *Publisher) Subscribed(ctx context.Context) (*Subscribed, error) {
	s, ok := p.unknownSubscribed.Pop(ctx)
	if !ok {
		return nil, nil
	}
	return s, nil
}

// recvMessage dispatches one subscriber-originated control message.
func (p *Publisher) recvMessage(msg message.Message) error {
	switch msg.Type {
	case message.TypeSubscribe:
		return p.recvSubscribe(*msg.Subscribe)
	case message.TypeSubscribeUpdate:
		return p.recvReserved(msg) // wire-defined, not handled: no in-flight range narrowing
	case message.TypeUnsubscribe:
		return p.recvUnsubscribe(*msg.Unsubscribe)
	case message.TypePublishNamespaceOk:
		return p.recvPublishNamespaceOk(*msg.PublishNamespaceOk)
	case message.TypePublishNamespaceError:
		return p.recvPublishNamespaceError(*msg.PublishNamespaceError)
	case message.TypePublishNamespaceCancel:
		return p.recvPublishNamespaceCancel(*msg.PublishNamespaceCancel)
	default:
		return p.recvReserved(msg)
	}
}

// recvReserved rejects a wire-defined but unimplemented
// subscriber-originated message with NotImplemented instead of
// silently dropping it: the NotImplemented error is logged at debug
// level, and SubscribeNamespace and Fetch also get a matching
// wire error reply since they're requests awaiting a response;
// SubscribeUpdate, TrackStatus (whose response reuses the same message
// type ambiguously across drafts, see the session runtime's design
// notes), SubscribeNamespaceError, UnsubscribeNamespace, FetchCancel,
// and RequestsBlocked get no reply.
func (p *Publisher) recvReserved(msg message.Message) error {
	slog.Debug("session: unimplemented message", "error", Unimplemented(reservedFeatureName(msg.Type)))

	id, ok := reservedRequestID(msg)
	if !ok {
		return nil
	}

	switch msg.Type {
	case message.TypeSubscribeNamespace:
		return p.outgoing.send(message.Message{
			Type: message.TypeSubscribeNamespaceError,
			SubscribeNamespaceError: &message.SubscribeNamespaceError{
				ID:           id,
				ErrorCode:    serve.CodeNotSupported,
				ReasonPhrase: coding.ReasonPhrase("not implemented"),
			},
		})
	case message.TypeFetch:
		return p.outgoing.send(message.Message{
			Type: message.TypeFetchError,
			FetchError: &message.FetchError{
				ID:           id,
				ErrorCode:    serve.CodeNotSupported,
				ReasonPhrase: coding.ReasonPhrase("not implemented"),
			},
		})
	default:
		return nil
	}
}

func (p *Publisher) recvSubscribe(req message.Subscribe) error {
	p.mu.Lock()
	if _, exists := p.subscribeds[req.ID]; exists {
		p.mu.Unlock()
		return ErrDuplicate
	}
	subscribed := newSubscribed(req, p.outgoing, p.transport)
	p.subscribeds[req.ID] = subscribed
	entry := p.announces[namespaceKey(req.TrackNamespace)]
	p.mu.Unlock()

	if entry != nil {
		track := entry.resolve(req.TrackNamespace, string(req.TrackName))
		go p.serveSubscribed(subscribed, track)
		return nil
	}

	if err := p.unknownSubscribed.Push(subscribed); err != nil {
		return p.outgoing.send(message.Message{
			Type: message.TypeSubscribeError,
			SubscribeError: &message.SubscribeError{
				ID:        req.ID,
				ErrorCode: serve.CodeTrackNotExist,
			},
		})
	}
	return nil
}

// serveSubscribed drives one accepted Subscribe's whole lifetime;
// call it in its own goroutine.
func (p *Publisher) serveSubscribed(subscribed *Subscribed, track *serve.TrackReader) {
	defer func() {
		p.mu.Lock()
		delete(p.subscribeds, subscribed.ID)
		p.mu.Unlock()
		if track != nil {
			track.Release()
		}
	}()
	if track == nil {
		_ = p.outgoing.send(message.Message{
			Type:           message.TypeSubscribeError,
			SubscribeError: &message.SubscribeError{ID: subscribed.ID, ErrorCode: serve.CodeTrackNotExist},
		})
		return
	}
	_ = subscribed.Serve(context.Background(), track)
}

func (p *Publisher) recvUnsubscribe(msg message.Unsubscribe) error {
	p.mu.Lock()
	delete(p.subscribeds, msg.ID)
	p.mu.Unlock()
	return nil
}

func (p *Publisher) recvPublishNamespaceOk(msg message.PublishNamespaceOk) error {
	p.withAnnounceByID(msg.ID, func(e *announceEntry) {
		select {
		case e.accepted <- nil:
		default:
		}
	})
	return nil
}

func (p *Publisher) recvPublishNamespaceError(msg message.PublishNamespaceError) error {
	p.withAnnounceByID(msg.ID, func(e *announceEntry) {
		select {
		case e.accepted <- Wrap(CodeInternal, "publish namespace rejected", ErrInternal):
		default:
		}
	})
	return nil
}

func (p *Publisher) recvPublishNamespaceCancel(msg message.PublishNamespaceCancel) error {
	p.withAnnounceByID(0, func(e *announceEntry) {
		close(e.canceled)
	}, namespaceKey(msg.TrackNamespace))
	return nil
}

// withAnnounceByID looks an announce up either by request id or,
// when key is supplied, by namespace key directly (PublishNamespaceCancel
// carries no request id on the wire).
func (p *Publisher) withAnnounceByID(id uint64, f func(*announceEntry), key ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(key) > 0 {
		if e, ok := p.announces[key[0]]; ok {
			f(e)
		}
		return
	}
	for _, e := range p.announces {
		if e.id == id {
			f(e)
			return
		}
	}
}
