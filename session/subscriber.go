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

// Subscriber is the subscriber-side half of one session: it tracks
// namespaces the peer has announced, issues Subscribe requests
// against tracks within them, and routes incoming objects (streams
// and datagrams) back to the matching track writer by track_alias.
type Subscriber struct {
	outgoing  *outgoingQueue
	requestID *requestIDAllocator

	mu         sync.Mutex
	announced  map[string]*Announced
	subscribes map[uint64]*subscribeEntry // keyed by track_alias

	unknownAnnounced *watch.Queue[*Announced]
}

func newSubscriber(outgoing *outgoingQueue, requestID *requestIDAllocator) *Subscriber {
	return &Subscriber{
		outgoing:         outgoing,
		requestID:        requestID,
		announced:        make(map[string]*Announced),
		subscribes:       make(map[uint64]*subscribeEntry),
		unknownAnnounced: watch.NewQueue[*Announced](),
	}
}

// Announced blocks for the next namespace announcement from the
// peer, for the application to Accept or Reject.
func (s *Subscriber) Announced(ctx context.Context) (*Announced, error) {
	a, ok := s.unknownAnnounced.Pop(ctx)
	if !ok {
		return nil, nil
	}
	return a, nil
}

// Subscribe requests namespace/name from the peer, feeding the
// resulting track into writer. It blocks until SubscribeOk or
// SubscribeError arrives, or ctx is cancelled.
func (s *Subscriber) Subscribe(ctx context.Context, writer *serve.TrackWriter, namespace coding.TrackNamespace, name string, cfg SubscribeConfig) error {
	id := s.requestID.Next()
	entry := newSubscribeEntry(id, writer)

	s.mu.Lock()
	s.subscribes[id] = entry
	s.mu.Unlock()

	cleanup := func() {
		s.mu.Lock()
		delete(s.subscribes, id)
		s.mu.Unlock()
	}

	req := message.Subscribe{
		ID:             id,
		TrackNamespace: namespace,
		TrackName:      coding.TupleField(name),
		Priority:       cfg.Priority,
		GroupOrder:     cfg.GroupOrder,
		Forward:        cfg.Forward,
		Filter:         cfg.Filter,
		Start:          cfg.Start,
		EndGroup:       cfg.EndGroup,
		Params:         cfg.Params,
	}
	if err := s.outgoing.send(message.Message{Type: message.TypeSubscribe, Subscribe: &req}); err != nil {
		cleanup()
		return err
	}

	select {
	case result := <-entry.accepted:
		if result.err != nil {
			cleanup()
			return result.err
		}
	case <-ctx.Done():
		cleanup()
		return ctx.Err()
	}

	go s.awaitDone(entry, writer)
	return nil
}

func (s *Subscriber) awaitDone(entry *subscribeEntry, writer *serve.TrackWriter) {
	defer func() {
		s.mu.Lock()
		delete(s.subscribes, entry.id)
		s.mu.Unlock()
	}()
	done := <-entry.done
	writer.Close(serve.Closed(done.StatusCode))
}

// recvMessage dispatches one publisher-originated control message.
func (s *Subscriber) recvMessage(msg message.Message) error {
	switch msg.Type {
	case message.TypeSubscribeOk:
		return s.recvSubscribeOk(*msg.SubscribeOk)
	case message.TypeSubscribeError:
		return s.recvSubscribeError(*msg.SubscribeError)
	case message.TypeSubscribeDone:
		return s.recvSubscribeDone(*msg.SubscribeDone)
	case message.TypePublishNamespace:
		return s.recvPublishNamespace(*msg.PublishNamespace)
	case message.TypePublishNamespaceDone:
		return s.recvPublishNamespaceDone(*msg.PublishNamespaceDone)
	default:
		return s.recvReserved(msg)
	}
}

// recvReserved rejects a wire-defined but unimplemented
// publisher-originated message with NotImplemented. Everything that
// reaches here (SubscribeNamespaceOk, Fetch's Ok/Error, and also GoAway
// and MaxRequestID, which this subscriber does not act on) gets no
// reply — it is just logged at debug level as unimplemented.
func (s *Subscriber) recvReserved(msg message.Message) error {
	slog.Debug("session: unimplemented message", "error", Unimplemented(reservedFeatureName(msg.Type)))
	return nil
}

func (s *Subscriber) recvSubscribeOk(msg message.SubscribeOk) error {
	s.mu.Lock()
	entry, ok := s.subscribes[msg.ID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	m := msg
	entry.accepted <- subscribeResult{ok: &m}
	return nil
}

func (s *Subscriber) recvSubscribeError(msg message.SubscribeError) error {
	s.mu.Lock()
	entry, ok := s.subscribes[msg.ID]
	delete(s.subscribes, msg.ID)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	entry.accepted <- subscribeResult{err: Wrap(msg.ErrorCode, "subscribe rejected", nil)}
	entry.writer.Close(serve.Closed(msg.ErrorCode))
	return nil
}

func (s *Subscriber) recvSubscribeDone(msg message.SubscribeDone) error {
	s.mu.Lock()
	entry, ok := s.subscribes[msg.ID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	entry.done <- msg
	return nil
}

func (s *Subscriber) recvPublishNamespace(msg message.PublishNamespace) error {
	a := &Announced{ID: msg.ID, Namespace: msg.TrackNamespace, subscriber: s}
	s.mu.Lock()
	s.announced[namespaceKey(msg.TrackNamespace)] = a
	s.mu.Unlock()
	return s.unknownAnnounced.Push(a)
}

func (s *Subscriber) recvPublishNamespaceDone(msg message.PublishNamespaceDone) error {
	s.mu.Lock()
	delete(s.announced, namespaceKey(msg.TrackNamespace))
	s.mu.Unlock()
	return nil
}

func (s *Subscriber) acceptAnnounced(a *Announced) error {
	return s.outgoing.send(message.Message{
		Type:               message.TypePublishNamespaceOk,
		PublishNamespaceOk: &message.PublishNamespaceOk{ID: a.ID},
	})
}

func (s *Subscriber) rejectAnnounced(a *Announced, code uint64, reason string) error {
	s.mu.Lock()
	delete(s.announced, namespaceKey(a.Namespace))
	s.mu.Unlock()
	return s.outgoing.send(message.Message{
		Type: message.TypePublishNamespaceError,
		PublishNamespaceError: &message.PublishNamespaceError{
			ID:           a.ID,
			ErrorCode:    code,
			ReasonPhrase: coding.ReasonPhrase(reason),
		},
	})
}
