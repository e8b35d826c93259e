package session

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/message"
)

// Session is one MoQT connection after a completed handshake: a
// control stream plus the publisher and subscriber state built on
// top of it. Run drives the session's four concurrent tasks until
// ctx is cancelled or a fatal error occurs on any of them.
type Session struct {
	transport Transport
	control   io.ReadWriteCloser
	reader    *controlReader
	writer    *controlWriter

	outgoing   *outgoingQueue
	Publisher  *Publisher
	Subscriber *Subscriber

	Version message.Version
}

// Connect performs the client side of the handshake: open the
// control stream, offer versions, and accept the server's choice.
func Connect(ctx context.Context, transport Transport, versions message.Versions) (*Session, error) {
	control, err := transport.OpenStream(ctx)
	if err != nil {
		return nil, Wrap(CodeInternal, "open control stream", err)
	}

	w := coding.NewWriter()
	if err := (message.ClientSetup{Versions: versions}).Encode(w); err != nil {
		return nil, FromEncodeError(err.(*coding.EncodeError))
	}
	if _, err := control.Write(w.Bytes()); err != nil {
		return nil, Wrap(CodeInternal, "write client setup", err)
	}

	reader := newControlReader(control)
	serverSetup, err := readHandshakeFrame(reader, message.DecodeServerSetup)
	if err != nil {
		return nil, err
	}
	if !versions.Contains(serverSetup.Version) {
		return nil, VersionError(versions, message.Versions{serverSetup.Version})
	}

	return newSession(transport, control, reader, serverSetup.Version, 0), nil
}

// Accept performs the server side of the handshake: read the
// client's offered versions, pick the first mutually supported one,
// and reply.
func Accept(ctx context.Context, transport Transport, supported message.Versions) (*Session, error) {
	control, err := transport.AcceptStream(ctx)
	if err != nil {
		return nil, Wrap(CodeInternal, "accept control stream", err)
	}

	reader := newControlReader(control)
	clientSetup, err := readHandshakeFrame(reader, message.DecodeClientSetup)
	if err != nil {
		return nil, err
	}
	version, ok := message.NegotiateVersion(clientSetup.Versions, supported)
	if !ok {
		return nil, VersionError(clientSetup.Versions, supported)
	}

	w := coding.NewWriter()
	if err := (message.ServerSetup{Version: version}).Encode(w); err != nil {
		return nil, FromEncodeError(err.(*coding.EncodeError))
	}
	if _, err := control.Write(w.Bytes()); err != nil {
		return nil, Wrap(CodeInternal, "write server setup", err)
	}

	return newSession(transport, control, reader, version, 1), nil
}

func newSession(transport Transport, control io.ReadWriteCloser, reader *controlReader, version message.Version, firstID uint64) *Session {
	outgoing := newOutgoingQueue()
	ids := newRequestIDAllocator(firstID)
	return &Session{
		transport:  transport,
		control:    control,
		reader:     reader,
		writer:     newControlWriter(control),
		outgoing:   outgoing,
		Publisher:  newPublisher(outgoing, transport, ids),
		Subscriber: newSubscriber(outgoing, ids),
		Version:    version,
	}
}

// readHandshakeFrame retries decode until a complete handshake frame
// (ClientSetup or ServerSetup) has arrived, mirroring controlReader's
// own incremental-decode loop but for the handshake's distinct framing.
func readHandshakeFrame[T any](reader *controlReader, decode func(*coding.Reader) (T, error)) (T, error) {
	for {
		cur := coding.NewReader(reader.buf)
		v, err := decode(cur)
		if err == nil {
			reader.buf = reader.buf[cur.Pos():]
			return v, nil
		}
		var zero T
		if !coding.IsMore(err) {
			return zero, FromDecodeError(err.(*coding.DecodeError))
		}
		if err := reader.fill(); err != nil {
			return zero, err
		}
	}
}

// Run drives the session's four concurrent tasks: sending queued
// control messages, receiving and dispatching incoming ones, and
// accepting incoming unidirectional streams and datagrams. It
// returns the first task's error (or ctx's, if cancelled first) and
// closes the underlying transport.
func (s *Session) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error { return s.runSend(ctx) })
	group.Go(func() error { return s.runReceive(ctx) })
	group.Go(func() error { return s.runStreams(ctx) })
	group.Go(func() error { return s.runDatagrams(ctx) })

	err := group.Wait()
	if err != nil {
		if se, ok := err.(*Error); ok {
			_ = s.transport.CloseWithError(se.Code, se.message)
		} else {
			_ = s.transport.CloseWithError(CodeInternal, "session closed")
		}
	}
	return err
}

func (s *Session) runSend(ctx context.Context) error {
	for {
		msg, ok := s.outgoing.queue.Pop(ctx)
		if !ok {
			return nil
		}
		if err := s.writer.WriteMessage(msg); err != nil {
			return err
		}
	}
}

func (s *Session) runReceive(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg, err := s.reader.ReadMessage()
		if err != nil {
			return err
		}
		if isSubscriberOriginated(msg.Type) {
			if err := s.Publisher.recvMessage(msg); err != nil {
				return err
			}
			continue
		}
		if err := s.Subscriber.recvMessage(msg); err != nil {
			return err
		}
	}
}

func isSubscriberOriginated(typ uint64) bool {
	switch typ {
	case message.TypeSubscribe, message.TypeSubscribeUpdate, message.TypeUnsubscribe,
		message.TypePublishNamespaceOk, message.TypePublishNamespaceError, message.TypePublishNamespaceCancel,
		message.TypeTrackStatus, message.TypeSubscribeNamespace, message.TypeSubscribeNamespaceError,
		message.TypeUnsubscribeNamespace, message.TypeFetch, message.TypeFetchCancel,
		message.TypeRequestsBlocked:
		return true
	default:
		return false
	}
}

func (s *Session) runStreams(ctx context.Context) error {
	for {
		stream, err := s.transport.AcceptUniStream(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return Wrap(CodeInternal, "accept uni stream", err)
		}
		go func() {
			_ = s.Subscriber.recvUniStream(stream)
		}()
	}
}

func (s *Session) runDatagrams(ctx context.Context) error {
	for {
		payload, err := s.transport.ReceiveDatagram(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return Wrap(CodeInternal, "receive datagram", err)
		}
		go func(p []byte) {
			_ = s.Subscriber.recvDatagram(p)
		}(payload)
	}
}
