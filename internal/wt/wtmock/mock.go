// Package wtmock provides an in-memory session.Transport
// implementation for tests, standing in for a real WebTransport
// connection so session-layer tests don't need live QUIC sockets.
package wtmock

import (
	"context"
	"io"

	"github.com/quic-moq/moqt/session"
)

// Transport is one end of an in-memory connection pair. Streams
// opened on one end are delivered to the peer's Accept calls in
// the order they were opened.
type Transport struct {
	peer *Transport

	outStreams    chan io.ReadWriteCloser
	outUniStreams chan io.WriteCloser
	inUniStreams  chan io.Reader
	datagrams     chan []byte
	closed        chan struct{}
}

// uniStream adapts an in-memory pipe's write end to session.UniStream.
// Priority has no effect on the in-memory pipe; it's recorded for
// assertions in tests that care.
type uniStream struct {
	io.WriteCloser
	priority int32
}

func (s *uniStream) SetPriority(priority int32) { s.priority = priority }

// NewPair returns two connected transports: a stream or datagram sent
// on one is received by the other.
func NewPair() (*Transport, *Transport) {
	a := &Transport{
		outStreams:    make(chan io.ReadWriteCloser, 16),
		outUniStreams: make(chan io.WriteCloser, 16),
		inUniStreams:  make(chan io.Reader, 16),
		datagrams:     make(chan []byte, 256),
		closed:        make(chan struct{}),
	}
	b := &Transport{
		outStreams:    make(chan io.ReadWriteCloser, 16),
		outUniStreams: make(chan io.WriteCloser, 16),
		inUniStreams:  make(chan io.Reader, 16),
		datagrams:     make(chan []byte, 256),
		closed:        make(chan struct{}),
	}
	a.peer, b.peer = b, a
	return a, b
}

// OpenStream creates a bidirectional pipe and delivers the peer's end
// to the peer's AcceptStream.
func (t *Transport) OpenStream(ctx context.Context) (io.ReadWriteCloser, error) {
	local, remote := newPipe()
	select {
	case t.peer.outStreams <- remote:
		return local, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Transport) AcceptStream(ctx context.Context) (io.ReadWriteCloser, error) {
	select {
	case s := <-t.outStreams:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.closed:
		return nil, io.EOF
	}
}

// OpenUniStream creates a one-way pipe; the write end is returned
// locally, and the read end is delivered to the peer's
// AcceptUniStream.
func (t *Transport) OpenUniStream(ctx context.Context) (session.UniStream, error) {
	r, w := io.Pipe()
	select {
	case t.peer.inUniStreams <- r:
		return &uniStream{WriteCloser: w}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Transport) AcceptUniStream(ctx context.Context) (io.Reader, error) {
	select {
	case s := <-t.inUniStreams:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.closed:
		return nil, io.EOF
	}
}

func (t *Transport) SendDatagram(payload []byte) error {
	cp := append([]byte(nil), payload...)
	select {
	case t.peer.datagrams <- cp:
		return nil
	case <-t.closed:
		return io.ErrClosedPipe
	}
}

func (t *Transport) ReceiveDatagram(ctx context.Context) ([]byte, error) {
	select {
	case d := <-t.datagrams:
		return d, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.closed:
		return nil, io.EOF
	}
}

func (t *Transport) CloseWithError(code uint64, reason string) error {
	select {
	case <-t.closed:
	default:
		close(t.closed)
	}
	return nil
}

// pipe is a full-duplex in-memory stream built from two io.Pipes.
type pipe struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func newPipe() (local, remote *pipe) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	return &pipe{r: r1, w: w2}, &pipe{r: r2, w: w1}
}

func (p *pipe) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipe) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p *pipe) Close() error {
	_ = p.w.Close()
	return p.r.Close()
}
