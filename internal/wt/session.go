// Package wt adapts github.com/quic-go/webtransport-go's Session to
// the session.Transport interface the MoQT session runtime needs.
package wt

import (
	"context"
	"io"

	"github.com/quic-go/webtransport-go"

	"github.com/quic-moq/moqt/session"
)

// Session wraps a WebTransport session, exposing exactly the surface
// the session package's Transport interface requires.
type Session struct {
	inner *webtransport.Session
}

// New wraps an established WebTransport session.
func New(inner *webtransport.Session) *Session {
	return &Session{inner: inner}
}

func (s *Session) OpenStream(ctx context.Context) (io.ReadWriteCloser, error) {
	return s.inner.OpenStreamSync(ctx)
}

func (s *Session) AcceptStream(ctx context.Context) (io.ReadWriteCloser, error) {
	return s.inner.AcceptStream(ctx)
}

func (s *Session) OpenUniStream(ctx context.Context) (session.UniStream, error) {
	stream, err := s.inner.OpenUniStreamSync(ctx)
	if err != nil {
		return nil, err
	}
	return uniStream{stream}, nil
}

// uniStream adapts webtransport-go's send stream to session.UniStream,
// translating its underlying priority type to the int32 the session
// layer uses.
type uniStream struct {
	webtransport.SendStream
}

func (s uniStream) SetPriority(priority int32) {
	s.SendStream.SetPriority(int(priority))
}

func (s *Session) AcceptUniStream(ctx context.Context) (io.Reader, error) {
	return s.inner.AcceptUniStream(ctx)
}

func (s *Session) SendDatagram(payload []byte) error {
	return s.inner.SendDatagram(payload)
}

func (s *Session) ReceiveDatagram(ctx context.Context) ([]byte, error) {
	return s.inner.ReceiveDatagram(ctx)
}

func (s *Session) CloseWithError(code uint64, reason string) error {
	return s.inner.CloseWithError(webtransport.SessionErrorCode(code), reason)
}
