package session

import (
	"context"
	"io"
)

// UniStream is the write side of a unidirectional QUIC stream, with
// control over its send priority: streams with a lower priority value
// are scheduled ahead of higher-valued ones when several compete for
// the same connection's send capacity.
type UniStream interface {
	io.WriteCloser
	SetPriority(priority int32)
}

// Transport is the data-plane surface a session needs from the
// underlying connection: opening unidirectional streams for subgroup
// and fetch delivery, and sending/receiving unreliable datagrams. A
// concrete implementation wraps a QUIC or WebTransport connection.
type Transport interface {
	OpenUniStream(ctx context.Context) (UniStream, error)
	AcceptUniStream(ctx context.Context) (io.Reader, error)
	SendDatagram(payload []byte) error
	ReceiveDatagram(ctx context.Context) ([]byte, error)
	OpenStream(ctx context.Context) (io.ReadWriteCloser, error)
	AcceptStream(ctx context.Context) (io.ReadWriteCloser, error)
	CloseWithError(code uint64, reason string) error
}
