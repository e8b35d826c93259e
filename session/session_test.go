package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/internal/wt/wtmock"
	"github.com/quic-moq/moqt/message"
	"github.com/quic-moq/moqt/session"
)

func connectPair(t *testing.T, ctx context.Context) (*session.Session, *session.Session) {
	t.Helper()
	clientTransport, serverTransport := wtmock.NewPair()

	type result struct {
		sess *session.Session
		err  error
	}
	clientCh := make(chan result, 1)
	serverCh := make(chan result, 1)

	go func() {
		s, err := session.Connect(ctx, clientTransport, message.Versions{message.Draft14})
		clientCh <- result{s, err}
	}()
	go func() {
		s, err := session.Accept(ctx, serverTransport, message.Versions{message.Draft14})
		serverCh <- result{s, err}
	}()

	client := <-clientCh
	require.NoError(t, client.err)
	server := <-serverCh
	require.NoError(t, server.err)

	return client.sess, server.sess
}

func TestConnectAcceptNegotiatesDraft14(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, server := connectPair(t, ctx)

	require.Equal(t, message.Draft14, client.Version)
	require.Equal(t, message.Draft14, server.Version)
}

// TestAcceptRejectsVersionMismatch drives a raw ClientSetup over the
// mock transport (bypassing Connect) to confirm Accept rejects a peer
// offering no version the server supports, without hanging waiting
// for a ServerSetup reply that never comes.
func TestAcceptRejectsVersionMismatch(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	clientTransport, serverTransport := wtmock.NewPair()

	go func() {
		stream, err := clientTransport.OpenStream(ctx)
		if err != nil {
			return
		}
		w := coding.NewWriter()
		_ = (message.ClientSetup{Versions: message.Versions{message.Draft14}}).Encode(w)
		_, _ = stream.Write(w.Bytes())
	}()

	_, err := session.Accept(ctx, serverTransport, message.Versions{message.Version(1)})
	require.Error(t, err)
}
