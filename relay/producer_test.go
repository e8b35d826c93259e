package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/internal/wt/wtmock"
	"github.com/quic-moq/moqt/message"
	"github.com/quic-moq/moqt/serve"
	"github.com/quic-moq/moqt/session"
)

func TestProducerResolveLocal(t *testing.T) {
	t.Parallel()

	ns := coding.NewTrackNamespace("live")
	_, _, reader := serve.Tracks{Namespace: ns}.Produce()

	locals := NewLocals()
	_, err := locals.Register(reader)
	require.NoError(t, err)

	producer := NewProducer(locals, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := producer.resolve(ctx, message.Subscribe{TrackNamespace: ns, TrackName: coding.TupleField("video")})
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestProducerResolveNotFoundWithoutUpstream(t *testing.T) {
	t.Parallel()

	producer := NewProducer(NewLocals(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := producer.resolve(ctx, message.Subscribe{
		TrackNamespace: coding.NewTrackNamespace("missing"),
		TrackName:      coding.TupleField("video"),
	})
	require.ErrorIs(t, err, serve.ErrNotFound)
}

// TestProducerResolveFallsThroughToUpstream confirms a namespace not
// registered in Locals is requested from the configured upstream
// subscriber instead of failing outright.
func TestProducerResolveFallsThroughToUpstream(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	clientTransport, serverTransport := wtmock.NewPair()

	type result struct {
		sess *session.Session
		err  error
	}
	localCh := make(chan result, 1)
	remoteCh := make(chan result, 1)
	go func() {
		s, err := session.Connect(ctx, clientTransport, message.Versions{message.Draft14})
		localCh <- result{s, err}
	}()
	go func() {
		s, err := session.Accept(ctx, serverTransport, message.Versions{message.Draft14})
		remoteCh <- result{s, err}
	}()
	local := <-localCh
	require.NoError(t, local.err)
	remote := <-remoteCh
	require.NoError(t, remote.err)

	go local.sess.Run(ctx)
	go remote.sess.Run(ctx)

	ns := coding.NewTrackNamespace("upstream-live")
	remoteTracks := serve.Tracks{Namespace: ns}
	remoteTracksWriter, _, remoteTracksReader := remoteTracks.Produce()
	remoteTrackWriter, err := remoteTracksWriter.Create("video")
	require.NoError(t, err)

	go func() { _ = remote.sess.Publisher.Announce(ctx, remoteTracksReader) }()

	announced, err := local.sess.Subscriber.Announced(ctx)
	require.NoError(t, err)
	require.NoError(t, announced.Accept())

	producer := NewProducer(NewLocals(), local.sess.Subscriber)

	resolveErrCh := make(chan error, 1)
	var got *serve.TrackReader
	go func() {
		var err error
		got, err = producer.resolve(ctx, message.Subscribe{TrackNamespace: ns, TrackName: coding.TupleField("video")})
		resolveErrCh <- err
	}()

	_, err = remoteTrackWriter.Subgroups()
	require.NoError(t, err)

	require.NoError(t, <-resolveErrCh)
	require.NotNil(t, got)
}
