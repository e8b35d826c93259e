package relay

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/serve"
)

func TestLocalsRegisterAndGet(t *testing.T) {
	t.Parallel()

	locals := NewLocals()
	ns := coding.NewTrackNamespace("live")
	_, _, reader := serve.Tracks{Namespace: ns}.Produce()

	registration, err := locals.Register(reader)
	require.NoError(t, err)
	require.NotNil(t, locals.Get(ns))

	registration.Close()
	require.Nil(t, locals.Get(ns))
}

func TestLocalsRegisterRejectsDuplicate(t *testing.T) {
	t.Parallel()

	locals := NewLocals()
	ns := coding.NewTrackNamespace("live")
	_, _, readerA := serve.Tracks{Namespace: ns}.Produce()
	_, _, readerB := serve.Tracks{Namespace: ns}.Produce()

	_, err := locals.Register(readerA)
	require.NoError(t, err)

	_, err = locals.Register(readerB)
	require.ErrorIs(t, err, serve.ErrDuplicate)
}

func TestLocalsGetUnknownNamespace(t *testing.T) {
	t.Parallel()

	locals := NewLocals()
	require.Nil(t, locals.Get(coding.NewTrackNamespace("missing")))
}
