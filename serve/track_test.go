package serve

import (
	"context"
	"testing"
	"time"

	"github.com/quic-moq/moqt/coding"
)

func testNamespace(parts ...string) coding.TrackNamespace {
	return coding.NewTrackNamespace(parts...)
}

func TestTrackModeBlocksUntilWriterChooses(t *testing.T) {
	t.Parallel()

	track := Track{Namespace: testNamespace("live"), Name: "video"}
	writer, reader := track.Produce()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	type result struct {
		mode TrackReaderMode
		err  error
	}
	done := make(chan result, 1)
	go func() {
		mode, err := reader.Mode(ctx)
		done <- result{mode, err}
	}()

	time.Sleep(20 * time.Millisecond)
	if _, err := writer.Subgroups(); err != nil {
		t.Fatalf("Subgroups: %v", err)
	}

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("Mode: %v", r.err)
		}
		if r.mode.Subgroups == nil {
			t.Fatal("Mode did not report Subgroups")
		}
	case <-ctx.Done():
		t.Fatal("Mode never resolved")
	}
}

func TestTrackModeIsImmutableOnceSet(t *testing.T) {
	t.Parallel()

	track := Track{Namespace: testNamespace("live"), Name: "video"}
	writer, reader := track.Produce()

	if _, err := writer.Subgroups(); err != nil {
		t.Fatalf("Subgroups: %v", err)
	}
	if _, err := writer.Datagrams(); err != ErrMode {
		t.Fatalf("second mode choice: err = %v, want ErrMode", err)
	}

	mode, err := reader.Mode(context.Background())
	if err != nil {
		t.Fatalf("Mode: %v", err)
	}
	if mode.Subgroups == nil {
		t.Fatal("second writer call overwrote the first-chosen mode")
	}
}

func TestTrackCloseResolvesPendingMode(t *testing.T) {
	t.Parallel()

	track := Track{Namespace: testNamespace("live"), Name: "video"}
	writer, reader := track.Produce()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := reader.Mode(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	if err := writer.Close(ErrNotFound); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-done:
		if err != ErrNotFound {
			t.Fatalf("Mode error = %v, want ErrNotFound", err)
		}
	case <-ctx.Done():
		t.Fatal("Mode never resolved after Close")
	}
}

func TestTrackClosedResolvesCleanlyWithoutError(t *testing.T) {
	t.Parallel()

	track := Track{Namespace: testNamespace("live"), Name: "video"}
	writer, reader := track.Produce()

	if err := writer.Close(nil); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := reader.Closed(ctx); err != nil {
		t.Fatalf("Closed: %v, want nil", err)
	}
}

func TestTrackReaderCloneIsIndependent(t *testing.T) {
	t.Parallel()

	track := Track{Namespace: testNamespace("live"), Name: "video"}
	writer, reader := track.Produce()
	clone := reader.Clone()
	defer clone.Release()

	if _, err := writer.Subgroups(); err != nil {
		t.Fatalf("Subgroups: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	m1, err := reader.Mode(ctx)
	if err != nil {
		t.Fatalf("reader.Mode: %v", err)
	}
	m2, err := clone.Mode(ctx)
	if err != nil {
		t.Fatalf("clone.Mode: %v", err)
	}
	if m1.Subgroups == nil || m2.Subgroups == nil {
		t.Fatal("both reader and clone should observe Subgroups mode")
	}
}
