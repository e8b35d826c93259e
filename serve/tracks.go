package serve

import (
	"context"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/watch"
)

// fullTrackName keys the track map by namespace string plus track
// name; TrackNamespace itself holds a slice and isn't comparable.
type fullTrackName struct {
	namespace string
	name      string
}

func fullName(namespace coding.TrackNamespace, name string) fullTrackName {
	return fullTrackName{namespace: namespace.String(), name: name}
}

// Tracks is static information about a broadcast: the namespace its
// tracks are published under.
type Tracks struct {
	Namespace coding.TrackNamespace
}

type tracksState struct {
	tracks map[fullTrackName]*TrackReader
}

// Produce splits t into a Writer (creates tracks), a Request feed
// (receives subscriber-driven track requests for names the writer
// hasn't created yet), and a Reader (looks up or requests tracks by
// name).
func (t Tracks) Produce() (*TracksWriter, *TracksRequest, *TracksReader) {
	state := watch.NewState(tracksState{tracks: make(map[fullTrackName]*TrackReader)})
	queue := watch.NewQueue[*TrackWriter]()
	return &TracksWriter{Info: t, state: state},
		&TracksRequest{Info: t, state: state, incoming: queue},
		&TracksReader{Info: t, state: state, queue: queue}
}

// TracksWriter creates and removes tracks published under one
// broadcast's namespace.
type TracksWriter struct {
	Info  Tracks
	state *watch.State[tracksState]
}

// Create inserts a fresh track under name, overwriting any existing
// track by that name. It fails only if no TracksReader remains.
func (w *TracksWriter) Create(name string) (*TrackWriter, error) {
	writer, reader := Track{Namespace: w.Info.Namespace, Name: name}.Produce()
	full := fullName(w.Info.Namespace, name)

	if !w.state.LockMut(func(s *tracksState) { s.tracks[full] = reader }) {
		return nil, ErrCancel
	}
	return writer, nil
}

// Remove deletes a track by full name, returning its reader if it
// existed.
func (w *TracksWriter) Remove(namespace coding.TrackNamespace, name string) *TrackReader {
	full := fullName(namespace, name)
	var removed *TrackReader
	w.state.LockMut(func(s *tracksState) {
		removed = s.tracks[full]
		delete(s.tracks, full)
	})
	return removed
}

// TracksRequest delivers subscriber-driven requests for tracks the
// writer hasn't created yet. A writer that never calls Next leaves
// every such request to close with NotFound once the request queue is
// torn down via Close.
type TracksRequest struct {
	Info     Tracks
	state    *watch.State[tracksState]
	incoming *watch.Queue[*TrackWriter]
}

// Next blocks for the next requested track, or returns nil once the
// request queue has been closed by Close or ctx is cancelled.
func (r *TracksRequest) Next(ctx context.Context) (*TrackWriter, error) {
	writer, ok := r.incoming.Pop(ctx)
	if !ok {
		return nil, nil
	}
	return writer, nil
}

// Close drains any still-queued requests, closing each with NotFound,
// since no writer will ever fulfil them.
func (r *TracksRequest) Close() {
	for _, writer := range r.incoming.Close() {
		writer.Close(ErrNotFound)
	}
}

// TracksReader looks up or requests tracks within one broadcast by
// name. Clone it to create independent subscriber handles.
type TracksReader struct {
	Info  Tracks
	state *watch.State[tracksState]
	queue *watch.Queue[*TrackWriter]
}

// Clone returns an independent reader sharing the same broadcast.
func (r *TracksReader) Clone() *TracksReader {
	r.state.AddReader()
	return &TracksReader{Info: r.Info, state: r.state, queue: r.queue}
}

// Release gives up this reader's claim on the broadcast.
func (r *TracksReader) Release() {
	r.state.ReleaseReader()
}

// GetTrackReader looks up an existing track by full name, without
// requesting one be created.
func (r *TracksReader) GetTrackReader(namespace coding.TrackNamespace, name string) *TrackReader {
	v, _ := r.state.Lock()
	return v.tracks[fullName(namespace, name)]
}

// Subscribe returns the TrackReader for (namespace, name), inserting a
// fresh producer/consumer pair and handing the producer to the
// request queue if the track doesn't exist yet. It returns nil if the
// request queue has been closed (caller translates this to NotFound).
func (r *TracksReader) Subscribe(namespace coding.TrackNamespace, name string) *TrackReader {
	full := fullName(namespace, name)

	v, _ := r.state.Lock()
	if reader, ok := v.tracks[full]; ok {
		return reader
	}

	writer, reader := Track{Namespace: namespace, Name: name}.Produce()
	if err := r.queue.Push(writer); err != nil {
		return nil
	}

	r.state.LockMut(func(s *tracksState) { s.tracks[full] = reader })
	return reader
}
