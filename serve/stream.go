package serve

import (
	"context"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/watch"
)

// StreamObject is one object within a legacy single-stream track.
type StreamObject struct {
	GroupID  uint64
	ObjectID uint64
	Payload  []byte
}

// Stream is a track opened in legacy mode: every object for the track
// is sent, in order, on one unidirectional QUIC stream.
type Stream struct {
	Track    Track
	Priority uint8
}

type streamState struct {
	objects []StreamObject
	closed  *Error
}

// Produce splits s into a Writer/Reader pair.
func (s Stream) Produce() (*StreamWriter, *StreamReader) {
	state := watch.NewState(streamState{})
	return &StreamWriter{Track: s.Track, Priority: s.Priority, state: state},
		&StreamReader{Track: s.Track, Priority: s.Priority, state: state}
}

// StreamWriter appends objects to the track's single stream.
type StreamWriter struct {
	Track    Track
	Priority uint8
	state    *watch.State[streamState]
}

// Write appends one object.
func (w *StreamWriter) Write(object StreamObject) error {
	if !w.state.LockMut(func(s *streamState) { s.objects = append(s.objects, object) }) {
		return ErrCancel
	}
	return nil
}

// Close closes the stream with err.
func (w *StreamWriter) Close(err *Error) error {
	v, _ := w.state.Lock()
	if v.closed != nil {
		return v.closed
	}
	if !w.state.LockMut(func(s *streamState) { s.closed = err }) {
		return ErrCancel
	}
	w.state.Close()
	return nil
}

// StreamReader observes objects appended to the track's single
// stream, in order.
type StreamReader struct {
	Track    Track
	Priority uint8
	state    *watch.State[streamState]
	index    int
}

// Clone returns an independent reader over the same stream.
func (r *StreamReader) Clone() *StreamReader {
	r.state.AddReader()
	return &StreamReader{Track: r.Track, Priority: r.Priority, state: r.state, index: r.index}
}

// Release gives up this reader's claim on the stream.
func (r *StreamReader) Release() {
	r.state.ReleaseReader()
}

// Next blocks until the next object is available, returning nil once
// the stream closes cleanly.
func (r *StreamReader) Next(ctx context.Context) (*StreamObject, error) {
	for {
		v, modified := r.state.Lock()
		if r.index < len(v.objects) {
			object := v.objects[r.index]
			r.index++
			return &object, nil
		}
		if v.closed != nil {
			return nil, v.closed
		}
		if r.state.Closed() {
			return nil, nil
		}
		select {
		case <-modified:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Latest returns the largest location observed so far.
func (r *StreamReader) Latest() (coding.Location, bool) {
	v, _ := r.state.Lock()
	if len(v.objects) == 0 {
		return coding.Location{}, false
	}
	last := v.objects[len(v.objects)-1]
	return coding.Location{Group: last.GroupID, Object: last.ObjectID}, true
}
