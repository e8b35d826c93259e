package serve

import (
	"context"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/data"
	"github.com/quic-moq/moqt/watch"
)

// Datagram is one application-level object sent as a QUIC datagram.
// The session layer sends it as a status variant (no payload) when
// Status is not ObjectStatusNormal, and as a payload variant otherwise.
type Datagram struct {
	GroupID  uint64
	ObjectID uint64
	Priority uint8
	Status   data.ObjectStatus
	Payload  []byte
}

// Datagrams is a track opened in datagram mode: an unordered fanout of
// individually-addressed objects, one per QUIC datagram.
type Datagrams struct {
	Track Track
}

type datagramsState struct {
	objects []Datagram
	closed  *Error
}

// Produce splits d into a Writer/Reader pair.
func (d Datagrams) Produce() (*DatagramsWriter, *DatagramsReader) {
	state := watch.NewState(datagramsState{})
	return &DatagramsWriter{Track: d.Track, state: state}, &DatagramsReader{Track: d.Track, state: state}
}

// DatagramsWriter appends datagram objects to a track.
type DatagramsWriter struct {
	Track Track
	state *watch.State[datagramsState]
}

// Write appends one datagram object.
func (w *DatagramsWriter) Write(object Datagram) error {
	if !w.state.LockMut(func(s *datagramsState) { s.objects = append(s.objects, object) }) {
		return ErrCancel
	}
	return nil
}

// Close closes the datagram sequence with err.
func (w *DatagramsWriter) Close(err *Error) error {
	v, _ := w.state.Lock()
	if v.closed != nil {
		return v.closed
	}
	if !w.state.LockMut(func(s *datagramsState) { s.closed = err }) {
		return ErrCancel
	}
	w.state.Close()
	return nil
}

// DatagramsReader observes newly-written datagram objects in order.
type DatagramsReader struct {
	Track Track
	state *watch.State[datagramsState]
	index int
}

// Clone returns an independent reader over the same datagram
// sequence, starting from the current position.
func (r *DatagramsReader) Clone() *DatagramsReader {
	r.state.AddReader()
	return &DatagramsReader{Track: r.Track, state: r.state, index: r.index}
}

// Release gives up this reader's claim on the sequence.
func (r *DatagramsReader) Release() {
	r.state.ReleaseReader()
}

// Next blocks until the next datagram object is available, returning
// nil once the sequence closes cleanly.
func (r *DatagramsReader) Next(ctx context.Context) (*Datagram, error) {
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

// Latest returns the largest location observed among written objects.
func (r *DatagramsReader) Latest() (coding.Location, bool) {
	v, _ := r.state.Lock()
	if len(v.objects) == 0 {
		return coding.Location{}, false
	}
	last := v.objects[len(v.objects)-1]
	return coding.Location{Group: last.GroupID, Object: last.ObjectID}, true
}
