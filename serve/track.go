// Package serve implements the track graph: a tree of state cells
// through which a publisher feeds data objects to fanned-out,
// independently-paced subscribers.
//
// Each node has a Writer (single producer) and a cloneable Reader
// (multi-consumer). Writers produce children; readers iterate them
// asynchronously, and cloned readers share content but keep
// independent read cursors.
package serve

import (
	"context"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/watch"
)

// Track is static information identifying a track: its namespace and
// name within that namespace.
type Track struct {
	Namespace coding.TrackNamespace
	Name      string
}

type trackState struct {
	mode   *TrackReaderMode
	closed *Error
}

// Produce splits t into a Writer/Reader pair sharing one state cell.
func (t Track) Produce() (*TrackWriter, *TrackReader) {
	state := watch.NewState(trackState{})
	info := t
	return &TrackWriter{state: state, Info: info}, &TrackReader{state: state, Info: info}
}

// TrackWriter chooses the track's consumption mode exactly once by
// calling Stream, Subgroups, or Datagrams, then feeds that mode.
type TrackWriter struct {
	Info  Track
	state *watch.State[trackState]
}

// Stream opens the track in legacy single-stream mode.
func (w *TrackWriter) Stream(priority uint8) (*StreamWriter, error) {
	writer, reader := Stream{Track: w.Info, Priority: priority}.Produce()
	if err := w.setMode(TrackReaderMode{Stream: reader}); err != nil {
		return nil, err
	}
	return writer, nil
}

// Subgroups opens the track in subgroup mode.
func (w *TrackWriter) Subgroups() (*SubgroupsWriter, error) {
	writer, reader := Subgroups{Track: w.Info}.Produce()
	if err := w.setMode(TrackReaderMode{Subgroups: reader}); err != nil {
		return nil, err
	}
	return writer, nil
}

// Datagrams opens the track in datagram mode.
func (w *TrackWriter) Datagrams() (*DatagramsWriter, error) {
	writer, reader := Datagrams{Track: w.Info}.Produce()
	if err := w.setMode(TrackReaderMode{Datagrams: reader}); err != nil {
		return nil, err
	}
	return writer, nil
}

// setMode records mode as the track's chosen consumption path. It is
// immutable once set: a second call, from Stream, Subgroups, or
// Datagrams, fails with ErrMode.
func (w *TrackWriter) setMode(mode TrackReaderMode) error {
	v, _ := w.state.Lock()
	if v.mode != nil {
		return ErrMode
	}
	if !w.state.LockMut(func(s *trackState) {
		if s.mode != nil {
			return
		}
		s.mode = &mode
	}) {
		return ErrCancel
	}
	return nil
}

// Close closes the track with err, visible to readers awaiting Mode
// or Closed.
func (w *TrackWriter) Close(err *Error) error {
	v, _ := w.state.Lock()
	if v.closed != nil {
		return v.closed
	}
	if !w.state.LockMut(func(s *trackState) { s.closed = err }) {
		return ErrCancel
	}
	w.state.Close()
	return nil
}

// TrackReader receives the mode chosen by the writer and, once known,
// delegates to that mode's own reader. Clone it to fan the track out
// to additional independent consumers.
type TrackReader struct {
	Info  Track
	state *watch.State[trackState]
}

// Clone returns an independent reader sharing this track's content.
func (r *TrackReader) Clone() *TrackReader {
	r.state.AddReader()
	return &TrackReader{Info: r.Info, state: r.state}
}

// Release gives up this reader's claim on the track. Call it when
// done with a cloned reader so the writer can detect that no readers
// remain.
func (r *TrackReader) Release() {
	r.state.ReleaseReader()
}

// Mode blocks until the writer has chosen a consumption mode, or the
// track closes or ctx is cancelled first.
func (r *TrackReader) Mode(ctx context.Context) (TrackReaderMode, error) {
	for {
		v, modified := r.state.Lock()
		if v.mode != nil {
			return *v.mode, nil
		}
		if v.closed != nil {
			return TrackReaderMode{}, v.closed
		}
		if r.state.Closed() {
			return TrackReaderMode{}, ErrDone
		}
		select {
		case <-modified:
		case <-ctx.Done():
			return TrackReaderMode{}, ctx.Err()
		}
	}
}

// Closed blocks until the track closes, returning the closing error
// (nil on a clean close).
func (r *TrackReader) Closed(ctx context.Context) error {
	for {
		v, modified := r.state.Lock()
		if v.closed != nil {
			return v.closed
		}
		if r.state.Closed() {
			return nil
		}
		select {
		case <-modified:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// TrackReaderMode is a tagged union of the three ways a track can be
// consumed, set immutably by whichever TrackWriter method is called
// first.
type TrackReaderMode struct {
	Stream    *StreamReader
	Subgroups *SubgroupsReader
	Datagrams *DatagramsReader
}

// Latest returns the largest (group, object) location observed so
// far in whichever mode is set, if any object has arrived yet.
func (m TrackReaderMode) Latest() (coding.Location, bool) {
	switch {
	case m.Subgroups != nil:
		return m.Subgroups.Latest()
	case m.Datagrams != nil:
		return m.Datagrams.Latest()
	case m.Stream != nil:
		return m.Stream.Latest()
	default:
		return coding.Location{}, false
	}
}
