package serve

import (
	"context"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/data"
	"github.com/quic-moq/moqt/watch"
)

// Subgroups is a track opened in subgroup mode: a sequence of
// subgroups, one per (group_id, subgroup_id), each an ordered run of
// objects.
type Subgroups struct {
	Track Track
}

type subgroupsState struct {
	latest *SubgroupReader
	epoch  uint64
	closed *Error
}

// Produce splits s into a Writer/Reader pair.
func (s Subgroups) Produce() (*SubgroupsWriter, *SubgroupsReader) {
	state := watch.NewState(subgroupsState{})
	return &SubgroupsWriter{Track: s.Track, state: state},
		&SubgroupsReader{Track: s.Track, state: state}
}

// SubgroupsWriter appends subgroups to a track. Subgroup group ids
// must be increasing: a repeated group id is rejected with
// ErrDuplicate, and a lower one is never delivered.
type SubgroupsWriter struct {
	Track Track
	state *watch.State[subgroupsState]
}

// Append creates the next subgroup in group groupID, with the given
// subgroup id and priority.
func (w *SubgroupsWriter) Append(groupID, subgroupID uint64, priority uint8) (*SubgroupWriter, error) {
	return w.Create(Subgroup{GroupID: groupID, SubgroupID: subgroupID, Priority: priority})
}

// Create inserts sg into the subgroup sequence, rejecting a group id
// that regresses behind the latest one (returned as-is, never
// delivered) or repeats it exactly (ErrDuplicate).
func (w *SubgroupsWriter) Create(sg Subgroup) (*SubgroupWriter, error) {
	info := SubgroupInfo{Track: w.Track, GroupID: sg.GroupID, SubgroupID: sg.SubgroupID, Priority: sg.Priority}
	writer, reader := info.Produce()

	v, _ := w.state.Lock()
	if v.latest != nil {
		switch {
		case sg.GroupID < v.latest.Info.GroupID:
			return writer, nil
		case sg.GroupID == v.latest.Info.GroupID:
			return nil, ErrDuplicate
		}
	}

	ok := w.state.LockMut(func(s *subgroupsState) {
		s.latest = reader
		s.epoch++
	})
	if !ok {
		return nil, ErrCancel
	}
	return writer, nil
}

// Close closes the subgroup sequence with err.
func (w *SubgroupsWriter) Close(err *Error) error {
	v, _ := w.state.Lock()
	if v.closed != nil {
		return v.closed
	}
	if !w.state.LockMut(func(s *subgroupsState) { s.closed = err }) {
		return ErrCancel
	}
	w.state.Close()
	return nil
}

// SubgroupsReader observes newly-appended subgroups in order.
type SubgroupsReader struct {
	Track Track
	state *watch.State[subgroupsState]
	epoch uint64
}

// Clone returns an independent reader over the same subgroup
// sequence, starting from the current position.
func (r *SubgroupsReader) Clone() *SubgroupsReader {
	r.state.AddReader()
	v, _ := r.state.Lock()
	return &SubgroupsReader{Track: r.Track, state: r.state, epoch: v.epoch}
}

// Release gives up this reader's claim on the sequence.
func (r *SubgroupsReader) Release() {
	r.state.ReleaseReader()
}

// Next blocks until a new subgroup is appended, returning nil once
// the sequence closes cleanly.
func (r *SubgroupsReader) Next(ctx context.Context) (*SubgroupReader, error) {
	for {
		v, modified := r.state.Lock()
		if r.epoch != v.epoch {
			r.epoch = v.epoch
			return v.latest, nil
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

// Latest returns the largest location observed across all subgroups.
func (r *SubgroupsReader) Latest() (coding.Location, bool) {
	v, _ := r.state.Lock()
	if v.latest == nil {
		return coding.Location{}, false
	}
	return coding.Location{Group: v.latest.Info.GroupID, Object: v.latest.Latest()}, true
}

// Subgroup identifies one subgroup to append within a track.
type Subgroup struct {
	GroupID    uint64
	SubgroupID uint64
	Priority   uint8
}

// SubgroupInfo is the immutable identity of a produced subgroup.
type SubgroupInfo struct {
	Track      Track
	GroupID    uint64
	SubgroupID uint64
	Priority   uint8
}

type subgroupState struct {
	objects []*SubgroupObjectReader
	closed  *Error
}

// Produce splits info into a Writer/Reader pair.
func (info SubgroupInfo) Produce() (*SubgroupWriter, *SubgroupReader) {
	state := watch.NewState(subgroupState{})
	return &SubgroupWriter{Info: info, state: state}, &SubgroupReader{Info: info, state: state}
}

// SubgroupWriter appends objects, in order, to one subgroup.
type SubgroupWriter struct {
	Info  SubgroupInfo
	state *watch.State[subgroupState]
	next  uint64
}

// Write appends a complete object with the given payload.
func (w *SubgroupWriter) Write(payload []byte) error {
	object, err := w.Create(len(payload), data.ObjectStatusNormal)
	if err != nil {
		return err
	}
	return object.Close(payload)
}

// Create appends an object of declared size and status, returning a
// writer the caller fills incrementally via chunk writes.
func (w *SubgroupWriter) Create(size int, status data.ObjectStatus) (*SubgroupObjectWriter, error) {
	info := SubgroupObject{Group: w.Info, ObjectID: w.next, Size: size, Status: status}
	writer, reader := info.Produce()
	w.next++

	ok := w.state.LockMut(func(s *subgroupState) { s.objects = append(s.objects, reader) })
	if !ok {
		return nil, ErrCancel
	}
	return writer, nil
}

// Close closes the subgroup with err.
func (w *SubgroupWriter) Close(err *Error) error {
	v, _ := w.state.Lock()
	if v.closed != nil {
		return v.closed
	}
	if !w.state.LockMut(func(s *subgroupState) { s.closed = err }) {
		return ErrCancel
	}
	w.state.Close()
	return nil
}

// Len reports how many objects have been created so far.
func (w *SubgroupWriter) Len() int {
	v, _ := w.state.Lock()
	return len(v.objects)
}

// SubgroupReader reads objects from one subgroup in order. Cloned
// readers each maintain their own cursor.
type SubgroupReader struct {
	Info  SubgroupInfo
	state *watch.State[subgroupState]
	index int
}

// Clone returns an independent reader over the same subgroup.
func (r *SubgroupReader) Clone() *SubgroupReader {
	r.state.AddReader()
	return &SubgroupReader{Info: r.Info, state: r.state, index: r.index}
}

// Release gives up this reader's claim on the subgroup.
func (r *SubgroupReader) Release() {
	r.state.ReleaseReader()
}

// Latest returns the highest object id observed so far.
func (r *SubgroupReader) Latest() uint64 {
	v, _ := r.state.Lock()
	if len(v.objects) == 0 {
		return 0
	}
	return v.objects[len(v.objects)-1].Info.ObjectID
}

// Next blocks until the next object is available, returning nil once
// the subgroup closes cleanly.
func (r *SubgroupReader) Next(ctx context.Context) (*SubgroupObjectReader, error) {
	for {
		v, modified := r.state.Lock()
		if r.index < len(v.objects) {
			object := v.objects[r.index]
			r.index++
			return object, nil
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

// ReadNext blocks for the next object and reads it to completion.
func (r *SubgroupReader) ReadNext(ctx context.Context) ([]byte, error) {
	object, err := r.Next(ctx)
	if err != nil || object == nil {
		return nil, err
	}
	return object.ReadAll(ctx)
}

// Len reports how many objects have arrived so far.
func (r *SubgroupReader) Len() int {
	v, _ := r.state.Lock()
	return len(v.objects)
}

// SubgroupObject is the identity of one object within a subgroup: its
// sequence number, declared size, and status.
type SubgroupObject struct {
	Group    SubgroupInfo
	ObjectID uint64
	Size     int
	Status   data.ObjectStatus
}

type subgroupObjectState struct {
	chunks [][]byte
	closed *Error
}

// Produce splits o into a Writer/Reader pair.
func (o SubgroupObject) Produce() (*SubgroupObjectWriter, *SubgroupObjectReader) {
	state := watch.NewState(subgroupObjectState{})
	return &SubgroupObjectWriter{Info: o, state: state, remain: o.Size},
		&SubgroupObjectReader{Info: o, state: state}
}

// SubgroupObjectWriter writes an object's payload over one or more
// chunks, enforcing that the total matches Info.Size.
type SubgroupObjectWriter struct {
	Info   SubgroupObject
	state  *watch.State[subgroupObjectState]
	remain int
}

// Write appends one chunk, rejecting writes that would exceed the
// object's declared size.
func (w *SubgroupObjectWriter) Write(chunk []byte) error {
	if len(chunk) > w.remain {
		return ErrSize
	}
	w.remain -= len(chunk)

	if !w.state.LockMut(func(s *subgroupObjectState) { s.chunks = append(s.chunks, chunk) }) {
		return ErrCancel
	}
	return nil
}

// Close writes a final chunk (if non-empty) and closes the object. It
// fails with ErrSize if the declared size was not met.
func (w *SubgroupObjectWriter) Close(chunk []byte) error {
	if len(chunk) > 0 {
		if err := w.Write(chunk); err != nil {
			return err
		}
	}
	if w.remain != 0 {
		w.closeWith(ErrSize)
		return ErrSize
	}
	w.closeWith(nil)
	return nil
}

// Abandon closes the object with ErrSize regardless of how much of
// its declared size was written, for callers that drop a writer
// early.
func (w *SubgroupObjectWriter) Abandon() {
	if w.remain == 0 {
		return
	}
	w.closeWith(ErrSize)
}

func (w *SubgroupObjectWriter) closeWith(err *Error) {
	w.state.LockMut(func(s *subgroupObjectState) { s.closed = err })
	w.state.Close()
}

// SubgroupObjectReader reads an object's payload chunk by chunk.
type SubgroupObjectReader struct {
	Info  SubgroupObject
	state *watch.State[subgroupObjectState]
	index int
}

// Clone returns an independent reader over the same object.
func (r *SubgroupObjectReader) Clone() *SubgroupObjectReader {
	r.state.AddReader()
	return &SubgroupObjectReader{Info: r.Info, state: r.state, index: r.index}
}

// Release gives up this reader's claim on the object.
func (r *SubgroupObjectReader) Release() {
	r.state.ReleaseReader()
}

// Read blocks for the next chunk, returning nil once no more chunks
// will arrive (object closed cleanly).
func (r *SubgroupObjectReader) Read(ctx context.Context) ([]byte, error) {
	for {
		v, modified := r.state.Lock()
		if r.index < len(v.chunks) {
			chunk := v.chunks[r.index]
			r.index++
			return chunk, nil
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

// ReadAll reads and concatenates every chunk of the object's payload.
func (r *SubgroupObjectReader) ReadAll(ctx context.Context) ([]byte, error) {
	var out []byte
	for {
		chunk, err := r.Read(ctx)
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			return out, nil
		}
		out = append(out, chunk...)
	}
}
