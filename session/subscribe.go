package session

import (
	"sync"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/message"
	"github.com/quic-moq/moqt/serve"
)

// SubscribeConfig selects the range and delivery preferences of an
// outbound Subscribe request.
type SubscribeConfig struct {
	Priority   byte
	GroupOrder message.GroupOrder
	Forward    bool
	Filter     message.FilterType
	Start      coding.Location
	EndGroup   uint64
	Params     coding.KeyValuePairs
}

// subscribeEntry is the subscriber's record of one outbound Subscribe
// request: the track_alias it assigned and a channel the receive loop
// uses to deliver SubscribeOk/SubscribeError/SubscribeDone back to
// whichever goroutine is blocked in Subscriber.Subscribe.
type subscribeEntry struct {
	id       uint64
	writer   *serve.TrackWriter
	accepted chan subscribeResult
	done     chan message.SubscribeDone

	modeOnce  sync.Mutex
	subgroups *serve.SubgroupsWriter
	datagrams *serve.DatagramsWriter
}

type subscribeResult struct {
	ok  *message.SubscribeOk
	err *Error
}

func newSubscribeEntry(id uint64, writer *serve.TrackWriter) *subscribeEntry {
	return &subscribeEntry{
		id:       id,
		writer:   writer,
		accepted: make(chan subscribeResult, 1),
		done:     make(chan message.SubscribeDone, 1),
	}
}

// getSubgroupsWriter lazily commits the track to subgroup mode on the
// first incoming stream, then reuses the same writer for every later
// one (TrackWriter's mode is immutable once set).
func (e *subscribeEntry) getSubgroupsWriter() *serve.SubgroupsWriter {
	e.modeOnce.Lock()
	defer e.modeOnce.Unlock()
	if e.subgroups == nil {
		w, err := e.writer.Subgroups()
		if err != nil {
			return nil
		}
		e.subgroups = w
	}
	return e.subgroups
}

// getDatagramsWriter lazily commits the track to datagram mode on the
// first incoming datagram, then reuses the same writer.
func (e *subscribeEntry) getDatagramsWriter() *serve.DatagramsWriter {
	e.modeOnce.Lock()
	defer e.modeOnce.Unlock()
	if e.datagrams == nil {
		w, err := e.writer.Datagrams()
		if err != nil {
			return nil
		}
		e.datagrams = w
	}
	return e.datagrams
}
