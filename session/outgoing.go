package session

import (
	"context"

	"github.com/quic-moq/moqt/message"
	"github.com/quic-moq/moqt/watch"
)

// outgoingQueue is the single queue of control messages a session's
// send loop drains onto the control stream. Both Publisher and
// Subscriber share one per session so replies interleave with
// requests in send order.
type outgoingQueue struct {
	queue *watch.Queue[message.Message]
}

func newOutgoingQueue() *outgoingQueue {
	return &outgoingQueue{queue: watch.NewQueue[message.Message]()}
}

// send enqueues msg without waiting for the send loop to pick it up.
func (q *outgoingQueue) send(msg message.Message) error {
	return q.queue.Push(msg)
}

// sendAndWait enqueues msg and blocks until the send loop has taken
// it off the queue, so a caller can guarantee ordering against
// whatever it does next (e.g. opening a data stream only after
// SubscribeOk has left the queue).
func (q *outgoingQueue) sendAndWait(ctx context.Context, msg message.Message) error {
	return q.queue.PushAndWaitUntilPopped(ctx, msg)
}
