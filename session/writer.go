package session

import (
	"io"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/message"
)

// controlWriter encodes MoQT control messages onto the session's
// bidirectional control stream, one Write call per message so message
// boundaries survive even without external synchronization.
type controlWriter struct {
	stream io.Writer
}

func newControlWriter(stream io.Writer) *controlWriter {
	return &controlWriter{stream: stream}
}

// WriteMessage encodes msg and writes it in a single call.
func (w *controlWriter) WriteMessage(msg message.Message) error {
	buf := coding.NewWriter()
	if err := message.Encode(buf, msg); err != nil {
		return FromEncodeError(err.(*coding.EncodeError))
	}
	if _, err := w.stream.Write(buf.Bytes()); err != nil {
		return Wrap(CodeInternal, "write", err)
	}
	return nil
}
