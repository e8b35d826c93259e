package session

import (
	"io"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/message"
)

// controlReader decodes MoQT control messages from the session's
// bidirectional control stream, retrying incrementally as more bytes
// arrive so a message split across several QUIC reads still decodes.
type controlReader struct {
	stream io.Reader
	buf    []byte
}

func newControlReader(stream io.Reader) *controlReader {
	return &controlReader{stream: stream}
}

// ReadMessage blocks until one complete control message has arrived
// and decodes it.
func (r *controlReader) ReadMessage() (message.Message, error) {
	for {
		cur := coding.NewReader(r.buf)
		msg, err := message.Decode(cur)
		if err == nil {
			r.buf = r.buf[cur.Pos():]
			return msg, nil
		}
		if !coding.IsMore(err) {
			return message.Message{}, FromDecodeError(err.(*coding.DecodeError))
		}
		if err := r.fill(); err != nil {
			return message.Message{}, err
		}
	}
}

// fill reads at least one more chunk from the stream into the
// buffer. It always performs at least one read, so a caller that
// passes a decode error reporting zero bytes still needed can't spin.
func (r *controlReader) fill() error {
	chunk := make([]byte, 4096)
	n, err := r.stream.Read(chunk)
	if n > 0 {
		r.buf = append(r.buf, chunk[:n]...)
	}
	if err != nil {
		if err == io.EOF {
			return Wrap(CodeInternal, "read", io.ErrUnexpectedEOF)
		}
		return Wrap(CodeInternal, "read", err)
	}
	return nil
}
