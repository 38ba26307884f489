package mqtt

import (
	"io"
	"sync"
)

// LinkReadWriter exposes a sub/pub topic pair as an io.ReadWriter so a
// transport.Stream can pump it into a Port. Incoming message payloads
// become the read stream; written bytes are buffered and published one
// line at a time (the protocol is line oriented, so whole lines are the
// natural message unit on a broker).
type LinkReadWriter struct {
	queue    *Queue
	subTopic string
	pubTopic string

	recvCh  chan []byte
	pending []byte

	closeOnce sync.Once
	closed    chan struct{}

	lineBuf []byte
}

// NewLinkReadWriter subscribes to subTopic and publishes to pubTopic.
func NewLinkReadWriter(q *Queue, subTopic, pubTopic string) (*LinkReadWriter, error) {
	rw := &LinkReadWriter{
		queue:    q,
		subTopic: subTopic,
		pubTopic: pubTopic,
		recvCh:   make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
	if err := q.Sub(subTopic, rw.onMessage); err != nil {
		return nil, err
	}
	return rw, nil
}

// ForInstrument uses the broker topic convention for the instrument side:
// commands arrive on "cmd", replies leave on "rsp".
func ForInstrument(q *Queue) (*LinkReadWriter, error) {
	return NewLinkReadWriter(q, "cmd", "rsp")
}

// ForOperator is the mirror convention for a client driving the
// instrument through the broker.
func ForOperator(q *Queue) (*LinkReadWriter, error) {
	return NewLinkReadWriter(q, "rsp", "cmd")
}

func (rw *LinkReadWriter) onMessage(_ string, payload []byte) {
	msg := make([]byte, len(payload))
	copy(msg, payload)
	select {
	case rw.recvCh <- msg:
	case <-rw.closed:
	}
}

// Read implements io.Reader. It blocks until a message arrives, matching
// what transport.Stream expects from a link.
func (rw *LinkReadWriter) Read(p []byte) (int, error) {
	if len(rw.pending) == 0 {
		select {
		case msg := <-rw.recvCh:
			rw.pending = msg
		case <-rw.closed:
			return 0, io.EOF
		}
	}
	n := copy(p, rw.pending)
	rw.pending = rw.pending[n:]
	return n, nil
}

// Write implements io.Writer, publishing each completed line.
func (rw *LinkReadWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		rw.lineBuf = append(rw.lineBuf, b)
		if b == '\n' {
			if err := rw.queue.Pub(rw.pubTopic, rw.lineBuf); err != nil {
				return 0, err
			}
			rw.lineBuf = rw.lineBuf[:0]
		}
	}
	return len(p), nil
}

// Close unsubscribes and unblocks pending reads.
func (rw *LinkReadWriter) Close() error {
	rw.closeOnce.Do(func() {
		rw.queue.Unsub(rw.subTopic)
		close(rw.closed)
	})
	return nil
}
