package transport

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"
)

// DefaultFlushInterval is how often buffered transmit bytes are pushed to
// the link when no explicit interval is configured.
const DefaultFlushInterval = 2 * time.Millisecond

// Stream pumps bytes between an io.ReadWriter link (TCP connection,
// websocket, serial device) and a Port. The read goroutine plays the role
// of the byte-received interrupt; the flush ticker drains the transmit
// ring onto the link.
type Stream struct {
	Conn          io.ReadWriter
	Port          *Port
	FlushInterval time.Duration
}

// NewStream binds a link to a port.
func NewStream(conn io.ReadWriter, port *Port) *Stream {
	return &Stream{Conn: conn, Port: port, FlushInterval: DefaultFlushInterval}
}

// Run implements framework.Runnable. It returns when the context is done
// or the link fails.
func (s *Stream) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go s.readLoop(errCh)

	interval := s.FlushInterval
	if interval == 0 {
		interval = DefaultFlushInterval
	}
	flush := time.NewTicker(interval)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			s.flushTx()
			return ctx.Err()
		case err := <-errCh:
			glog.V(4).Infof("stream read loop ended: %v", err)
			return err
		case <-flush.C:
			if err := s.flushTx(); err != nil {
				return err
			}
		}
	}
}

func (s *Stream) readLoop(errCh chan<- error) {
	buf := make([]byte, 64)
	for {
		n, err := s.Conn.Read(buf)
		for _, b := range buf[:n] {
			s.Port.OnByteReceived(b)
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func (s *Stream) flushTx() error {
	var out [256]byte
	for {
		n := 0
		for n < len(out) {
			b, ok := s.Port.NextTxByte()
			if !ok {
				break
			}
			out[n] = b
			n++
		}
		if n == 0 {
			return nil
		}
		if _, err := s.Conn.Write(out[:n]); err != nil {
			return err
		}
		if n < len(out) {
			return nil
		}
	}
}
