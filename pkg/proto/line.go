package proto

import "fmt"

// MinLineLength is the smallest accepted line buffer size.
const MinLineLength = 4

// LineReceiver assembles LF-terminated lines from a ByteStream into a
// fixed buffer. Carriage returns are ignored. When an incoming line
// exceeds the buffer, the partial line is discarded, the overflow counter
// is bumped, and everything up to and including the next LF is dropped.
// Only one complete line is held at a time; Poll will not read past a
// pending line until Consume releases it.
type LineReceiver struct {
	stream       ByteStream
	buf          []byte
	n            int
	hasLine      bool
	dropUntilEOL bool
	overflows    uint32
}

// NewLineReceiver creates a receiver with the given maximum line length.
// maxLen below MinLineLength is a configuration mistake and panics.
func NewLineReceiver(stream ByteStream, maxLen int) *LineReceiver {
	if maxLen < MinLineLength {
		panic(fmt.Sprintf("proto: line buffer %d below minimum %d", maxLen, MinLineLength))
	}
	return &LineReceiver{
		stream: stream,
		buf:    make([]byte, maxLen),
	}
}

// Poll pulls pending bytes from the stream and reports whether a complete
// line is available.
func (r *LineReceiver) Poll() bool {
	if r.hasLine {
		return true
	}
	for {
		b, ok := r.stream.ReadByte()
		if !ok {
			return false
		}
		if r.dropUntilEOL {
			if b == '\n' {
				r.dropUntilEOL = false
				r.n = 0
			}
			continue
		}
		switch b {
		case '\r':
		case '\n':
			r.hasLine = true
			return true
		default:
			if r.n == len(r.buf) {
				r.overflows++
				r.n = 0
				r.dropUntilEOL = true
				continue
			}
			r.buf[r.n] = b
			r.n++
		}
	}
}

// HasLine reports whether a complete line is pending.
func (r *LineReceiver) HasLine() bool {
	return r.hasLine
}

// Line returns the pending line, or nil if none. The slice aliases the
// receiver's buffer and is valid only until Consume.
func (r *LineReceiver) Line() []byte {
	if !r.hasLine {
		return nil
	}
	return r.buf[:r.n]
}

// Consume releases the pending line so the next Poll can accept a new one.
func (r *LineReceiver) Consume() {
	r.hasLine = false
	r.n = 0
}

// Overflows returns the number of discarded over-length lines.
func (r *LineReceiver) Overflows() uint32 {
	return r.overflows
}

// ClearCounters resets the overflow counter.
func (r *LineReceiver) ClearCounters() {
	r.overflows = 0
}
