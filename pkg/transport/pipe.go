package transport

import "github.com/chargelab/meter.go/pkg/rt/ring"

// PipeEnd is one side of an in-memory byte pipe. Writes on one end become
// reads on the other. Useful for tests and for in-process endpoints such
// as a diagnostics console.
type PipeEnd struct {
	rx   *ring.Ring[byte]
	peer *PipeEnd
}

// Pipe creates a connected pair of ends, each buffering up to size-1
// bytes (size must be a power of two).
func Pipe(size int) (*PipeEnd, *PipeEnd) {
	a := &PipeEnd{rx: ring.New[byte](size)}
	b := &PipeEnd{rx: ring.New[byte](size)}
	a.peer, b.peer = b, a
	return a, b
}

// ReadByte implements proto.ByteStream.
func (e *PipeEnd) ReadByte() (byte, bool) {
	return e.rx.Get()
}

// WriteByte implements proto.ByteStream.
func (e *PipeEnd) WriteByte(b byte) bool {
	return e.peer.rx.TryPut(b)
}

// Write implements proto.ByteStream.
func (e *PipeEnd) Write(buf []byte) int {
	n := 0
	for _, b := range buf {
		if !e.peer.rx.TryPut(b) {
			break
		}
		n++
	}
	return n
}

// WriteString pushes str into the peer's receive buffer and reports
// whether all of it fit.
func (e *PipeEnd) WriteString(str string) bool {
	return e.Write([]byte(str)) == len(str)
}

// Pending returns the number of bytes waiting to be read from this end.
func (e *PipeEnd) Pending() int {
	return e.rx.Len()
}
