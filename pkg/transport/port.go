// Package transport provides concrete byte transports for the protocol
// engine: a driver-fed port backed by ring buffers, an in-memory pipe
// pair, and a pump binding a port to an io.ReadWriter link.
package transport

import (
	"sync/atomic"

	"github.com/chargelab/meter.go/pkg/rt/ring"
)

// Policy selects how a full receive buffer admits new bytes.
type Policy int

const (
	// Bounded rejects the newest byte and counts an overflow.
	Bounded Policy = iota
	// Overwrite discards the oldest byte to make room.
	Overwrite
)

// Port is the boundary between a transport driver and the cooperative
// loop. The driver context calls OnByteReceived and NextTxByte; the loop
// side uses the ByteStream methods. Each side stays on its own end of the
// two rings, which is exactly the single-producer/single-consumer
// discipline the rings require.
type Port struct {
	rx          *ring.Ring[byte]
	tx          *ring.Ring[byte]
	policy      Policy
	rxOverflows uint32
}

// NewPort creates a port with the given ring sizes (powers of two) and
// receive admission policy.
func NewPort(rxSize, txSize int, policy Policy) *Port {
	return &Port{
		rx:     ring.New[byte](rxSize),
		tx:     ring.New[byte](txSize),
		policy: policy,
	}
}

// OnByteReceived is the byte-received interrupt entry point, called by
// the driver for each incoming byte.
func (p *Port) OnByteReceived(b byte) {
	if p.policy == Overwrite {
		p.rx.Put(b)
		return
	}
	if !p.rx.TryPut(b) {
		atomic.AddUint32(&p.rxOverflows, 1)
	}
}

// NextTxByte hands the driver the next byte to transmit.
func (p *Port) NextTxByte() (byte, bool) {
	return p.tx.Get()
}

// TxPending returns the number of bytes waiting to be transmitted.
func (p *Port) TxPending() int {
	return p.tx.Len()
}

// RxOverflows returns the number of received bytes dropped under the
// Bounded policy.
func (p *Port) RxOverflows() uint32 {
	return atomic.LoadUint32(&p.rxOverflows)
}

// ReadByte implements proto.ByteStream.
func (p *Port) ReadByte() (byte, bool) {
	return p.rx.Get()
}

// WriteByte implements proto.ByteStream. It reports false when the
// transmit ring is full; nothing ever blocks here.
func (p *Port) WriteByte(b byte) bool {
	return p.tx.TryPut(b)
}

// Write implements proto.ByteStream.
func (p *Port) Write(buf []byte) int {
	n := 0
	for _, b := range buf {
		if !p.tx.TryPut(b) {
			break
		}
		n++
	}
	return n
}
