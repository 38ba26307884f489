// Package clock provides the tick-interrupt driven time base shared by the
// whole instrument: a raw tick counter, a drift-compensated approximate
// millisecond counter and an exact second counter.
package clock

import (
	"fmt"
	"sync"
)

// MinTicksPerSecond and MaxTicksPerSecond bound the configurable tick
// interrupt rate. The bounds come from the periods the RTC prescaler of
// the reference hardware can produce from a 32.768 kHz source.
const (
	MinTicksPerSecond = 16
	MaxTicksPerSecond = 1024
)

// Timestamp is a consistent point-in-time snapshot: whole seconds plus the
// sub-second offset in ticks. Unlike Millis it carries no compensation
// jitter, which makes it the preferred representation for logging data.
type Timestamp struct {
	Seconds uint32
	Ticks   uint16
}

// Ticker is the instrument time base. Tick is invoked from the periodic
// interrupt context; all other methods are guarded reads and may be called
// from anywhere. Counters are 32-bit and wrap.
type Ticker struct {
	ticksPerSecond uint16
	millisPerTick  uint32
	mask           uint32

	ticks  uint32
	secs   uint32
	millis uint32
	lock   sync.Mutex
}

// New creates a Ticker. ticksPerSecond must be a power of two in
// [MinTicksPerSecond, MaxTicksPerSecond].
func New(ticksPerSecond uint16) (*Ticker, error) {
	if ticksPerSecond < MinTicksPerSecond || ticksPerSecond > MaxTicksPerSecond ||
		ticksPerSecond&(ticksPerSecond-1) != 0 {
		return nil, fmt.Errorf("clock: invalid tick rate %d (power of two in [%d,%d])",
			ticksPerSecond, MinTicksPerSecond, MaxTicksPerSecond)
	}
	return &Ticker{
		ticksPerSecond: ticksPerSecond,
		millisPerTick:  MaxTicksPerSecond / uint32(ticksPerSecond),
		mask:           uint32(ticksPerSecond) - 1,
	}, nil
}

// MustNew is New panicking on an invalid rate, for wiring-time use.
func MustNew(ticksPerSecond uint16) *Ticker {
	t, err := New(ticksPerSecond)
	if err != nil {
		panic(err)
	}
	return t
}

// TicksPerSecond returns the configured tick interrupt rate.
func (t *Ticker) TicksPerSecond() uint16 {
	return t.ticksPerSecond
}

// Tick advances the time base by one tick. It must be invoked at exactly
// the configured rate, and only by the single tick-interrupt context.
//
// The millisecond counter is an approximation: a 32.768 kHz derived tick
// is not an exact decimal millisecond, so the increment is skipped at
// three fixed positions within each 128-tick window (0x00, 0x2A, 0x55).
// Over a 1024-tick second that drops 24 of 1024 increments, accumulating
// exactly 1000 ms per second at the cost of about one tick of jitter.
// The skip positions were derived for the 1024 Hz rate and are not
// re-derived for other rates; Secs is the jitter-free reference either way.
func (t *Ticker) Tick() {
	t.lock.Lock()
	t.ticks++
	if t.ticks&t.mask == 0 {
		t.secs++
	} else {
		switch t.ticks & 0x7F {
		case 0x00, 0x2A, 0x55:
		default:
			t.millis += t.millisPerTick
		}
	}
	t.lock.Unlock()
}

// Ticks returns the raw tick counter.
func (t *Ticker) Ticks() uint32 {
	t.lock.Lock()
	v := t.ticks
	t.lock.Unlock()
	return v
}

// Millis returns the approximate millisecond counter.
func (t *Ticker) Millis() uint32 {
	t.lock.Lock()
	v := t.millis
	t.lock.Unlock()
	return v
}

// Secs returns the second counter.
func (t *Ticker) Secs() uint32 {
	t.lock.Lock()
	v := t.secs
	t.lock.Unlock()
	return v
}

// Now returns a consistent seconds+ticks snapshot: both fields are read
// under one guard so a tick cannot land between them.
func (t *Ticker) Now() Timestamp {
	t.lock.Lock()
	ts := Timestamp{
		Seconds: t.secs,
		Ticks:   uint16(t.ticks & t.mask),
	}
	t.lock.Unlock()
	return ts
}
