package meter

import (
	"github.com/chargelab/meter.go/pkg/proto"
	"github.com/chargelab/meter.go/pkg/rt/ring"
	"github.com/chargelab/meter.go/pkg/rt/timer"
)

// WindowLength selects the acquisition window, expressed as the event
// count the window counter runs for. The values correspond to power line
// cycles at a 50 Hz grid, 250 counts per cycle.
type WindowLength uint16

const (
	PLC0_02 WindowLength = 5
	PLC0_1  WindowLength = 25
	PLC0_2  WindowLength = 50
	PLC0_5  WindowLength = 125
	PLC1    WindowLength = 250
	PLC2    WindowLength = 500
	PLC5    WindowLength = 1250
	PLC10   WindowLength = 2500
	PLC20   WindowLength = 5000
	PLC50   WindowLength = 12500
	PLC100  WindowLength = 25000
	PLC200  WindowLength = 50000
)

// ParseWindowPLC maps a SENSE:WINDOW:PLC argument to a window length.
// The token is the PLC figure itself and must match exactly.
func ParseWindowPLC(tok []byte) (WindowLength, bool) {
	switch string(tok) {
	case "0.02":
		return PLC0_02, true
	case "0.1":
		return PLC0_1, true
	case "0.2":
		return PLC0_2, true
	case "0.5":
		return PLC0_5, true
	case "1":
		return PLC1, true
	case "2":
		return PLC2, true
	case "5":
		return PLC5, true
	case "10":
		return PLC10, true
	case "20":
		return PLC20, true
	case "50":
		return PLC50, true
	case "100":
		return PLC100, true
	case "200":
		return PLC200, true
	}
	return 0, false
}

// Token returns the PLC figure reported back by the window query.
func (w WindowLength) Token() string {
	switch w {
	case PLC0_02:
		return "0.02"
	case PLC0_1:
		return "0.1"
	case PLC0_2:
		return "0.2"
	case PLC0_5:
		return "0.5"
	case PLC2:
		return "2"
	case PLC5:
		return "5"
	case PLC10:
		return "10"
	case PLC20:
		return "20"
	case PLC50:
		return "50"
	case PLC100:
		return "100"
	case PLC200:
		return "200"
	default:
		return "1"
	}
}

// DurationMillis returns the window length in milliseconds at a 50 Hz
// grid: one PLC is 250 counts and 20 ms. Sub-millisecond windows are
// clamped to 1 ms, the resolution of the millisecond time base.
func (w WindowLength) DurationMillis() uint32 {
	ms := uint32(w) * 2 / 25
	if ms == 0 {
		ms = 1
	}
	return ms
}

// Cycles returns the total number of injection cycles j the window
// spans. Stays within the j <= 750000 bound PackQ032 assumes even at
// PLC 200.
func (w WindowLength) Cycles() uint32 {
	return uint32(w) * 15
}

// InputSource selects what the front-end multiplexer routes into the
// integrator: the external input, one of the internal references, or
// ground.
type InputSource uint8

const (
	InputVIN InputSource = iota
	InputRefP10
	InputRefP5
	InputRefP2_5
	InputGND
	InputRefM2_5
	InputRefM5
	InputRefM10
)

// ParseInputSource maps a ROUTE:INPUT argument to a source. Several
// spellings are accepted per token; matching is case-insensitive.
func ParseInputSource(tok []byte) (InputSource, bool) {
	eq := proto.CommandEquals
	switch {
	case eq(tok, "VIN"), eq(tok, "EXT"), eq(tok, "EXTERNAL"):
		return InputVIN, true
	case eq(tok, "REF+10"), eq(tok, "REFP10"), eq(tok, "REF10"):
		return InputRefP10, true
	case eq(tok, "REF+5"), eq(tok, "REFP5"), eq(tok, "REF5"):
		return InputRefP5, true
	case eq(tok, "REF+2.5"), eq(tok, "REFP2.5"), eq(tok, "REFP2_5"),
		eq(tok, "REF2.5"), eq(tok, "REF2_5"):
		return InputRefP2_5, true
	case eq(tok, "GND"), eq(tok, "REF0"):
		return InputGND, true
	case eq(tok, "REF-2.5"), eq(tok, "REFM2.5"), eq(tok, "REFM2_5"):
		return InputRefM2_5, true
	case eq(tok, "REF-5"), eq(tok, "REFM5"):
		return InputRefM5, true
	case eq(tok, "REF-10"), eq(tok, "REFM10"):
		return InputRefM10, true
	}
	return 0, false
}

// Token returns the canonical spelling reported back by the input query.
func (s InputSource) Token() string {
	switch s {
	case InputRefP10:
		return "REF+10"
	case InputRefP5:
		return "REF+5"
	case InputRefP2_5:
		return "REF+2.5"
	case InputGND:
		return "GND"
	case InputRefM2_5:
		return "REF-2.5"
	case InputRefM5:
		return "REF-5"
	case InputRefM10:
		return "REF-10"
	default:
		return "VIN"
	}
}

// nominalMillivolts is what the simulated front end sees on each source.
// The input range is -12 V .. +12 V; VIN carries an arbitrary plausible
// DUT voltage.
func (s InputSource) nominalMillivolts() int32 {
	switch s {
	case InputRefP10:
		return 10000
	case InputRefP5:
		return 5000
	case InputRefP2_5:
		return 2500
	case InputGND:
		return 0
	case InputRefM2_5:
		return -2500
	case InputRefM5:
		return -5000
	case InputRefM10:
		return -10000
	default:
		return 1375
	}
}

// Measurement is one completed acquisition window.
type Measurement struct {
	// Timestamp is the millisecond time of capture.
	Timestamp uint32
	// Value is the raw count of charge injection cycles in the window.
	Value int32
	// Ratio is the Q0.32 fraction of full scale, per PackQ032.
	Ratio uint32
}

// Acquisition limits shared with the SCPI surface.
const (
	// BufferLimit is the deepest the measurement buffer is allowed to
	// get; the oldest points are discarded past it.
	BufferLimit = 1022
	// MaxReadCount bounds one FETCH request.
	MaxReadCount = 1022
)

// fractionDenominator is the calibrated d constant of the residual
// charge ADC path.
const fractionDenominator uint16 = 3000

// measBufferSize must be a power of two with usable capacity at least
// BufferLimit.
const measBufferSize = 2048

// Engine owns the acquisition state machine: the armed flag, the sample
// budget, the measurement buffer and the periodic window timer that
// paces captures. Without the analog front end attached it synthesizes
// each window's (i, k, j, d) tuple deterministically from the selected
// input source, so the whole command surface behaves as it would on
// hardware.
//
// All methods must be called from the cooperative main loop context.
type Engine struct {
	src    timer.TimeSource
	window *timer.Timer

	buffer  *ring.Ring[Measurement]
	last    Measurement
	hasLast bool
	dropped uint32

	windowLen WindowLength
	input     InputSource

	// 0 means free-running acquisition.
	samplesPerTrigger uint32
	samplesRemaining  uint32
	armed             bool

	rng uint32
}

// NewEngine creates an idle engine with a 1 PLC window on the external
// input, registering its window timer with the given service.
func NewEngine(src timer.TimeSource, timers *timer.Service) *Engine {
	e := &Engine{
		src:       src,
		buffer:    ring.New[Measurement](measBufferSize),
		windowLen: PLC1,
		input:     InputVIN,
		rng:       0x2545F491,
	}
	e.window = timers.NewTimer(timer.Millis, e.windowLen.DurationMillis(), true, e.onWindow)
	return e
}

// SetWindow changes the acquisition window. A running acquisition picks
// the new pace up at its next window boundary.
func (e *Engine) SetWindow(w WindowLength) {
	e.windowLen = w
	e.window.SetPeriod(w.DurationMillis())
}

// Window returns the configured window length.
func (e *Engine) Window() WindowLength {
	return e.windowLen
}

// SetInput routes a source into the integrator.
func (e *Engine) SetInput(s InputSource) {
	e.input = s
}

// Input returns the routed source.
func (e *Engine) Input() InputSource {
	return e.input
}

// SetSampleCount sets how many windows one trigger acquires; 0 means
// free-running until reset.
func (e *Engine) SetSampleCount(n uint32) {
	e.samplesPerTrigger = n
}

// SampleCount returns the per-trigger sample budget, 0 for free-running.
func (e *Engine) SampleCount() uint32 {
	return e.samplesPerTrigger
}

// Trigger arms acquisition: the counters restart and the first window
// opens now.
func (e *Engine) Trigger() {
	e.samplesRemaining = e.samplesPerTrigger
	e.armed = true
	e.window.Start()
}

// Armed reports whether an acquisition is in progress.
func (e *Engine) Armed() bool {
	return e.armed
}

// Available returns the number of buffered measurements.
func (e *Engine) Available() uint32 {
	return uint32(e.buffer.Len())
}

// Dropped returns how many measurements were discarded to keep the
// buffer within BufferLimit.
func (e *Engine) Dropped() uint32 {
	return e.dropped
}

// Last returns the most recent measurement, whether still buffered or
// already fetched.
func (e *Engine) Last() (Measurement, bool) {
	return e.last, e.hasLast
}

// Next pops the oldest buffered measurement and makes it the last one.
func (e *Engine) Next() (Measurement, bool) {
	m, ok := e.buffer.Get()
	if ok {
		e.last = m
		e.hasLast = true
	}
	return m, ok
}

// Reset disarms the engine, drops all buffered data and clears the
// drop counter. The configuration survives.
func (e *Engine) Reset() {
	e.disarm()
	e.buffer.Clear()
	e.hasLast = false
	e.dropped = 0
}

func (e *Engine) disarm() {
	e.armed = false
	e.window.Stop()
}

func (e *Engine) onWindow() {
	if !e.armed {
		return
	}

	j := e.windowLen.Cycles()
	d := fractionDenominator
	target := e.sampleRatio()

	// Split the target fraction into the front end's native form:
	// whole injection cycles plus a residual in units of 1/d.
	totalD := (uint64(target) * uint64(j) * uint64(d)) >> 32
	i := uint32(totalD / uint64(d))
	k := uint16(totalD % uint64(d))

	e.capture(Measurement{
		Timestamp: e.src.Millis(),
		Value:     int32(i),
		Ratio:     PackQ032(i, k, j, d),
	})
}

// sampleRatio returns the Q0.32 fraction for the routed source with a
// small pseudo-random dither, so consecutive readings scatter around the
// nominal the way a real integrator does.
func (e *Engine) sampleRatio() uint32 {
	mv := e.input.nominalMillivolts()
	nominal := uint32((uint64(mv+12000) << 32) / 24000)
	e.rng = e.rng*1664525 + 1013904223
	dither := int32(e.rng>>20&0xFFF) - 2048
	return nominal + uint32(dither)
}

func (e *Engine) capture(m Measurement) {
	for e.buffer.Len() >= BufferLimit {
		if _, ok := e.buffer.Get(); !ok {
			break
		}
		e.dropped++
	}
	e.buffer.Put(m)
	e.last = m
	e.hasLast = true

	if e.samplesPerTrigger > 0 {
		if e.samplesRemaining > 0 {
			e.samplesRemaining--
		}
		if e.samplesRemaining == 0 {
			e.disarm()
		}
	}
}
