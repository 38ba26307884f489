package meter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindowTokensRoundTrip(t *testing.T) {
	windows := []WindowLength{
		PLC0_02, PLC0_1, PLC0_2, PLC0_5, PLC1, PLC2,
		PLC5, PLC10, PLC20, PLC50, PLC100, PLC200,
	}
	for _, w := range windows {
		got, ok := ParseWindowPLC([]byte(w.Token()))
		require.True(t, ok, "token %q", w.Token())
		require.Equal(t, w, got)
	}
	_, ok := ParseWindowPLC([]byte("3"))
	require.False(t, ok)
}

func TestWindowDurationAndCycles(t *testing.T) {
	require.Equal(t, uint32(1), PLC0_02.DurationMillis()) // clamped
	require.Equal(t, uint32(20), PLC1.DurationMillis())
	require.Equal(t, uint32(4000), PLC200.DurationMillis())

	// Largest window stays within the packing bound.
	require.Equal(t, uint32(750000), PLC200.Cycles())
}

func TestInputSourceTokens(t *testing.T) {
	for _, tc := range []struct {
		tok  string
		want InputSource
	}{
		{"VIN", InputVIN},
		{"vin", InputVIN},
		{"EXT", InputVIN},
		{"EXTERNAL", InputVIN},
		{"REF+10", InputRefP10},
		{"REFP10", InputRefP10},
		{"REF+2.5", InputRefP2_5},
		{"ref2_5", InputRefP2_5},
		{"GND", InputGND},
		{"REF0", InputGND},
		{"REF-5", InputRefM5},
		{"REFM10", InputRefM10},
	} {
		got, ok := ParseInputSource([]byte(tc.tok))
		require.True(t, ok, "token %q", tc.tok)
		require.Equal(t, tc.want, got, "token %q", tc.tok)
	}
	_, ok := ParseInputSource([]byte("REF+7"))
	require.False(t, ok)

	// Canonical spellings parse back to themselves.
	for _, s := range []InputSource{
		InputVIN, InputRefP10, InputRefP5, InputRefP2_5,
		InputGND, InputRefM2_5, InputRefM5, InputRefM10,
	} {
		got, ok := ParseInputSource([]byte(s.Token()))
		require.True(t, ok)
		require.Equal(t, s, got)
	}
}

func TestEngineDefaults(t *testing.T) {
	h := newHarness()
	e := h.meter.Engine
	require.Equal(t, PLC1, e.Window())
	require.Equal(t, InputVIN, e.Input())
	require.Zero(t, e.SampleCount())
	require.False(t, e.Armed())
	require.Zero(t, e.Available())
	_, ok := e.Last()
	require.False(t, ok)
}

func TestEngineCountedAcquisition(t *testing.T) {
	h := newHarness()
	e := h.meter.Engine
	e.SetWindow(PLC0_02)
	e.SetSampleCount(3)
	e.Trigger()
	require.True(t, e.Armed())

	h.runMillis(10)
	require.False(t, e.Armed(), "should disarm after the sample budget")
	require.Equal(t, uint32(3), e.Available())

	// No further captures while disarmed.
	h.runMillis(10)
	require.Equal(t, uint32(3), e.Available())
}

func TestEngineFreeRun(t *testing.T) {
	h := newHarness()
	e := h.meter.Engine
	e.SetWindow(PLC0_02)
	e.Trigger()

	h.runMillis(5)
	require.True(t, e.Armed())
	require.Equal(t, uint32(5), e.Available())
}

func TestEngineBufferClamp(t *testing.T) {
	h := newHarness()
	e := h.meter.Engine
	e.SetWindow(PLC0_02)
	e.Trigger()

	h.runMillis(BufferLimit + 78)
	require.Equal(t, uint32(BufferLimit), e.Available())
	require.Equal(t, uint32(78), e.Dropped())

	// Oldest points were the ones discarded.
	m, ok := e.Next()
	require.True(t, ok)
	require.Equal(t, uint32(79), m.Timestamp)
}

func TestEngineNextTracksLast(t *testing.T) {
	h := newHarness()
	e := h.meter.Engine
	e.SetWindow(PLC0_02)
	e.SetSampleCount(2)
	e.Trigger()
	h.runMillis(5)

	first, ok := e.Next()
	require.True(t, ok)
	second, ok := e.Next()
	require.True(t, ok)
	require.Less(t, first.Timestamp, second.Timestamp)

	last, ok := e.Last()
	require.True(t, ok)
	require.Equal(t, second, last)

	_, ok = e.Next()
	require.False(t, ok)
}

func TestEngineRatioTracksSource(t *testing.T) {
	h := newHarness()
	e := h.meter.Engine
	e.SetInput(InputGND)
	e.SetSampleCount(8)
	e.Trigger()
	h.runMillis(8 * int(PLC1.DurationMillis()))
	require.Equal(t, uint32(8), e.Available())

	// GND sits mid-scale; readings scatter by the dither plus the
	// window quantization, well under 2^-18 of full scale.
	const mid = 0x80000000
	for {
		m, ok := e.Next()
		if !ok {
			break
		}
		delta := int64(m.Ratio) - int64(mid)
		if delta < 0 {
			delta = -delta
		}
		require.Less(t, delta, int64(16384), "ratio %#x", m.Ratio)
	}
}

func TestEngineReset(t *testing.T) {
	h := newHarness()
	e := h.meter.Engine
	e.SetWindow(PLC0_02)
	e.Trigger()
	h.runMillis(5)
	require.NotZero(t, e.Available())

	e.Reset()
	require.False(t, e.Armed())
	require.Zero(t, e.Available())
	require.Zero(t, e.Dropped())
	_, ok := e.Last()
	require.False(t, ok)

	// Configuration survives a reset.
	require.Equal(t, PLC0_02, e.Window())
}
