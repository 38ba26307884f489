package clock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewValidatesRate(t *testing.T) {
	for _, rate := range []uint16{0, 1, 8, 15, 100, 1000, 2048} {
		_, err := New(rate)
		require.Errorf(t, err, "rate %d", rate)
	}
	for _, rate := range []uint16{16, 32, 64, 128, 256, 512, 1024} {
		tk, err := New(rate)
		require.NoError(t, err)
		require.Equal(t, rate, tk.TicksPerSecond())
	}
	require.Panics(t, func() { MustNew(17) })
}

func TestOneSecondAtFullRate(t *testing.T) {
	tk := MustNew(1024)
	for i := 0; i < 1024; i++ {
		tk.Tick()
	}
	require.Equal(t, uint32(1024), tk.Ticks())
	require.Equal(t, uint32(1), tk.Secs())
	// 24 of the 1024 millisecond increments are skipped by design.
	require.Equal(t, uint32(1000), tk.Millis())
}

func TestMillisAccumulatesExactlyOverMinutes(t *testing.T) {
	tk := MustNew(1024)
	const seconds = 120
	for i := 0; i < seconds*1024; i++ {
		tk.Tick()
	}
	require.Equal(t, uint32(seconds), tk.Secs())
	require.Equal(t, uint32(seconds*1000), tk.Millis())
}

func TestMillisJitterIsBounded(t *testing.T) {
	tk := MustNew(1024)
	// Within a second millis may lag ideal time by the skipped increments
	// seen so far, but never by more than the full 24.
	for i := 1; i <= 1023; i++ {
		tk.Tick()
		ideal := uint32(i * 1000 / 1024)
		millis := tk.Millis()
		require.LessOrEqual(t, millis, uint32(i))
		require.LessOrEqual(t, int64(ideal)-int64(millis), int64(24))
	}
}

func TestTimestampSnapshot(t *testing.T) {
	tk := MustNew(256)
	for i := 0; i < 256+42; i++ {
		tk.Tick()
	}
	ts := tk.Now()
	require.Equal(t, uint32(1), ts.Seconds)
	require.Equal(t, uint16(42), ts.Ticks)
}

func TestSubSecondTickOffsetWraps(t *testing.T) {
	tk := MustNew(16)
	for s := 0; s < 3; s++ {
		for i := 0; i < 16; i++ {
			tk.Tick()
		}
		ts := tk.Now()
		require.Equal(t, uint32(s+1), ts.Seconds)
		require.Equal(t, uint16(0), ts.Ticks)
	}
}
