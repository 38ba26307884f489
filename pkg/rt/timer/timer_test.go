package timer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chargelab/meter.go/pkg/rt/clock"
)

// fakeSource is a hand-driven TimeSource.
type fakeSource struct {
	ticks  uint32
	millis uint32
	secs   uint32
}

func (s *fakeSource) Ticks() uint32  { return s.ticks }
func (s *fakeSource) Millis() uint32 { return s.millis }
func (s *fakeSource) Secs() uint32   { return s.secs }

func TestTickerSatisfiesTimeSource(t *testing.T) {
	var _ TimeSource = clock.MustNew(1024)
}

func TestOneShotFiresOnce(t *testing.T) {
	src := &fakeSource{millis: 10}
	svc := NewService(src)

	fired := 0
	tm := svc.NewTimer(Millis, 100, false, func() { fired++ })
	require.False(t, tm.Running())

	tm.Start()
	require.True(t, tm.Running())
	require.False(t, tm.Expired())

	src.millis = 109
	svc.Check(Millis)
	require.Equal(t, 0, fired)

	src.millis = 110
	svc.Check(Millis)
	require.Equal(t, 1, fired)
	require.False(t, tm.Running())
	require.True(t, tm.Expired())

	src.millis = 500
	svc.Check(Millis)
	require.Equal(t, 1, fired)
}

func TestPeriodicFiresEveryPeriod(t *testing.T) {
	src := &fakeSource{secs: 5}
	svc := NewService(src)

	fired := 0
	tm := svc.NewTimer(Secs, 2, true, func() { fired++ })
	tm.Start()

	for s := uint32(6); s <= 13; s++ {
		src.secs = s
		svc.Check(Secs)
	}
	require.Equal(t, 4, fired)
	require.True(t, tm.Running())
}

func TestExpiryComparisonSurvivesWraparound(t *testing.T) {
	src := &fakeSource{millis: 0xFFFFFF00}
	svc := NewService(src)

	fired := 0
	tm := svc.NewTimer(Millis, 500, false, func() { fired++ })
	tm.Start() // expiration wraps past 0xFFFFFFFF to 0x000000F4

	src.millis = 0xFFFFFFFF
	svc.Check(Millis)
	require.Equal(t, 0, fired)

	src.millis = 0x000000F3
	svc.Check(Millis)
	require.Equal(t, 0, fired)

	src.millis = 0x000000F4 // exactly 500 units after start
	svc.Check(Millis)
	require.Equal(t, 1, fired)
}

func TestMissedPeriodsResyncWithoutCallbackStorm(t *testing.T) {
	src := &fakeSource{millis: 1000}
	svc := NewService(src)

	fired := 0
	tm := svc.NewTimer(Millis, 500, true, func() { fired++ })
	tm.Start() // expiration 1500

	// First check happens late, past the 1500 and 2000 boundaries.
	src.millis = 2600
	svc.Check(Millis)
	require.Equal(t, 1, fired)

	// The timer resynchronized to now+period (3100), not 2000 or 2500.
	src.millis = 3099
	svc.Check(Millis)
	require.Equal(t, 1, fired)

	src.millis = 3100
	svc.Check(Millis)
	require.Equal(t, 2, fired)
}

func TestCheckThrottledWhenTimeUnchanged(t *testing.T) {
	src := &fakeSource{millis: 100}
	svc := NewService(src)
	svc.Check(Millis)

	fired := 0
	tm := svc.NewTimer(Millis, 0, false, func() { fired++ })
	tm.Start() // already due at now==100

	// Time has not advanced since the last check; the sweep is skipped.
	svc.Check(Millis)
	require.Equal(t, 0, fired)

	src.millis = 101
	svc.Check(Millis)
	require.Equal(t, 1, fired)
}

func TestStopTakesEffectBeforeNextCheck(t *testing.T) {
	src := &fakeSource{millis: 0}
	svc := NewService(src)

	fired := 0
	tm := svc.NewTimer(Millis, 10, true, func() { fired++ })
	tm.Start()
	tm.Stop()

	src.millis = 100
	svc.Check(Millis)
	require.Equal(t, 0, fired)

	tm.Start()
	src.millis = 110
	svc.Check(Millis)
	require.Equal(t, 1, fired)
}

func TestDomainsAreIndependent(t *testing.T) {
	src := &fakeSource{}
	svc := NewService(src)

	var msFired, secFired int
	ms := svc.NewTimer(Millis, 50, false, func() { msFired++ })
	sec := svc.NewTimer(Secs, 50, false, func() { secFired++ })
	ms.Start()
	sec.Start()

	src.millis = 60
	svc.Poll()
	require.Equal(t, 1, msFired)
	require.Equal(t, 0, secFired)

	src.secs = 60
	svc.Poll()
	require.Equal(t, 1, msFired)
	require.Equal(t, 1, secFired)
}

func TestSweepOrderIsRegistrationOrder(t *testing.T) {
	src := &fakeSource{millis: 0}
	svc := NewService(src)

	var order []int
	// Registration pushes onto the head of the list, so the most
	// recently created timer is evaluated first.
	for i := 1; i <= 3; i++ {
		i := i
		svc.NewTimer(Millis, 10, false, func() { order = append(order, i) }).Start()
	}
	src.millis = 20
	svc.Check(Millis)
	require.Equal(t, []int{3, 2, 1}, order)
}

func TestRemoveHeadMiddleAndAbsent(t *testing.T) {
	src := &fakeSource{millis: 0}
	svc := NewService(src)

	fired := make([]int, 4)
	timers := make([]*Timer, 4)
	for i := range timers {
		i := i
		timers[i] = svc.NewTimer(Millis, 10, true, func() { fired[i]++ })
		timers[i].Start()
	}

	timers[3].Remove() // head of the list
	timers[1].Remove() // middle
	timers[1].Remove() // already removed: no-op

	src.millis = 20
	svc.Check(Millis)
	require.Equal(t, []int{1, 0, 1, 0}, fired)
}

func TestSetPeriodAndSetPeriodic(t *testing.T) {
	src := &fakeSource{millis: 0}
	svc := NewService(src)

	fired := 0
	tm := svc.NewTimer(Millis, 10, false, func() { fired++ })
	tm.SetPeriodic(true)
	tm.SetPeriod(100)
	tm.Start()

	src.millis = 10
	svc.Check(Millis)
	require.Equal(t, 0, fired)

	src.millis = 100
	svc.Check(Millis)
	require.Equal(t, 1, fired)

	src.millis = 200
	svc.Check(Millis)
	require.Equal(t, 2, fired)
	require.True(t, tm.Running())
}
