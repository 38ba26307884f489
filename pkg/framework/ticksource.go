package framework

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/chargelab/meter.go/pkg/rt/clock"
)

// TickSource drives the clock's tick interrupt at its configured rate.
// It is the software stand-in for the RTC periodic interrupt: the
// goroutine running it is the only caller of Ticker.Tick.
type TickSource struct {
	Ticker *clock.Ticker
}

// NewTickSource creates a TickSource for a time base.
func NewTickSource(ticker *clock.Ticker) *TickSource {
	return &TickSource{Ticker: ticker}
}

// Name implements Named.
func (s *TickSource) Name() string {
	return "ticksource"
}

// Run implements Runnable.
//
// A host timer cannot deliver 1024 evenly spaced wakeups per second, so
// the source wakes at a coarser pace and issues however many ticks have
// come due, keeping the long-run tick count true to wall time.
func (s *TickSource) Run(ctx context.Context) error {
	rate := time.Duration(s.Ticker.TicksPerSecond())
	tickPeriod := time.Second / rate
	glog.V(4).Infof("tick source at %d Hz", rate)

	pace := time.NewTicker(time.Millisecond)
	defer pace.Stop()

	start := time.Now()
	var issued uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-pace.C:
			due := uint64(now.Sub(start) / tickPeriod)
			for issued < due {
				s.Ticker.Tick()
				issued++
			}
		}
	}
}
