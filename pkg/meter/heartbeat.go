package meter

import (
	"github.com/golang/glog"

	"github.com/chargelab/meter.go/pkg/rt/timer"
)

// Heartbeat is a periodic liveness beat on the seconds domain. On the
// bench it stands in for the front-panel activity LED; here each beat is
// a verbose log line plus a counter the console can report.
type Heartbeat struct {
	timer *timer.Timer
	beats uint32
}

// NewHeartbeat registers a heartbeat with the timer service and starts
// it immediately.
func NewHeartbeat(timers *timer.Service, periodSecs uint32) *Heartbeat {
	h := &Heartbeat{}
	h.timer = timers.NewTimer(timer.Secs, periodSecs, true, h.beat)
	h.timer.Start()
	return h
}

func (h *Heartbeat) beat() {
	h.beats++
	glog.V(4).Infof("heartbeat %d", h.beats)
}

// Beats returns the number of beats since start.
func (h *Heartbeat) Beats() uint32 {
	return h.beats
}
