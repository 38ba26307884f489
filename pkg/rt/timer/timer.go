// Package timer provides deferred one-shot and periodic callbacks on top
// of the clock time base, with a separate registry per time domain.
package timer

// TimeSource provides the three domain counters. *clock.Ticker satisfies
// it; tests substitute a hand-driven source.
type TimeSource interface {
	Ticks() uint32
	Millis() uint32
	Secs() uint32
}

// Domain selects the time unit a timer is bound to. Timers of different
// domains are never compared against each other's clock.
type Domain int

const (
	// Ticks uses the raw tick counter.
	Ticks Domain = iota
	// Millis uses the approximate millisecond counter.
	Millis
	// Secs uses the second counter.
	Secs

	domainCount
)

// Callback is invoked with no arguments when a timer expires. Bind state
// by closing over it.
type Callback func()

// Timer is a deferred callback owned by its creator. All methods must be
// called from the same cooperative context that runs Service.Check.
type Timer struct {
	next *Timer
	svc  *Service

	domain     Domain
	period     uint32
	expiration uint32
	callback   Callback
	periodic   bool
	running    bool
	expired    bool
}

// Service owns the per-domain timer registries and the time base they are
// swept against.
type Service struct {
	src       TimeSource
	heads     [domainCount]*Timer
	lastCheck [domainCount]uint32
}

// NewService creates a Service bound to a time base.
func NewService(src TimeSource) *Service {
	return &Service{src: src}
}

// NewTimer creates a timer and registers it in its domain. The timer is
// idle until Start is called. A nil callback is allowed; expiry then only
// drives the Expired flag.
func (s *Service) NewTimer(domain Domain, period uint32, periodic bool, callback Callback) *Timer {
	t := &Timer{
		svc:      s,
		domain:   domain,
		period:   period,
		periodic: periodic,
		callback: callback,
	}
	t.next = s.heads[domain]
	s.heads[domain] = t
	return t
}

func (s *Service) now(domain Domain) uint32 {
	switch domain {
	case Millis:
		return s.src.Millis()
	case Secs:
		return s.src.Secs()
	default:
		return s.src.Ticks()
	}
}

// Check sweeps one domain's registry. If the domain time has not advanced
// since the previous call the sweep is skipped; this is a throttle, not a
// correctness requirement. Expiry evaluation order is registration order.
func (s *Service) Check(domain Domain) {
	now := s.now(domain)
	if now == s.lastCheck[domain] {
		return
	}
	s.lastCheck[domain] = now
	for t := s.heads[domain]; t != nil; t = t.next {
		t.checkExpiration(now)
	}
}

// Poll sweeps all three domains. It satisfies the framework Pollable
// contract so the service can be serviced by the main loop directly.
func (s *Service) Poll() {
	s.Check(Ticks)
	s.Check(Millis)
	s.Check(Secs)
}

func (t *Timer) checkExpiration(now uint32) {
	if !t.running {
		return
	}
	// Signed comparison of the unsigned difference is correct across
	// 32-bit wraparound as long as the timer is checked at least once
	// every 2^31 domain units.
	if int32(now-t.expiration) < 0 {
		return
	}
	if t.callback != nil {
		t.callback()
	}
	if t.periodic {
		t.expiration += t.period
		if int32(now-t.expiration) >= 0 {
			// One or more whole periods were missed; resynchronize
			// instead of firing back-to-back to catch up.
			t.expiration = now + t.period
		}
	} else {
		t.running = false
		t.expired = true
	}
}

// Start arms the timer: expiration is the current domain time plus the
// period. Restarting a running timer reschedules it.
func (t *Timer) Start() {
	t.expired = false
	t.expiration = t.svc.now(t.domain) + t.period
	t.running = true
}

// Stop disarms the timer without removing it from its registry, so a
// later Start is cheap.
func (t *Timer) Stop() {
	t.running = false
}

// Running reports whether the timer is armed.
func (t *Timer) Running() bool {
	return t.running
}

// Expired reports whether a one-shot timer has fired since the last Start.
func (t *Timer) Expired() bool {
	return t.expired
}

// SetPeriod changes the period. A running periodic timer picks it up at
// its next reschedule; Start uses it immediately.
func (t *Timer) SetPeriod(period uint32) {
	t.period = period
}

// SetPeriodic switches between one-shot and periodic behavior.
func (t *Timer) SetPeriodic(periodic bool) {
	t.periodic = periodic
}

// Remove stops the timer and unlinks it from its domain registry.
// Removing an already-removed timer is a no-op.
func (t *Timer) Remove() {
	t.running = false
	head := &t.svc.heads[t.domain]
	if *head == t {
		*head = t.next
		t.next = nil
		return
	}
	for prev := *head; prev != nil; prev = prev.next {
		if prev.next == t {
			prev.next = t.next
			t.next = nil
			return
		}
	}
}
