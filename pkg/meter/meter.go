package meter

import (
	"github.com/chargelab/meter.go/pkg/proto"
	"github.com/chargelab/meter.go/pkg/rt/timer"
)

// MaxLineLen is the command line length limit on every control link.
const MaxLineLen = 96

// HeartbeatPeriodSecs is how often the instrument logs a liveness beat.
const HeartbeatPeriodSecs = 5

// Meter ties the instrument together: identity, acquisition engine,
// heartbeat and the two command surfaces. One Meter serves any number of
// endpoints; handlers share the engine safely because endpoints are only
// serviced from the main loop.
type Meter struct {
	Identity  Identity
	Engine    *Engine
	Heartbeat *Heartbeat

	src timer.TimeSource

	triggerInputInverted  bool
	triggerOutputInverted bool
	triggerInputPullup    bool

	scpiHandler    proto.Handler
	consoleHandler proto.Handler
}

// New creates a Meter, registering the engine's window timer and the
// heartbeat with the given timer service.
func New(id Identity, src timer.TimeSource, timers *timer.Service) *Meter {
	m := &Meter{
		Identity:  id,
		Engine:    NewEngine(src, timers),
		Heartbeat: NewHeartbeat(timers, HeartbeatPeriodSecs),
		src:       src,
	}
	m.scpiHandler = routedHandler(m.scpiRoutes())
	m.consoleHandler = routedHandler(m.consoleRoutes())
	return m
}

// routedHandler wraps a route table into a Handler that reports unknown
// commands to the peer.
func routedHandler(routes []proto.Route) proto.Handler {
	return func(cmd *proto.Command, s proto.ByteStream) {
		if !proto.Dispatch(cmd, routes, s) {
			proto.ReplyErr(s, proto.ErrCodeCmd)
		}
	}
}

// SCPIHandler returns the handler for the SCPI dialect.
func (m *Meter) SCPIHandler() proto.Handler {
	return m.scpiHandler
}

// ConsoleHandler returns the handler for the console dialect.
func (m *Meter) ConsoleHandler() proto.Handler {
	return m.consoleHandler
}

// NewSCPIEndpoint binds a transport to the SCPI surface.
func (m *Meter) NewSCPIEndpoint(s proto.ByteStream) *proto.Endpoint {
	return proto.NewEndpoint(s, proto.ParseSCPI, m.scpiHandler, MaxLineLen)
}

// NewConsoleEndpoint binds a transport to the console surface.
func (m *Meter) NewConsoleEndpoint(s proto.ByteStream) *proto.Endpoint {
	return proto.NewEndpoint(s, proto.ParseConsole, m.consoleHandler, MaxLineLen)
}
