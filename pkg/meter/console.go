package meter

import (
	"github.com/chargelab/meter.go/pkg/proto"
)

// Console surface: a small free-form diagnostic dialect, meant for a
// human on the operator link rather than a program.

func (m *Meter) consoleRoutes() []proto.Route {
	return []proto.Route{
		{Name: "STATUS", Handler: m.handleStatus},
		{Name: "UPTIME", Handler: m.handleUptime},
		{Name: "COUNTERS", Handler: m.handleCounters},
		{Name: "ECHO", Handler: m.handleEcho},
		{Name: "RESET", Handler: m.handleReset},
	}
}

func (m *Meter) handleStatus(cmd *proto.Command, s proto.ByteStream) {
	if cmd.ArgCount() != 0 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	if m.Engine.Armed() {
		proto.WriteString(s, "ARMED\n")
	} else {
		proto.WriteString(s, "IDLE\n")
	}
}

func (m *Meter) handleUptime(cmd *proto.Command, s proto.ByteStream) {
	if cmd.ArgCount() != 0 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	proto.WriteUint(s, m.src.Secs())
	proto.WriteString(s, "\n")
}

func (m *Meter) handleCounters(cmd *proto.Command, s proto.ByteStream) {
	if cmd.ArgCount() != 0 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	proto.WriteString(s, "points=")
	proto.WriteUint(s, m.Engine.Available())
	proto.WriteString(s, " dropped=")
	proto.WriteUint(s, m.Engine.Dropped())
	proto.WriteString(s, " beats=")
	proto.WriteUint(s, m.Heartbeat.Beats())
	proto.WriteString(s, "\n")
}

func (m *Meter) handleEcho(cmd *proto.Command, s proto.ByteStream) {
	for i := 0; i < cmd.ArgCount(); i++ {
		if i > 0 {
			proto.WriteString(s, " ")
		}
		proto.WriteAll(s, cmd.Arg(i))
	}
	proto.WriteString(s, "\n")
}

func (m *Meter) handleReset(cmd *proto.Command, s proto.ByteStream) {
	if cmd.ArgCount() != 0 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	m.Engine.Reset()
	proto.ReplyOK(s)
}
