package meter

import (
	"github.com/chargelab/meter.go/pkg/proto"
)

// SCPI surface. Long and short command forms are separate routes into
// the same handler; matching is exact per token.

func (m *Meter) scpiRoutes() []proto.Route {
	return []proto.Route{
		{Name: "*IDN", Handler: m.handleIDN},

		// Configuration
		{Name: "ROUTE:INPUT", Handler: m.handleInput},
		{Name: "ROUT:INP", Handler: m.handleInput},
		{Name: "SENSE:WINDOW:PLC", Handler: m.handleWindow},
		{Name: "SENS:WIND:PLC", Handler: m.handleWindow},
		{Name: "SAMPLE:COUNT", Handler: m.handleSampleCount},
		{Name: "SAMP:COUN", Handler: m.handleSampleCount},
		{Name: "SAMP:COUNT", Handler: m.handleSampleCount},
		{Name: "TRIGGER:INPUT:POLARITY", Handler: m.handleTriggerInputPolarity},
		{Name: "TRIG:INP:POL", Handler: m.handleTriggerInputPolarity},
		{Name: "TRIGGER:OUTPUT:POLARITY", Handler: m.handleTriggerOutputPolarity},
		{Name: "TRIG:OUTP:POL", Handler: m.handleTriggerOutputPolarity},
		{Name: "TRIGGER:INPUT:PULLUP", Handler: m.handleTriggerInputPullup},
		{Name: "TRIG:INP:PULL", Handler: m.handleTriggerInputPullup},

		// Acquisition control
		{Name: "INIT", Handler: m.handleTrigger},
		{Name: "TRIGGER", Handler: m.handleTrigger},
		{Name: "TRIGGER:IMMEDIATE", Handler: m.handleTrigger},
		{Name: "TRIG", Handler: m.handleTrigger},
		{Name: "TRIG:IMM", Handler: m.handleTrigger},

		// Data access
		{Name: "DATA:AVAILABLE", Handler: m.handleDataAvailable},
		{Name: "DATA:POINTS", Handler: m.handleDataPoints},
		{Name: "FETCH:LAST", Handler: m.handleFetchLast},
		{Name: "FETC:LAST", Handler: m.handleFetchLast},
		{Name: "FETCH", Handler: m.handleFetchRead},
		{Name: "FETC", Handler: m.handleFetchRead},
		{Name: "READ", Handler: m.handleFetchRead},
	}
}

func writeMeasurement(s proto.ByteStream, mm Measurement) {
	proto.WriteUint(s, mm.Timestamp)
	proto.WriteString(s, ",")
	proto.WriteInt(s, mm.Value)
	proto.WriteString(s, ",")
	proto.WriteUint(s, mm.Ratio)
}

func parsePolarityToken(tok []byte) (inverted, ok bool) {
	eq := proto.CommandEquals
	switch {
	case eq(tok, "NORM"), eq(tok, "NORMAL"), eq(tok, "POS"), eq(tok, "POSITIVE"):
		return false, true
	case eq(tok, "INV"), eq(tok, "INVERTED"), eq(tok, "NEG"), eq(tok, "NEGATIVE"):
		return true, true
	}
	return false, false
}

func parseEnableToken(tok []byte) (enabled, ok bool) {
	eq := proto.CommandEquals
	switch {
	case eq(tok, "ON"), eq(tok, "ENABLE"), eq(tok, "ENABLED"), string(tok) == "1":
		return true, true
	case eq(tok, "OFF"), eq(tok, "DISABLE"), eq(tok, "DISABLED"), string(tok) == "0":
		return false, true
	}
	return false, false
}

func (m *Meter) handleIDN(cmd *proto.Command, s proto.ByteStream) {
	if !cmd.Query() || cmd.ArgCount() != 0 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	proto.WriteString(s, m.Identity.String())
	proto.WriteString(s, "\n")
}

func (m *Meter) handleInput(cmd *proto.Command, s proto.ByteStream) {
	if cmd.Query() {
		if cmd.ArgCount() != 0 {
			proto.ReplyErr(s, proto.ErrCodeArg)
			return
		}
		proto.WriteString(s, m.Engine.Input().Token())
		proto.WriteString(s, "\n")
		return
	}
	if cmd.ArgCount() != 1 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	input, ok := ParseInputSource(cmd.Arg(0))
	if !ok {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	m.Engine.SetInput(input)
	proto.ReplyOK(s)
}

func (m *Meter) handleWindow(cmd *proto.Command, s proto.ByteStream) {
	if cmd.Query() {
		if cmd.ArgCount() != 0 {
			proto.ReplyErr(s, proto.ErrCodeArg)
			return
		}
		proto.WriteString(s, m.Engine.Window().Token())
		proto.WriteString(s, "\n")
		return
	}
	if cmd.ArgCount() != 1 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	window, ok := ParseWindowPLC(cmd.Arg(0))
	if !ok {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	m.Engine.SetWindow(window)
	proto.ReplyOK(s)
}

func (m *Meter) handleSampleCount(cmd *proto.Command, s proto.ByteStream) {
	if cmd.Query() {
		if cmd.ArgCount() != 0 {
			proto.ReplyErr(s, proto.ErrCodeArg)
			return
		}
		if n := m.Engine.SampleCount(); n > 0 {
			proto.WriteUint(s, n)
			proto.WriteString(s, "\n")
		} else {
			proto.WriteString(s, "INF\n")
		}
		return
	}
	if cmd.ArgCount() != 1 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	arg := cmd.Arg(0)
	if proto.CommandEquals(arg, "INF") || string(arg) == "0" {
		m.Engine.SetSampleCount(0)
		proto.ReplyOK(s)
		return
	}
	n, ok := proto.ParseUint(arg)
	if !ok || n == 0 || n > BufferLimit {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	m.Engine.SetSampleCount(n)
	proto.ReplyOK(s)
}

func (m *Meter) handleTriggerInputPolarity(cmd *proto.Command, s proto.ByteStream) {
	m.handlePolarity(cmd, s, &m.triggerInputInverted)
}

func (m *Meter) handleTriggerOutputPolarity(cmd *proto.Command, s proto.ByteStream) {
	m.handlePolarity(cmd, s, &m.triggerOutputInverted)
}

func (m *Meter) handlePolarity(cmd *proto.Command, s proto.ByteStream, inverted *bool) {
	if cmd.Query() {
		if cmd.ArgCount() != 0 {
			proto.ReplyErr(s, proto.ErrCodeArg)
			return
		}
		if *inverted {
			proto.WriteString(s, "INV\n")
		} else {
			proto.WriteString(s, "NORM\n")
		}
		return
	}
	if cmd.ArgCount() != 1 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	inv, ok := parsePolarityToken(cmd.Arg(0))
	if !ok {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	*inverted = inv
	proto.ReplyOK(s)
}

func (m *Meter) handleTriggerInputPullup(cmd *proto.Command, s proto.ByteStream) {
	if cmd.Query() {
		if cmd.ArgCount() != 0 {
			proto.ReplyErr(s, proto.ErrCodeArg)
			return
		}
		if m.triggerInputPullup {
			proto.WriteString(s, "ON\n")
		} else {
			proto.WriteString(s, "OFF\n")
		}
		return
	}
	if cmd.ArgCount() != 1 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	enabled, ok := parseEnableToken(cmd.Arg(0))
	if !ok {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	m.triggerInputPullup = enabled
	proto.ReplyOK(s)
}

func (m *Meter) handleTrigger(cmd *proto.Command, s proto.ByteStream) {
	if cmd.Query() || cmd.ArgCount() != 0 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	m.Engine.Trigger()
	proto.ReplyOK(s)
}

func (m *Meter) handleDataAvailable(cmd *proto.Command, s proto.ByteStream) {
	if !cmd.Query() || cmd.ArgCount() != 0 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	if m.Engine.Available() > 0 {
		proto.WriteString(s, "1\n")
	} else {
		proto.WriteString(s, "0\n")
	}
}

func (m *Meter) handleDataPoints(cmd *proto.Command, s proto.ByteStream) {
	if !cmd.Query() || cmd.ArgCount() != 0 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	proto.WriteUint(s, m.Engine.Available())
	proto.WriteString(s, "\n")
}

func (m *Meter) handleFetchLast(cmd *proto.Command, s proto.ByteStream) {
	if !cmd.Query() || cmd.ArgCount() != 0 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}
	last, ok := m.Engine.Last()
	if !ok {
		proto.ReplyErr(s, proto.ErrCodeNoData)
		return
	}
	writeMeasurement(s, last)
	proto.WriteString(s, "\n")
}

func (m *Meter) handleFetchRead(cmd *proto.Command, s proto.ByteStream) {
	if !cmd.Query() || cmd.ArgCount() > 1 {
		proto.ReplyErr(s, proto.ErrCodeArg)
		return
	}

	requested := uint32(1)
	if cmd.ArgCount() == 1 {
		n, ok := proto.ParseUint(cmd.Arg(0))
		if !ok || n == 0 || n > MaxReadCount {
			proto.ReplyErr(s, proto.ErrCodeArg)
			return
		}
		requested = n
	}

	if m.Engine.Available() < requested {
		proto.ReplyErr(s, proto.ErrCodeUnderflow)
		return
	}
	for i := uint32(0); i < requested; i++ {
		mm, ok := m.Engine.Next()
		if !ok {
			proto.ReplyErr(s, proto.ErrCodeUnderflow)
			return
		}
		if i > 0 {
			proto.WriteString(s, ",")
		}
		writeMeasurement(s, mm)
	}
	proto.WriteString(s, "\n")
}
