package proto

// ParseFunc is a dialect parser: it fills cmd from line and reports
// whether the line was well formed. ParseConsole and ParseSCPI are the
// two provided dialects.
type ParseFunc func(line []byte, cmd *Command) bool

// Endpoint binds one transport to one dialect and one handler. Service
// drains every currently complete line, so one pass per endpoint per loop
// iteration is enough for fairness across endpoints.
type Endpoint struct {
	stream      ByteStream
	recv        *LineReceiver
	parse       ParseFunc
	handler     Handler
	parseErrors uint32
	cmd         Command
}

// NewEndpoint creates an endpoint with the given maximum line length.
func NewEndpoint(stream ByteStream, parse ParseFunc, handler Handler, maxLineLen int) *Endpoint {
	return &Endpoint{
		stream:  stream,
		recv:    NewLineReceiver(stream, maxLineLen),
		parse:   parse,
		handler: handler,
	}
}

// Service pulls pending bytes, parses each completed line and routes it
// to the handler. Malformed lines are counted and dropped; the handler
// decides how dispatch misses are reported to the peer.
func (e *Endpoint) Service() {
	for e.recv.Poll() {
		if e.parse(e.recv.Line(), &e.cmd) {
			if e.handler != nil {
				e.handler(&e.cmd, e.stream)
			}
		} else {
			e.parseErrors++
			ReplyErr(e.stream, ErrCodeArg)
		}
		e.recv.Consume()
	}
}

// Stream returns the bound transport.
func (e *Endpoint) Stream() ByteStream {
	return e.stream
}

// ParseErrors returns the number of malformed lines seen.
func (e *Endpoint) ParseErrors() uint32 {
	return e.parseErrors
}

// LineOverflows returns the number of over-length lines discarded.
func (e *Endpoint) LineOverflows() uint32 {
	return e.recv.Overflows()
}

// ClearCounters resets both error counters.
func (e *Endpoint) ClearCounters() {
	e.parseErrors = 0
	e.recv.ClearCounters()
}

// Hub services a bounded set of endpoints, one pass each per call.
// Typical use is one SCPI endpoint per control link plus one console
// endpoint for diagnostics.
type Hub struct {
	endpoints []*Endpoint
	max       int
}

// NewHub creates a hub accepting at most max endpoints.
func NewHub(max int) *Hub {
	return &Hub{max: max}
}

// Add registers an endpoint. It reports false when the hub is full.
func (h *Hub) Add(e *Endpoint) bool {
	if len(h.endpoints) >= h.max {
		return false
	}
	h.endpoints = append(h.endpoints, e)
	return true
}

// Remove unregisters an endpoint, preserving service order of the rest.
func (h *Hub) Remove(e *Endpoint) {
	for i, cur := range h.endpoints {
		if cur == e {
			h.endpoints = append(h.endpoints[:i], h.endpoints[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered endpoints.
func (h *Hub) Len() int {
	return len(h.endpoints)
}

// ServiceAll services every endpoint once, in registration order. Each
// endpoint drains all its complete lines before the next one runs, so a
// quiet endpoint costs one empty poll and cannot be starved except by
// sheer volume on its peers.
func (h *Hub) ServiceAll() {
	for _, e := range h.endpoints {
		e.Service()
	}
}

// Poll lets a Hub be registered directly with the framework loop.
func (h *Hub) Poll() {
	h.ServiceAll()
}
