package proto

// Handler processes one parsed command and writes any reply back through
// the endpoint's stream.
type Handler func(cmd *Command, s ByteStream)

// Route binds a command name to a handler. Names are conventionally given
// in canonical upper case, but matching is case-insensitive either way.
type Route struct {
	Name    string
	Handler Handler
}

// CommandEquals compares a token against a route name: case-insensitive,
// whole-string. There is no prefix or abbreviation matching; SCPI short
// forms get their own routes.
func CommandEquals(tok []byte, name string) bool {
	if len(tok) != len(name) {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if asciiUpper(tok[i]) != asciiUpper(name[i]) {
			return false
		}
	}
	return true
}

// Dispatch scans routes in order and invokes the first whose name matches
// the command. It reports false when no route matched so the caller can
// surface the miss; an unknown command is never silently dropped.
func Dispatch(cmd *Command, routes []Route, s ByteStream) bool {
	if cmd.name == nil {
		return false
	}
	for i := range routes {
		if routes[i].Handler == nil {
			continue
		}
		if CommandEquals(cmd.name, routes[i].Name) {
			routes[i].Handler(cmd, s)
			return true
		}
	}
	return false
}
