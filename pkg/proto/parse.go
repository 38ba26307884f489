package proto

// MaxArgs bounds the argument list of a parsed command. Exceeding it is a
// parse failure, not a truncation.
const MaxArgs = 8

// Command is a transient view of one parsed line: the canonical command
// name, up to MaxArgs positional arguments and the SCPI query flag. All
// slices alias the line buffer and are valid only until the line is
// consumed; a Command must not be retained across lines.
type Command struct {
	name  []byte
	args  [MaxArgs][]byte
	nargs int
	query bool
}

// Clear resets the view.
func (c *Command) Clear() {
	c.name = nil
	c.nargs = 0
	c.query = false
	for i := range c.args {
		c.args[i] = nil
	}
}

// Name returns the command name, folded to upper case in place.
func (c *Command) Name() []byte {
	return c.name
}

// Query reports the SCPI query flag. Always false for the console dialect.
func (c *Command) Query() bool {
	return c.query
}

// ArgCount returns the number of parsed arguments.
func (c *Command) ArgCount() int {
	return c.nargs
}

// Arg returns argument i, or nil if out of range.
func (c *Command) Arg(i int) []byte {
	if i < 0 || i >= c.nargs {
		return nil
	}
	return c.args[i]
}

func asciiUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func upperInPlace(tok []byte) {
	for i, b := range tok {
		tok[i] = asciiUpper(b)
	}
}

// TokenCursor walks a line buffer, yielding successive tokens split on
// whitespace and, when commaIsSeparator is set, on commas. Tokens are
// subslices of the line; nothing is copied or allocated.
type TokenCursor struct {
	rest             []byte
	commaIsSeparator bool
}

// NewTokenCursor creates a cursor over line.
func NewTokenCursor(line []byte, commaIsSeparator bool) TokenCursor {
	return TokenCursor{rest: line, commaIsSeparator: commaIsSeparator}
}

func (t *TokenCursor) isSeparator(b byte) bool {
	if b == ' ' || b == '\t' {
		return true
	}
	return t.commaIsSeparator && b == ','
}

// Next returns the next token, or false when the line is exhausted.
func (t *TokenCursor) Next() ([]byte, bool) {
	i := 0
	for i < len(t.rest) && t.isSeparator(t.rest[i]) {
		i++
	}
	if i == len(t.rest) {
		t.rest = nil
		return nil, false
	}
	start := i
	for i < len(t.rest) && !t.isSeparator(t.rest[i]) {
		i++
	}
	tok := t.rest[start:i]
	t.rest = t.rest[i:]
	return tok, true
}

func collectArgs(cursor *TokenCursor, cmd *Command) bool {
	for {
		tok, ok := cursor.Next()
		if !ok {
			return true
		}
		if cmd.nargs >= MaxArgs {
			return false
		}
		cmd.args[cmd.nargs] = tok
		cmd.nargs++
	}
}

// ParseConsole parses the free-form console dialect: "CMD arg1 arg2",
// split on whitespace only. The command name is folded to upper case.
func ParseConsole(line []byte, cmd *Command) bool {
	cmd.Clear()
	cursor := NewTokenCursor(line, false)
	tok, ok := cursor.Next()
	if !ok {
		return false
	}
	upperInPlace(tok)
	cmd.name = tok
	return collectArgs(&cursor, cmd)
}

// ParseSCPI parses the SCPI-like dialect: "[:]SUB:SYSTEM:CMD[?] a1,a2",
// split on whitespace and commas. The command is upper-cased, an optional
// leading colon is stripped, and a trailing '?' sets the query flag. An
// empty command after stripping is a parse failure.
func ParseSCPI(line []byte, cmd *Command) bool {
	cmd.Clear()
	cursor := NewTokenCursor(line, true)
	tok, ok := cursor.Next()
	if !ok {
		return false
	}
	upperInPlace(tok)
	if tok[0] == ':' {
		tok = tok[1:]
	}
	if len(tok) == 0 {
		return false
	}
	if tok[len(tok)-1] == '?' {
		tok = tok[:len(tok)-1]
		cmd.query = true
	}
	if len(tok) == 0 {
		return false
	}
	cmd.name = tok
	return collectArgs(&cursor, cmd)
}
