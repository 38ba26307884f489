package proto

import "strconv"

// Reply wire format: "OK\n" on success, "ERR:<CODE>\n" on failure, data
// replies as comma-separated ASCII values terminated by LF.

// ReplyOK writes the success reply.
func ReplyOK(s ByteStream) {
	WriteString(s, "OK\n")
}

// ReplyErr writes a failure reply with the given code.
func ReplyErr(s ByteStream, code string) {
	if code == "" {
		code = "GENERIC"
	}
	WriteString(s, "ERR:")
	WriteString(s, code)
	WriteString(s, "\n")
}

// Common error codes shared by both dialects.
const (
	ErrCodeArg       = "ARG"
	ErrCodeCmd       = "CMD"
	ErrCodeNoData    = "NO_DATA"
	ErrCodeUnderflow = "UNDERFLOW"
)

// WriteUint writes v in decimal.
func WriteUint(s ByteStream, v uint32) {
	var buf [10]byte
	WriteAll(s, strconv.AppendUint(buf[:0], uint64(v), 10))
}

// WriteInt writes v in decimal.
func WriteInt(s ByteStream, v int32) {
	var buf [11]byte
	WriteAll(s, strconv.AppendInt(buf[:0], int64(v), 10))
}

// ParseUint parses a decimal unsigned token.
func ParseUint(tok []byte) (uint32, bool) {
	if len(tok) == 0 {
		return 0, false
	}
	v, err := strconv.ParseUint(string(tok), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// ParseInt parses a decimal signed token.
func ParseInt(tok []byte) (int32, bool) {
	if len(tok) == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(string(tok), 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(v), true
}
