package proto

// ByteStream is the transport contract the protocol engine consumes.
// Reads and writes are non-blocking: ReadByte reports false when no byte
// is pending, WriteByte reports false when the transmit side cannot
// accept the byte right now.
type ByteStream interface {
	WriteByte(b byte) bool
	ReadByte() (byte, bool)
	// Write transmits as much of buf as the transport accepts and
	// returns the number of bytes written.
	Write(buf []byte) int
}

// WriteAll is a helper over ByteStream.Write for transports that may
// accept partial writes. It reports whether the whole buffer went out.
func WriteAll(s ByteStream, buf []byte) bool {
	return s.Write(buf) == len(buf)
}

// WriteString writes str and returns the number of bytes written.
func WriteString(s ByteStream, str string) int {
	n := 0
	for i := 0; i < len(str); i++ {
		if !s.WriteByte(str[i]) {
			break
		}
		n++
	}
	return n
}
