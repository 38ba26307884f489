// Package ws provides websocket byte links for the protocol engine.
package ws

import (
	"io"
	"net/http"

	"golang.org/x/net/websocket"
)

// Dial connects to a websocket URL and returns the connection as a byte
// link suitable for transport.NewStream.
func Dial(wsURL, origin string) (io.ReadWriteCloser, error) {
	if origin == "" {
		origin = "http://localhost/"
	}
	return websocket.Dial(wsURL, "", origin)
}

// Handler wraps a per-connection serve function into an http.Handler.
// The serve function receives the connection as a byte link and should
// block until the link is finished.
func Handler(serve func(conn io.ReadWriter)) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		serve(conn)
	})
}
