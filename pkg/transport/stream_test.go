package transport

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStreamPumpsBothDirections(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	port := NewPort(256, 256, Bounded)
	stream := NewStream(local, port)
	stream.FlushInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- stream.Run(ctx) }()

	// Remote bytes show up on the port's receive side.
	_, err := remote.Write([]byte("*IDN?\n"))
	require.NoError(t, err)
	var acc []byte
	require.Eventually(t, func() bool {
		for {
			b, ok := port.ReadByte()
			if !ok {
				break
			}
			acc = append(acc, b)
		}
		return string(acc) == "*IDN?\n"
	}, time.Second, time.Millisecond)

	// Port transmit bytes get flushed onto the link.
	port.Write([]byte("OK\n"))
	buf := make([]byte, 16)
	remote.SetReadDeadline(time.Now().Add(time.Second))
	n, err := remote.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "OK\n", string(buf[:n]))

	cancel()
	local.Close()
	require.Error(t, <-done)
}

func TestStreamStopsOnLinkError(t *testing.T) {
	local, remote := net.Pipe()
	port := NewPort(64, 64, Bounded)
	stream := NewStream(local, port)

	done := make(chan error, 1)
	go func() { done <- stream.Run(context.Background()) }()

	remote.Close()
	select {
	case err := <-done:
		require.ErrorIs(t, err, io.EOF)
	case <-time.After(time.Second):
		t.Fatal("stream did not stop on link error")
	}
}
