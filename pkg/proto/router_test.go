package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatchExactCaseInsensitive(t *testing.T) {
	var hits []string
	routes := []Route{
		{Name: "STATUS", Handler: func(cmd *Command, s ByteStream) { hits = append(hits, "status") }},
		{Name: "STATUS2", Handler: func(cmd *Command, s ByteStream) { hits = append(hits, "status2") }},
	}

	s := &memStream{}
	var cmd Command

	require.True(t, ParseConsole([]byte("status"), &cmd))
	require.True(t, Dispatch(&cmd, routes, s))
	require.Equal(t, []string{"status"}, hits)

	require.True(t, ParseConsole([]byte("STATUS2"), &cmd))
	require.True(t, Dispatch(&cmd, routes, s))
	require.Equal(t, []string{"status", "status2"}, hits)

	// No prefix matching: STATUS3 misses both routes.
	require.True(t, ParseConsole([]byte("STATUS3"), &cmd))
	require.False(t, Dispatch(&cmd, routes, s))

	// And a route never matches a longer input.
	require.True(t, ParseConsole([]byte("STAT"), &cmd))
	require.False(t, Dispatch(&cmd, routes, s))
}

func TestDispatchFirstMatchWins(t *testing.T) {
	order := 0
	routes := []Route{
		{Name: "CMD", Handler: func(cmd *Command, s ByteStream) { order = 1 }},
		{Name: "CMD", Handler: func(cmd *Command, s ByteStream) { order = 2 }},
	}
	var cmd Command
	require.True(t, ParseConsole([]byte("cmd"), &cmd))
	require.True(t, Dispatch(&cmd, routes, &memStream{}))
	require.Equal(t, 1, order)
}

func TestDispatchSkipsNilHandlers(t *testing.T) {
	called := false
	routes := []Route{
		{Name: "CMD", Handler: nil},
		{Name: "CMD", Handler: func(cmd *Command, s ByteStream) { called = true }},
	}
	var cmd Command
	require.True(t, ParseConsole([]byte("CMD"), &cmd))
	require.True(t, Dispatch(&cmd, routes, &memStream{}))
	require.True(t, called)
}

func TestCommandEquals(t *testing.T) {
	require.True(t, CommandEquals([]byte("trig:imm"), "TRIG:IMM"))
	require.True(t, CommandEquals([]byte("*IDN"), "*idn"))
	require.False(t, CommandEquals([]byte("TRIG"), "TRIG:IMM"))
	require.False(t, CommandEquals([]byte(""), "X"))
}
