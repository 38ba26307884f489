// Package proto implements the instrument's line-oriented command
// protocol engine: framing of LF-terminated ASCII lines over a byte
// transport, in-place tokenizing, the console and SCPI command dialects,
// a static command router, and a hub multiplexing several protocol
// endpoints from one cooperative loop.
package proto

// The engine is strictly poll driven. An Endpoint pulls whatever bytes
// its transport currently has, assembles at most one complete line at a
// time, parses it into a transient Command view and hands it to the bound
// handler. Nothing here blocks, allocates per byte, or retains parsed
// commands beyond the line they alias.
//
// Two execution contexts are assumed: transport drivers fill their
// receive buffers from their own callback context, and a single
// cooperative context services every endpoint. All structures in this
// package belong to the cooperative context only.
