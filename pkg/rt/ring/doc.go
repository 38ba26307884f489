// Package ring provides a fixed-capacity circular queue for moving data
// between an interrupt-style producer and a cooperative main loop.
package ring

// The buffer is sized to a power of two so index wrapping is a bit mask
// instead of a modulo. One slot is always kept free: with only a head and
// a tail index, a completely full buffer would otherwise be
// indistinguishable from an empty one.
//
// Every operation comes in two forms. The plain form takes the internal
// guard (the software stand-in for masking the producing interrupt) and is
// safe to call from either side of the producer/consumer boundary. The
// FromISR form skips the guard and may only be used from the context that
// is the buffer's sole mutator for that operation, typically the receive
// callback of a transport driver.
