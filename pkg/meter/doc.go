// Package meter implements the charge-balance meter on top of the
// real-time kernel: instrument identity, the acquisition engine with its
// measurement buffer, the SCPI and console command surfaces, and the
// heartbeat.
package meter

// The physical charge-balance front end (integrator, comparator, event
// matrix) is external hardware; this package models its results. Each
// acquisition window yields an (I, K, J, D) tuple - whole injection
// cycles, fractional residual numerator, window cycle count and the
// calibrated fraction denominator - which is packed into a Q0.32 ratio.
// The simulated engine synthesizes those tuples deterministically from
// the selected input source so the full command surface is exercisable
// without hardware.
