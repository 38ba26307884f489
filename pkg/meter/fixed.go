package meter

// PackQ032 converts a charge-balance result x = (i + k/d) / j into an
// unsigned Q0.32 fixed-point fraction round(x * 2^32), with an LSB of
// 2^-32. i is the whole count of injection cycles, j the total cycles in
// the acquisition window and k/d the fractional residual left in the
// integrator, with d a calibrated constant.
//
// Expected ranges: 2048 < d < 4095, 0 <= k < d, j <= 750000 and, by
// construction of the front end, i + k/d < j. Within those bounds
// j*d fits in 32 bits and i*d+k in 64, so everything below is exact
// integer arithmetic; rounding error is at most half an LSB. If the
// numerator reaches the denominator anyway (transient, bad input) the
// result saturates to 0xFFFFFFFF rather than wrapping.
func PackQ032(i uint32, k uint16, j uint32, d uint16) uint32 {
	denom := j * uint32(d)
	numer := uint64(i)*uint64(d) + uint64(k)
	if numer >= uint64(denom) {
		return 0xFFFFFFFF
	}
	return uint32(((numer << 32) + uint64(denom/2)) / uint64(denom))
}
