package noise

// MaxOctaves is the hard cap on FBM layers. Requests above the cap are
// silently truncated inside the accumulation loop rather than rejected.
const MaxOctaves = 6

// FBM sums up to octaves layers of smoothed noise at (x, y), starting
// at baseFreq and amplitude 0.5, doubling frequency and halving
// amplitude per layer. The result is approximately [0, 1).
//
// The loop bound is fixed at MaxOctaves with a runtime break once the
// requested layers are consumed, so octaves=2 costs exactly two noise
// evaluations. octaves <= 0 yields 0 without touching the kernel.
func (s *Sampler) FBM(x, y float64, octaves int, baseFreq float64) float64 {
	value := 0.0
	amplitude := 0.5
	frequency := baseFreq

	for i := 0; i < MaxOctaves; i++ {
		if i >= octaves {
			break
		}
		value += amplitude * s.Smooth(x*frequency, y*frequency)
		frequency *= 2
		amplitude *= 0.5
	}

	return value
}
