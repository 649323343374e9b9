// Package randutil derives reproducible random sources from int64 seeds.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG source seeded from seed. Equal seeds give equal
// sequences.
func New(seed int64) *rand.Rand {
	return Stream(seed, 0)
}

// Stream returns the n-th independent source for seed, so one session seed
// can drive the deck and the bots without the two sharing a sequence.
func Stream(seed int64, n uint64) *rand.Rand {
	u := uint64(seed) + n*goldenRatio64*2
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// mix is the splitmix64 finalizer.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
