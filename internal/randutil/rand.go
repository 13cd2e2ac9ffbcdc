// Package randutil centralises how the engine derives its random streams.
//
// Every round draws from a single *rand.Rand and the order of draws is part
// of the observable behaviour of the game: the same seed replays the same
// loadouts, item grants and phone reveals as long as the call order is
// unchanged.
package randutil

import (
	"encoding/binary"
	"io"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns a stream that is independent of the one New(seed) produces.
// Bots and other consumers that must not perturb the game stream use it.
func Derive(seed int64, stream uint64) *rand.Rand {
	u := uint64(seed) ^ mix(stream+1)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64*(stream+2))))
}

// Reader returns a deterministic byte stream for seed, for consumers such as
// ID generators that want an io.Reader.
func Reader(seed int64, stream uint64) io.Reader {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:], mix(uint64(seed)))
	binary.LittleEndian.PutUint64(key[8:], mix(stream+goldenRatio64))
	binary.LittleEndian.PutUint64(key[16:], mix(uint64(seed)^stream))
	binary.LittleEndian.PutUint64(key[24:], goldenRatio64)
	return rand.NewChaCha8(key)
}

// IntRange returns a uniformly distributed int in [lo, hi]. It consumes
// exactly one draw from rng.
func IntRange(rng *rand.Rand, lo, hi int) int {
	if hi < lo {
		panic("randutil: empty range")
	}
	return lo + rng.IntN(hi-lo+1)
}

// mix is the splitmix64 finaliser.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
