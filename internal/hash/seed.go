// Package hash derives deterministic random seeds with XXH3.
package hash

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/zeebo/xxh3"
)

// streamSalt separates the second PCG word from the first.
const streamSalt = 0x9e3779b97f4a7c15

// Seed derives the two PCG seed words for one unit of work.
//
// The words depend only on runSeed and key, never on scheduling order, so a
// run with a fixed seed is reproducible however many workers it uses.
//
// Parameters:
//   - runSeed: Seed of the whole run (0 is a valid seed)
//   - key: Identifier of the unit of work (e.g., a neighborhood id)
//
// Returns:
//   - uint64, uint64: Seed words for rand.NewPCG
func Seed(runSeed uint64, key uint64) (uint64, uint64) {
	var kb [8]byte
	binary.LittleEndian.PutUint64(kb[:], key)

	hi := xxh3.HashSeed(kb[:], runSeed)
	lo := xxh3.HashSeed(kb[:], runSeed^streamSalt)

	return hi, lo
}

// NewRand returns a random source private to one unit of work.
//
// The returned *rand.Rand is not safe for concurrent use; each goroutine
// must derive its own.
func NewRand(runSeed uint64, key uint64) *rand.Rand {
	hi, lo := Seed(runSeed, key)

	return rand.New(rand.NewPCG(hi, lo)) //nolint:gosec // simulation sampling, not security
}
