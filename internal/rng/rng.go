// Package rng defines the pseudo-random source every engine call consumes.
//
// A caller creates one Source per call (or per job) and threads it through;
// engines never seed or construct generators themselves, so the same seed
// and inputs reproduce a result bit for bit.
package rng

import "math/rand/v2"

// Source is the subset of *rand.Rand the engines draw from.
type Source interface {
	Float64() float64     // uniform [0,1)
	IntN(n int) int       // uniform [0,n), panics if n <= 0
	NormFloat64() float64 // standard normal
}

var _ Source = (*rand.Rand)(nil)

// streamSalt decorrelates the two PCG words derived from a single seed.
const streamSalt = 0x9e3779b97f4a7c15

// New returns a PCG-backed generator for seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^streamSalt))
}

// Derive returns the seed for the i-th independent stream under base.
func Derive(base uint64, i int) uint64 {
	// splitmix64 finalizer
	z := base + uint64(i+1)*streamSalt
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
