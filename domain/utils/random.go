package utils

import (
	"math/rand/v2"
	"sync"
)

// RandomSource supplies the randomness used for coin draws and placements
type RandomSource interface {
	IntN(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// NewRandomSource returns a source backed by the runtime's goroutine-safe generator
func NewRandomSource() RandomSource {
	return runtimeRandom{}
}

// NewSeededRandomSource returns a deterministic source, safe for concurrent use
func NewSeededRandomSource(seed uint64) RandomSource {
	return &lockedRandom{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type runtimeRandom struct{}

func (runtimeRandom) IntN(n int) int { return rand.IntN(n) }
func (runtimeRandom) Float64() float64 { return rand.Float64() }
func (runtimeRandom) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRandom) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
