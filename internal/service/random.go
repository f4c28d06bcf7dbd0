package service

import (
	"math/rand"
	"sync"
	"time"
)

// Random is the source of randomness used by the generators. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// Clock returns the current time
type Clock func() time.Time

// lockedRandom serialises access to a *rand.Rand, which is not safe for concurrent use
type lockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedRandom returns a goroutine-safe source. A zero seed uses the current time.
func NewLockedRandom(seed int64) Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRandom{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
