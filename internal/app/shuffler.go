package app

import (
	"math/rand"
	"sync"
	"time"
)

// Shuffler produces uniform random permutations (Fisher-Yates).
// It is safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewShuffler returns a shuffler with a fixed seed, for reproducible tests.
func NewShuffler(seed int64) *Shuffler {
	return &Shuffler{rnd: rand.New(rand.NewSource(seed))}
}

// NewRandomShuffler returns a shuffler seeded from the clock.
func NewRandomShuffler() *Shuffler {
	return NewShuffler(time.Now().UnixNano())
}

// Shuffle returns a new ordering of the options; the input is not modified.
func (s *Shuffler) Shuffle(options [4]string) [4]string {
	shuffled := options
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Perm returns a random permutation of [0, n).
func (s *Shuffler) Perm(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Perm(n)
}
