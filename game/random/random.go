// Package random provides the injectable randomness used by dice, combat and
// encounter selection.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Source is the randomness every engine component draws from.
// *rand.Rand satisfies it.
type Source interface {
	// Intn returns a value in [0, n). n must be > 0.
	Intn(n int) int
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// New returns a deterministic source for seed, safe for concurrent use. A
// zero seed is replaced by a crypto-random one.
func New(seed int64) (*Locked, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return &Locked{src: rand.New(rand.NewSource(seed))}, nil
}

// Locked serialises access to a Source.
type Locked struct {
	mu  sync.Mutex
	src Source
}

func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Percent reports whether a roll in [0,100) lands under chance.
func Percent(src Source, chance int) bool {
	return src.Intn(100) < chance
}

// Roller adapts a Source to the rpg-toolkit dice.Roller interface.
type Roller struct {
	src Source
}

func NewRoller(src Source) *Roller {
	return &Roller{src: src}
}

// Roll returns a value in [1, size].
func (r *Roller) Roll(size int) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("invalid die size %d", size)
	}
	return r.src.Intn(size) + 1, nil
}

// RollN rolls count dice of the given size.
func (r *Roller) RollN(count, size int) ([]int, error) {
	if count < 0 {
		return nil, fmt.Errorf("invalid dice count %d", count)
	}
	out := make([]int, count)
	for i := range out {
		v, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
