// Package encounter picks which monster, if any, a character meets on a path
// segment.
package encounter

import (
	"context"
	"math"

	"github.com/kasuganosora/roadquest/game/random"
	"github.com/kasuganosora/roadquest/model"
	"github.com/kasuganosora/roadquest/store"
	"go.uber.org/zap"
)

// Encounter is a selected spawn entry with its monster.
type Encounter struct {
	Entry   *model.SpawnEntry `json:"entry"`
	Monster *model.Monster    `json:"monster"`
}

// Candidate is an eligible spawn entry.
type Candidate struct {
	Entry   *model.SpawnEntry
	Monster *model.Monster
}

// Selector performs weighted random selection over a location's spawn table.
type Selector struct {
	spawns   store.Source[model.SpawnEntry]
	monsters store.Source[model.Monster]
	rng      random.Source
	logger   *zap.Logger
}

// NewSelector creates a Selector.
func NewSelector(spawns store.Source[model.SpawnEntry], monsters store.Source[model.Monster], rng random.Source, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{spawns: spawns, monsters: monsters, rng: rng, logger: logger}
}

// Eligible returns the entries of locationID that are active, whose monster
// is active, and whose level window admits level. A nil level skips the
// window check. Entries with a broken rate or monster are logged and skipped.
func (s *Selector) Eligible(ctx context.Context, locationID string, level *int) ([]Candidate, error) {
	entries, err := s.spawns.List(ctx, store.Filter{LocationID: locationID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		if !e.IsActive {
			continue
		}
		if math.IsNaN(e.SpawnRate) || math.IsInf(e.SpawnRate, 0) || e.SpawnRate < 0 {
			s.logger.Warn("invalid spawn rate",
				zap.String("location_id", locationID), zap.Int64("spawn_id", e.ID), zap.Float64("rate", e.SpawnRate))
			continue
		}
		if level != nil && !e.AllowsLevel(*level) {
			continue
		}
		m, err := s.monsters.Get(ctx, e.MonsterID)
		if err != nil {
			s.logger.Warn("spawn entry references unknown monster",
				zap.String("location_id", locationID), zap.String("monster_id", e.MonsterID), zap.Error(err))
			continue
		}
		if !m.IsActive {
			continue
		}
		out = append(out, Candidate{Entry: e, Monster: m})
	}
	return out, nil
}

// Select draws one encounter for locationID. "No encounter" is (nil, nil);
// a failing spawn or monster source is logged and also yields no encounter.
func (s *Selector) Select(ctx context.Context, locationID string, level *int) (*Encounter, error) {
	cands, err := s.Eligible(ctx, locationID, level)
	if err != nil {
		s.logger.Error("spawn table unavailable",
			zap.String("location_id", locationID), zap.String("action", "select_encounter"), zap.Error(err))
		return nil, nil
	}
	c, ok := pick(cands, s.rng)
	if !ok {
		return nil, nil
	}
	return &Encounter{Entry: c.Entry, Monster: c.Monster}, nil
}

// pick walks cands in order accumulating rates and returns the first whose
// running total exceeds a draw in [0,total). Zero-rate entries can never win.
// The last positive entry covers floating-point shortfall.
func pick(cands []Candidate, rng random.Source) (Candidate, bool) {
	total := 0.0
	last := -1
	for i, c := range cands {
		if c.Entry.SpawnRate > 0 {
			total += c.Entry.SpawnRate
			last = i
		}
	}
	if total <= 0 || last < 0 {
		return Candidate{}, false
	}
	r := rng.Float64() * total
	cum := 0.0
	for _, c := range cands {
		cum += c.Entry.SpawnRate
		// cum > r rather than cum >= r: a draw landing exactly on a boundary
		// goes to the next entry, and a zero-rate entry never adds a share.
		if r < cum {
			return c, true
		}
	}
	return cands[last], true
}
