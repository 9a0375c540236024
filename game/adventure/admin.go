package adventure

import (
	"context"

	"github.com/kasuganosora/roadquest/game/encounter"
	"github.com/kasuganosora/roadquest/store"
)

// ValidateSpawns checks every spawn table, including roads that have none.
func (s *Service) ValidateSpawns(ctx context.Context) ([]encounter.ConfigurationWarning, error) {
	locs, err := s.cfg.Locations.List(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	return s.cfg.Encounters.Validate(ctx, encounter.RoadIDs(locs)...)
}

// ExpireBattles drops battles idle past the registry timeout.
func (s *Service) ExpireBattles(ctx context.Context) []int64 {
	return s.cfg.Battles.GC(ctx)
}

// BattleCount returns how many battles the registry holds, settled ones
// included.
func (s *Service) BattleCount() int {
	return s.cfg.Battles.Count()
}
