package encounter

import (
	"context"
	"fmt"
	"sort"

	"github.com/kasuganosora/roadquest/model"
	"github.com/kasuganosora/roadquest/store"
)

// WarningKind classifies a spawn table problem.
type WarningKind string

const (
	WarningOverAllocated WarningKind = "over_allocated"
	WarningDeadLocation  WarningKind = "dead_location"
)

// ConfigurationWarning is a non-fatal spawn table problem, surfaced to
// balancing tools only.
type ConfigurationWarning struct {
	LocationID string      `json:"location_id"`
	Kind       WarningKind `json:"kind"`
	TotalRate  float64     `json:"total_rate"`
	Message    string      `json:"message"`
}

// Validate checks the eligible spawn total of every location that has spawn
// entries, plus any extra location ids given (e.g. roads without a table).
// Level windows are ignored: every active entry counts.
func (s *Selector) Validate(ctx context.Context, extra ...string) ([]ConfigurationWarning, error) {
	all, err := s.spawns.List(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, e := range all {
		add(e.LocationID)
	}
	for _, id := range extra {
		add(id)
	}
	sort.Strings(ids)

	var warnings []ConfigurationWarning
	for _, id := range ids {
		cands, err := s.Eligible(ctx, id, nil)
		if err != nil {
			return nil, err
		}
		if w, ok := checkTotal(id, cands); ok {
			warnings = append(warnings, w)
		}
	}
	return warnings, nil
}

func checkTotal(locationID string, cands []Candidate) (ConfigurationWarning, bool) {
	total := 0.0
	for _, c := range cands {
		total += c.Entry.SpawnRate
	}
	switch {
	case total > 1.0:
		return ConfigurationWarning{
			LocationID: locationID, Kind: WarningOverAllocated, TotalRate: total,
			Message: fmt.Sprintf("spawn rates on %s add up to %.0f%%", locationID, total*100),
		}, true
	case total == 0:
		return ConfigurationWarning{
			LocationID: locationID, Kind: WarningDeadLocation, TotalRate: 0,
			Message: fmt.Sprintf("%s has no eligible spawns", locationID),
		}, true
	}
	return ConfigurationWarning{}, false
}

// RoadIDs returns the ids of road locations, for passing to Validate.
func RoadIDs(locs []*model.Location) []string {
	var ids []string
	for _, l := range locs {
		if l.Kind == model.LocationRoad {
			ids = append(ids, l.ID)
		}
	}
	return ids
}
