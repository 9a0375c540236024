package adventure

import (
	"context"
	"time"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/audit"
	"github.com/kasuganosora/roadquest/game/battle"
	"github.com/kasuganosora/roadquest/game/effect"
	"github.com/kasuganosora/roadquest/game/item"
	"github.com/kasuganosora/roadquest/game/movement"
	"github.com/kasuganosora/roadquest/game/skill"
	"github.com/kasuganosora/roadquest/model"
	"github.com/kasuganosora/roadquest/plugin/hook"
	"go.uber.org/zap"
)

// MoveResult is the outcome of Move.
type MoveResult struct {
	movement.MoveResult
	LocationID string `json:"location_id"`
	// Branch is set when the character stops on the midpoint of a segment
	// that has a side path.
	Branch    string          `json:"branch,omitempty"`
	Encounter *battle.Session `json:"encounter,omitempty"`
}

// TransitionResult is where Transition took the character.
type TransitionResult struct {
	From       string             `json:"from"`
	LocationID string             `json:"location_id"`
	Kind       model.LocationKind `json:"kind"`
	Position   int                `json:"position"`
}

// diceEffects are the effects that shape a movement roll: equipment plus
// running travel buffs.
func diceEffects(c *model.Character) []effect.Effect {
	eq := item.TotalStats(c)
	return effect.Union(eq.Effects, skill.TravelEffects(c))
}

// RollDice rolls the character's movement dice without moving.
func (s *Service) RollDice(ctx context.Context, charID int64) (movement.Roll, error) {
	start := time.Now()
	c, err := s.cfg.Characters.Load(ctx, charID)
	if err != nil {
		return movement.Roll{}, err
	}
	r, err := s.cfg.Movement.Roll(diceEffects(c))
	s.logFailure("roll dice failed", charID, err)
	s.record(ctx, audit.ActionRollDice, c, start, nil, r, err)
	return r, err
}

// Move rolls and walks the character along its road segment. Each move
// consumes one use of every travel buff. Stopping on either end of the
// segment checks for an encounter, which starts a battle once the new
// position is saved.
func (s *Service) Move(ctx context.Context, charID int64, direction int) (MoveResult, error) {
	start := time.Now()
	defer s.lock(charID)()
	var res MoveResult
	c, err := s.update(ctx, charID, func(c *model.Character) error {
		if err := s.notInBattle(charID); err != nil {
			return err
		}
		loc, err := s.cfg.Locations.Get(ctx, c.LocationID)
		if err != nil {
			return err
		}
		if loc.Kind != model.LocationRoad {
			return apperr.InvalidStatef("%s is a %s, not a road", loc.ID, loc.Kind)
		}
		mr, err := s.cfg.Movement.Move(c.Position, direction, diceEffects(c))
		if err != nil {
			return err
		}
		skill.TickTravel(c)
		c.Position = mr.Position
		res = MoveResult{MoveResult: mr, LocationID: loc.ID}
		if mr.Boundary == movement.BoundaryMidpoint {
			res.Branch = loc.Branch
		}
		return nil
	})
	if err == nil && movement.CanTransition(res.Position) {
		res.Encounter = s.encounter(ctx, c, res.LocationID)
	}
	s.logFailure("move failed", charID, err)
	s.record(ctx, audit.ActionMove, c, start, map[string]int{"direction": direction}, res, err)
	if err == nil {
		s.cfg.Hooks.Fire(ctx, hook.AfterMove, hook.Payload{CharID: charID, LocationID: res.LocationID, Data: res})
	}
	return res, err
}

// encounter rolls the spawn table and registers a battle when a monster
// shows up. Failures mean no encounter.
func (s *Service) encounter(ctx context.Context, c *model.Character, locationID string) *battle.Session {
	level := c.Level
	enc, err := s.cfg.Encounters.Select(ctx, locationID, &level)
	if err != nil || enc == nil {
		return nil
	}
	sess := battle.Start(c, s.cfg.Stats.Composite(ctx, c), enc.Monster, locationID)
	if err := s.cfg.Battles.Register(ctx, sess); err != nil {
		s.logger.Warn("encounter battle not registered", zap.Int64("char_id", c.ID), zap.Error(err))
		return nil
	}
	return sess
}

// Transition leaves the current location through one of its ends. On a road
// the character must stand on that end: position 0 for direction -1 (start
// neighbour), 100 for +1 (end neighbour). Towns can be left either way.
// The character enters the destination at the end that links back.
func (s *Service) Transition(ctx context.Context, charID int64, direction int) (TransitionResult, error) {
	start := time.Now()
	defer s.lock(charID)()
	var res TransitionResult
	c, err := s.update(ctx, charID, func(c *model.Character) error {
		if err := s.notInBattle(charID); err != nil {
			return err
		}
		if direction != 1 && direction != -1 {
			return apperr.Validationf("direction must be +1 or -1, got %d", direction)
		}
		loc, err := s.cfg.Locations.Get(ctx, c.LocationID)
		if err != nil {
			return err
		}
		target := loc.StartNeighbor
		need := movement.MinPosition
		if direction == 1 {
			target, need = loc.EndNeighbor, movement.MaxPosition
		}
		if loc.Kind == model.LocationRoad && c.Position != need {
			return apperr.InvalidStatef("position %d does not allow leaving %s (need %d)", c.Position, loc.ID, need)
		}
		if target == "" {
			return apperr.InvalidStatef("%s has no neighbour in direction %d", loc.ID, direction)
		}
		dest, err := s.cfg.Locations.Get(ctx, target)
		if err != nil {
			return err
		}
		c.LocationID = dest.ID
		c.Position = entryPosition(dest, loc.ID)
		res = TransitionResult{From: loc.ID, LocationID: dest.ID, Kind: dest.Kind, Position: c.Position}
		return nil
	})
	s.logFailure("transition failed", charID, err)
	s.record(ctx, audit.ActionTransition, c, start, map[string]int{"direction": direction}, res, err)
	if err == nil {
		s.cfg.Hooks.Fire(ctx, hook.AfterTransition, hook.Payload{CharID: charID, LocationID: res.LocationID, Data: res})
	}
	return res, err
}

// entryPosition is where a character arriving from fromID stands in dest.
func entryPosition(dest *model.Location, fromID string) int {
	if dest.Kind == model.LocationRoad && dest.EndNeighbor == fromID && dest.StartNeighbor != fromID {
		return movement.MaxPosition
	}
	return movement.MinPosition
}
