package adventure

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/audit"
	"github.com/kasuganosora/roadquest/game/item"
	"github.com/kasuganosora/roadquest/game/stats"
	"github.com/kasuganosora/roadquest/model"
)

const maxNameLen = 32

// CreateCharacter creates a level 1 character at the start location with
// full resources.
func (s *Service) CreateCharacter(ctx context.Context, name string) (*model.Character, error) {
	start := time.Now()
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return nil, apperr.Validationf("name must be 1-%d characters", maxNameLen)
	}
	if _, err := s.cfg.Locations.Get(ctx, s.cfg.StartLocationID); err != nil {
		return nil, apperr.Wrapf(err, "start location %q", s.cfg.StartLocationID)
	}
	base := stats.Base(1)
	c := &model.Character{
		Name:       name,
		Level:      1,
		HP:         base.MaxHP,
		MaxHP:      base.MaxHP,
		MP:         base.MaxMP,
		MaxMP:      base.MaxMP,
		SP:         base.MaxSP,
		MaxSP:      base.MaxSP,
		LocationID: s.cfg.StartLocationID,
	}
	err := s.cfg.Characters.Create(ctx, c)
	s.logFailure("create character failed", 0, err)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionCreateCharacter, c, start, map[string]string{"name": name}, nil, nil)
	return c, nil
}

// Character returns the character aggregate.
func (s *Service) Character(ctx context.Context, charID int64) (*model.Character, error) {
	return s.cfg.Characters.Load(ctx, charID)
}

// TotalStats returns the composite stats of the character with its equipment.
func (s *Service) TotalStats(ctx context.Context, charID int64) (stats.Composite, error) {
	c, err := s.cfg.Characters.Load(ctx, charID)
	if err != nil {
		return stats.Composite{}, err
	}
	return s.cfg.Stats.Composite(ctx, c), nil
}

// Equip equips inventory row invID into slot and returns the new composite.
func (s *Service) Equip(ctx context.Context, charID int64, slot model.Slot, invID int64) (stats.Composite, error) {
	start := time.Now()
	defer s.lock(charID)()
	var comp stats.Composite
	c, err := s.update(ctx, charID, func(c *model.Character) error {
		if err := s.notInBattle(charID); err != nil {
			return err
		}
		if _, err := item.Equip(c, slot, invID); err != nil {
			return err
		}
		comp = s.cfg.Stats.Recompute(ctx, c).Composite
		return nil
	})
	s.logFailure("equip failed", charID, err)
	s.record(ctx, audit.ActionEquip, c, start, map[string]any{"slot": slot, "inventory_id": invID}, comp.Total, err)
	return comp, err
}

// Unequip empties slot and returns the new composite.
func (s *Service) Unequip(ctx context.Context, charID int64, slot model.Slot) (stats.Composite, error) {
	start := time.Now()
	defer s.lock(charID)()
	var comp stats.Composite
	c, err := s.update(ctx, charID, func(c *model.Character) error {
		if err := s.notInBattle(charID); err != nil {
			return err
		}
		if _, err := item.Unequip(c, slot); err != nil {
			return err
		}
		comp = s.cfg.Stats.Recompute(ctx, c).Composite
		return nil
	})
	s.logFailure("unequip failed", charID, err)
	s.record(ctx, audit.ActionUnequip, c, start, map[string]any{"slot": slot}, comp.Total, err)
	return comp, err
}

// GrantItem puts a catalog item into the character's bag.
func (s *Service) GrantItem(ctx context.Context, charID int64, itemID string) (*model.Inventory, error) {
	start := time.Now()
	defer s.lock(charID)()
	c, err := s.cfg.Characters.Load(ctx, charID)
	if err != nil {
		return nil, err
	}
	inv, err := s.cfg.Inventory.AddItem(ctx, charID, itemID)
	s.record(ctx, audit.ActionGrantItem, c, start, map[string]string{"item_id": itemID}, inv, err)
	return inv, err
}
