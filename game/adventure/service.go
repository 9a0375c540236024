// Package adventure is the application layer over the game engines. Each
// operation loads the character aggregate, runs one engine step and saves the
// result, serialised per character.
package adventure

import (
	"context"
	"sync"
	"time"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/audit"
	"github.com/kasuganosora/roadquest/game/battle"
	"github.com/kasuganosora/roadquest/game/encounter"
	"github.com/kasuganosora/roadquest/game/item"
	"github.com/kasuganosora/roadquest/game/movement"
	"github.com/kasuganosora/roadquest/game/player"
	"github.com/kasuganosora/roadquest/game/skill"
	"github.com/kasuganosora/roadquest/game/stats"
	"github.com/kasuganosora/roadquest/model"
	"github.com/kasuganosora/roadquest/plugin/hook"
	"github.com/kasuganosora/roadquest/resource"
	"github.com/kasuganosora/roadquest/store"
	"go.uber.org/zap"
)

// Auditor receives one entry per completed operation. *audit.Service
// satisfies it.
type Auditor interface {
	Log(entry audit.Entry)
}

// SkillCatalog looks up learnable skill templates. *resource.Loader
// satisfies it.
type SkillCatalog interface {
	SkillByName(name string) *resource.SkillTemplate
}

// Config wires the engines the service drives.
type Config struct {
	Characters      *store.CharacterRepo
	Inventory       *item.InventoryService
	Locations       store.Source[model.Location]
	SkillCatalog    SkillCatalog
	Stats           *stats.Aggregator
	Skills          *skill.Ledger
	Movement        *movement.Engine
	Encounters      *encounter.Selector
	Battles         *player.SessionManager
	Combat          *battle.Engine
	Audit           Auditor
	Hooks           *hook.Center // fired under the per-character lock; hooks must not call back in
	StartLocationID string
	Logger          *zap.Logger
}

// Validate reports the first missing dependency.
func (c Config) Validate() error {
	switch {
	case c.Characters == nil:
		return apperr.Validationf("characters repository is required")
	case c.Inventory == nil:
		return apperr.Validationf("inventory service is required")
	case c.Locations == nil:
		return apperr.Validationf("location source is required")
	case c.Stats == nil:
		return apperr.Validationf("stat aggregator is required")
	case c.Skills == nil:
		return apperr.Validationf("skill ledger is required")
	case c.Movement == nil:
		return apperr.Validationf("movement engine is required")
	case c.Encounters == nil:
		return apperr.Validationf("encounter selector is required")
	case c.Battles == nil:
		return apperr.Validationf("battle registry is required")
	case c.Combat == nil:
		return apperr.Validationf("battle engine is required")
	}
	return nil
}

// Service exposes the game operations.
type Service struct {
	cfg    Config
	locks  sync.Map // charID → *sync.Mutex
	logger *zap.Logger
}

// New creates a Service from cfg.
func New(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Service{cfg: cfg, logger: cfg.Logger}, nil
}

// lock serialises operations on one character.
func (s *Service) lock(charID int64) func() {
	v, _ := s.locks.LoadOrStore(charID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// update loads the character, runs fn and saves the character if fn succeeds.
func (s *Service) update(ctx context.Context, charID int64, fn func(c *model.Character) error) (*model.Character, error) {
	c, err := s.cfg.Characters.Load(ctx, charID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return c, err
	}
	if err := s.cfg.Characters.Save(ctx, c); err != nil {
		return c, err
	}
	return c, nil
}

func (s *Service) record(ctx context.Context, action string, c *model.Character, start time.Time, req, resp any, err error) {
	if s.cfg.Audit == nil {
		return
	}
	e := audit.Entry{
		TraceID:    audit.TraceFrom(ctx),
		Action:     action,
		Request:    req,
		Response:   resp,
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if c != nil {
		id := c.ID
		e.CharID = &id
		e.CharName = c.Name
		e.LocationID = c.LocationID
	}
	if err != nil {
		e.Error = err.Error()
		e.Response = nil
	}
	s.cfg.Audit.Log(e)
}

// logFailure logs errors the caller did not cause.
func (s *Service) logFailure(msg string, charID int64, err error) {
	if apperr.GetCode(err) == apperr.CodeInternal {
		s.logger.Error(msg, zap.Int64("char_id", charID), zap.Error(err))
	}
}

func (s *Service) notInBattle(charID int64) error {
	if s.cfg.Battles.IsActive(charID) {
		return apperr.InvalidStatef("character %d is in battle", charID)
	}
	return nil
}
