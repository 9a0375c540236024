package adventure

import (
	"context"
	"time"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/audit"
	"github.com/kasuganosora/roadquest/game/skill"
	"github.com/kasuganosora/roadquest/model"
	"github.com/kasuganosora/roadquest/plugin/hook"
)

// LearnRequest describes a skill to learn. When only Name is set the skill
// catalog supplies the rest.
type LearnRequest struct {
	Type     model.SkillType `json:"type"`
	Name     string          `json:"name"`
	Effects  []string        `json:"effects"`
	SPCost   int             `json:"sp_cost"`
	Duration int             `json:"duration"`
}

// LearnResult is the learned skill and whether it is new.
type LearnResult struct {
	Skill   model.CharSkill `json:"skill"`
	Created bool            `json:"created"`
	Level   int             `json:"level"`
}

// UseSkill casts a skill outside battle.
func (s *Service) UseSkill(ctx context.Context, charID int64, name string) (skill.UseResult, error) {
	start := time.Now()
	defer s.lock(charID)()
	var res skill.UseResult
	c, err := s.update(ctx, charID, func(c *model.Character) error {
		if err := s.notInBattle(charID); err != nil {
			return err
		}
		var err error
		res, err = s.cfg.Skills.Use(c, name)
		if err != nil {
			return err
		}
		if res.LeveledUp {
			s.cfg.Stats.Recompute(ctx, c)
			res.SPLeft = c.SP
		}
		return nil
	})
	if err != nil {
		res = skill.UseResult{Message: apperr.GetMessage(err)}
	}
	s.logFailure("use skill failed", charID, err)
	s.record(ctx, audit.ActionUseSkill, c, start, map[string]string{"name": name}, res, err)
	if err == nil && res.LeveledUp {
		s.cfg.Hooks.Fire(ctx, hook.OnSkillLevelUp, hook.Payload{CharID: charID, LocationID: c.LocationID, Data: name})
	}
	return res, err
}

// LearnSkill teaches the character a skill. Learning a known skill is a no-op.
func (s *Service) LearnSkill(ctx context.Context, charID int64, req LearnRequest) (LearnResult, error) {
	start := time.Now()
	if req.Type == "" && s.cfg.SkillCatalog != nil {
		if tpl := s.cfg.SkillCatalog.SkillByName(req.Name); tpl != nil {
			req = LearnRequest{Type: tpl.Type, Name: tpl.Name, Effects: tpl.Effects, SPCost: tpl.SPCost, Duration: tpl.Duration}
		}
	}
	defer s.lock(charID)()
	var res LearnResult
	c, err := s.update(ctx, charID, func(c *model.Character) error {
		sk, created, err := s.cfg.Skills.Learn(c, req.Type, req.Name, req.Effects, req.SPCost, req.Duration)
		if err != nil {
			return err
		}
		res = LearnResult{Skill: *sk, Created: created}
		if created {
			s.cfg.Stats.Recompute(ctx, c)
		}
		res.Level = c.Level
		return nil
	})
	s.logFailure("learn skill failed", charID, err)
	s.record(ctx, audit.ActionLearnSkill, c, start, req, res, err)
	return res, err
}

// SetSkillActive enables or disables a learned skill and returns the new
// character level.
func (s *Service) SetSkillActive(ctx context.Context, charID int64, name string, active bool) (int, error) {
	start := time.Now()
	defer s.lock(charID)()
	c, err := s.update(ctx, charID, func(c *model.Character) error {
		if err := s.notInBattle(charID); err != nil {
			return err
		}
		if err := s.cfg.Skills.SetActive(c, name, active); err != nil {
			return err
		}
		s.cfg.Stats.Recompute(ctx, c)
		return nil
	})
	s.logFailure("toggle skill failed", charID, err)
	s.record(ctx, audit.ActionToggleSkill, c, start, map[string]any{"name": name, "active": active}, nil, err)
	if err != nil {
		return 0, err
	}
	return c.Level, nil
}
