package adventure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/audit"
	"github.com/kasuganosora/roadquest/game/battle"
	"github.com/kasuganosora/roadquest/model"
	"github.com/kasuganosora/roadquest/plugin/hook"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ActionResult is what one battle action produced.
type ActionResult struct {
	BattleID  string            `json:"battle_id"`
	Turn      int               `json:"turn"`
	Character battle.Combatant  `json:"character"`
	Monster   battle.Combatant  `json:"monster"`
	Log       []battle.LogEntry `json:"log"`
	Ended     bool              `json:"ended"`
	Result    battle.Result     `json:"result"`
	Rewards   *Rewards          `json:"rewards,omitempty"`
}

// Rewards is what finalisation committed to the character.
type Rewards struct {
	Exp          int            `json:"exp"`
	SkillExp     map[string]int `json:"skill_exp,omitempty"`
	LeveledUp    []string       `json:"skills_leveled_up,omitempty"`
	LevelsGained int            `json:"levels_gained"`
	Level        int            `json:"level"`
}

// StartBattle rolls the spawn table of locationID (the character's own
// location when empty). It returns nil without error when nothing shows up.
func (s *Service) StartBattle(ctx context.Context, charID int64, locationID string) (*battle.Session, error) {
	start := time.Now()
	defer s.lock(charID)()
	c, err := s.cfg.Characters.Load(ctx, charID)
	if err != nil {
		return nil, err
	}
	sess, err := s.startBattle(ctx, c, locationID)
	s.logFailure("start battle failed", charID, err)
	var resp any
	if sess != nil {
		resp = map[string]string{"battle_id": sess.ID, "monster_id": sess.MonsterID}
	}
	s.record(ctx, audit.ActionStartBattle, c, start, map[string]string{"location_id": locationID}, resp, err)
	return sess, err
}

func (s *Service) startBattle(ctx context.Context, c *model.Character, locationID string) (*battle.Session, error) {
	if locationID == "" {
		locationID = c.LocationID
	}
	if s.cfg.Battles.IsActive(c.ID) {
		return nil, apperr.Conflictf("character %d is already in battle", c.ID)
	}
	if _, err := s.cfg.Locations.Get(ctx, locationID); err != nil {
		return nil, err
	}
	level := c.Level
	enc, err := s.cfg.Encounters.Select(ctx, locationID, &level)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, nil
	}
	sess := battle.Start(c, s.cfg.Stats.Composite(ctx, c), enc.Monster, locationID)
	if err := s.cfg.Battles.Register(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Battle returns a copy of the character's current or last battle.
func (s *Service) Battle(ctx context.Context, charID int64) (*battle.Session, error) {
	if _, err := s.cfg.Characters.Load(ctx, charID); err != nil {
		return nil, err
	}
	var cp battle.Session
	err := s.cfg.Battles.Do(ctx, charID, func(sess *battle.Session) error {
		cp = *sess
		cp.Log = append([]battle.LogEntry(nil), sess.Log...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// PerformAction runs one action in the character's battle. When the battle
// ends its outcome is committed to the character. A settled battle stays
// registered until the next one replaces it, so further actions report
// INVALID_STATE, as does a character without a battle. If the commit failed
// the error comes back together with what the action did, and the next call
// retries the commit.
func (s *Service) PerformAction(ctx context.Context, charID int64, a battle.Action) (ActionResult, error) {
	start := time.Now()
	defer s.lock(charID)()

	var res ActionResult
	if _, err := s.cfg.Characters.Load(ctx, charID); err != nil {
		return res, err
	}
	var sess *battle.Session
	err := s.cfg.Battles.Do(ctx, charID, func(cur *battle.Session) error {
		sess = cur
		var entries []battle.LogEntry
		if !cur.Ended || cur.Committed {
			out, err := s.cfg.Combat.Perform(cur, a)
			if err != nil {
				return err
			}
			entries = out.Entries
		}
		res = ActionResult{
			BattleID:  cur.ID,
			Turn:      cur.Turn,
			Character: cur.Character,
			Monster:   cur.Monster,
			Log:       entries,
			Ended:     cur.Ended,
			Result:    cur.Result,
		}
		if cur.Ended {
			rw, err := s.finalise(ctx, cur)
			if err != nil {
				s.logger.Error("battle outcome not committed",
					zap.Int64("char_id", charID),
					zap.String("battle_id", cur.ID),
					zap.String("result", string(cur.Result)),
					zap.Any("log", entries),
					zap.Error(err))
				return err
			}
			cur.Committed = true
			res.Rewards = rw
		}
		return nil
	})
	s.logFailure("battle action failed", charID, err)

	if s.cfg.Audit != nil {
		e := audit.Entry{
			TraceID:    audit.TraceFrom(ctx),
			CharID:     &charID,
			Action:     audit.ActionBattleAction,
			Request:    a,
			DurationMs: int(time.Since(start).Milliseconds()),
		}
		if sess != nil {
			e.LocationID = sess.LocationID
			e.CharName = sess.Character.Name
		}
		if err != nil {
			e.Error = err.Error()
		} else {
			e.Response = map[string]any{"turn": res.Turn, "ended": res.Ended, "result": res.Result}
		}
		s.cfg.Audit.Log(e)
	}
	if err == nil && res.Rewards != nil {
		s.fireBattleEnd(ctx, charID, sess.LocationID, res)
	}
	return res, err
}

// fireBattleEnd runs the hooks for a committed battle outside the battle lock.
func (s *Service) fireBattleEnd(ctx context.Context, charID int64, locationID string, res ActionResult) {
	p := hook.Payload{CharID: charID, LocationID: locationID, Data: res}
	s.cfg.Hooks.Fire(ctx, hook.AfterBattleEnd, p)
	for _, name := range res.Rewards.LeveledUp {
		s.cfg.Hooks.Fire(ctx, hook.OnSkillLevelUp, hook.Payload{CharID: charID, LocationID: locationID, Data: name})
	}
	if res.Rewards.LevelsGained > 0 {
		s.cfg.Hooks.Fire(ctx, hook.OnLevelUp, hook.Payload{CharID: charID, LocationID: locationID, Data: res.Rewards.Level})
	}
}

// finalise commits an ended battle: resources from the snapshot, experience
// on victory and the skill experience earned in battle.
func (s *Service) finalise(ctx context.Context, sess *battle.Session) (*Rewards, error) {
	rw := &Rewards{Exp: sess.ExpGained(), SkillExp: sess.SkillExp}
	c, err := s.update(ctx, sess.CharacterID, func(c *model.Character) error {
		c.HP = sess.Character.HP
		c.MP = sess.Character.MP
		c.SP = sess.Character.SP
		c.Exp += int64(rw.Exp)
		for name, amount := range sess.SkillExp {
			sk := c.Skill(name)
			if sk == nil {
				continue
			}
			if s.cfg.Skills.GainExp(c, sk, amount) {
				rw.LeveledUp = append(rw.LeveledUp, name)
			}
		}
		rr := s.cfg.Stats.Recompute(ctx, c)
		rw.LevelsGained = rr.LevelsGained
		rw.Level = c.Level
		return nil
	})
	if err != nil {
		return nil, err
	}

	logJSON, err := json.Marshal(sess.Log)
	if err != nil {
		logJSON = nil
	}
	rec := &model.BattleRecord{
		SessionID:  sess.ID,
		CharID:     sess.CharacterID,
		LocationID: sess.LocationID,
		MonsterID:  sess.MonsterID,
		Result:     string(sess.Result),
		Turns:      sess.Turn,
		ExpGained:  rw.Exp,
		Log:        datatypes.JSON(logJSON),
	}
	if err := s.cfg.Characters.SaveBattleRecord(ctx, rec); err != nil {
		s.logger.Error("battle record not saved",
			zap.Int64("char_id", sess.CharacterID), zap.String("battle_id", sess.ID), zap.Error(err))
	}
	s.logger.Info("battle finalised",
		zap.Int64("char_id", sess.CharacterID),
		zap.String("battle_id", sess.ID),
		zap.String("monster_id", sess.MonsterID),
		zap.String("result", string(sess.Result)),
		zap.Int("exp", rw.Exp))
	s.record(ctx, audit.ActionBattleEnd, c, time.Now(), map[string]string{"battle_id": sess.ID}, rw, nil)
	return rw, nil
}

// BattleHistory returns the most recent finalised battles of the character.
func (s *Service) BattleHistory(ctx context.Context, charID int64, limit int) ([]model.BattleRecord, error) {
	if _, err := s.cfg.Characters.Load(ctx, charID); err != nil {
		return nil, err
	}
	return s.cfg.Characters.BattleRecords(ctx, charID, limit)
}
