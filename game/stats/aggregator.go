package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kasuganosora/roadquest/cache"
	"github.com/kasuganosora/roadquest/game/effect"
	"github.com/kasuganosora/roadquest/game/item"
	"github.com/kasuganosora/roadquest/model"
	"go.uber.org/zap"
)

// Level-up rewards, granted per level gained.
const (
	LevelUpHP = 20
	LevelUpSP = 10
	LevelUpMP = 15
)

// Composite is the fully aggregated stat set used in combat.
type Composite struct {
	Level     int             `json:"level"`
	Base      Stats           `json:"base"`
	Skill     Stats           `json:"skill"`
	Equipment Stats           `json:"equipment"`
	Total     Stats           `json:"total"`
	Effects   []effect.Effect `json:"-"`
}

// EffectTags returns the equipment effects in storage form.
func (c Composite) EffectTags() []string {
	return effect.Tags(c.Effects)
}

// RecomputeResult reports what Recompute changed.
type RecomputeResult struct {
	Composite    Composite `json:"composite"`
	LevelsGained int       `json:"levels_gained"`
}

// Aggregator computes composite stats, memoising the skill bonus per
// (character, skill version).
type Aggregator struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewAggregator creates an Aggregator. A nil cache disables memoisation.
func NewAggregator(c cache.Cache, ttl time.Duration, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{cache: c, ttl: ttl, logger: logger}
}

func bonusKey(c *model.Character) string {
	return fmt.Sprintf("char:%d:skill_bonus:v%d", c.ID, c.SkillVersion)
}

// SkillBonus returns the memoised skill bonus for c. Cache failures fall
// back to computing it directly.
func (a *Aggregator) SkillBonus(ctx context.Context, c *model.Character) Stats {
	if a.cache == nil || c.ID == 0 {
		return SkillBonus(c.Skills)
	}
	key := bonusKey(c)
	raw, err := a.cache.Get(ctx, key)
	if err == nil {
		var b Stats
		if err := json.Unmarshal([]byte(raw), &b); err == nil {
			return b
		}
		a.logger.Warn("corrupt skill bonus cache entry", zap.String("key", key))
	} else if !cache.IsMiss(err) {
		a.logger.Warn("skill bonus cache read failed", zap.Int64("char_id", c.ID), zap.Error(err))
	}

	b := SkillBonus(c.Skills)
	data, _ := json.Marshal(b)
	if err := a.cache.Set(ctx, key, string(data), a.ttl); err != nil {
		a.logger.Warn("skill bonus cache write failed", zap.Int64("char_id", c.ID), zap.Error(err))
	}
	return b
}

// Invalidate drops the memoised bonus for c's current skill version.
func (a *Aggregator) Invalidate(ctx context.Context, c *model.Character) {
	if a.cache == nil || c.ID == 0 {
		return
	}
	if err := a.cache.Del(ctx, bonusKey(c)); err != nil {
		a.logger.Warn("skill bonus cache delete failed", zap.Int64("char_id", c.ID), zap.Error(err))
	}
}

// Composite computes base + skill + equipment for c at its current level.
func (a *Aggregator) Composite(ctx context.Context, c *model.Character) Composite {
	eq := item.TotalStats(c)
	comp := Composite{
		Level:     max(c.Level, 1),
		Base:      Base(c.Level),
		Skill:     a.SkillBonus(ctx, c),
		Equipment: FromEquipment(eq),
		Effects:   eq.Effects,
	}
	comp.Total = comp.Base.Add(comp.Skill).Add(comp.Equipment)
	return comp
}

// Recompute re-derives c's level and max resources. A raised max carries the
// current value forward by the same delta; a lowered max only clamps. Each
// level gained then restores LevelUpHP/SP/MP, clamped to the new max.
func (a *Aggregator) Recompute(ctx context.Context, c *model.Character) RecomputeResult {
	oldHP, oldSP, oldMP := c.MaxHP, c.MaxSP, c.MaxMP
	newLevel := LevelFromSkills(c.Skills)
	gained := max(newLevel-c.Level, 0)
	c.Level = newLevel

	comp := a.Composite(ctx, c)
	c.MaxHP, c.HP = carry(c.HP, oldHP, comp.Total.MaxHP)
	c.MaxSP, c.SP = carry(c.SP, oldSP, comp.Total.MaxSP)
	c.MaxMP, c.MP = carry(c.MP, oldMP, comp.Total.MaxMP)

	if gained > 0 {
		c.HP += LevelUpHP * gained
		c.SP += LevelUpSP * gained
		c.MP += LevelUpMP * gained
		a.logger.Info("character leveled up",
			zap.Int64("char_id", c.ID), zap.Int("level", c.Level), zap.Int("gained", gained))
	}
	c.ClampResources()
	return RecomputeResult{Composite: comp, LevelsGained: gained}
}

func carry(cur, oldMax, newMax int) (int, int) {
	if newMax > oldMax {
		cur += newMax - oldMax
	}
	return newMax, min(max(cur, 0), max(newMax, 0))
}
