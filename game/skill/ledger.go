// Package skill tracks learned skills: learning, using, experience and the
// buffs skills grant.
package skill

import (
	"fmt"
	"strings"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/game/effect"
	"github.com/kasuganosora/roadquest/model"
	"go.uber.org/zap"
)

// DefaultExpPerUse is the skill experience granted by one use.
const DefaultExpPerUse = 10

// UseResult reports the outcome of a successful skill use.
type UseResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	LeveledUp bool   `json:"leveled_up"`
	Level     int    `json:"level"`
	SPLeft    int    `json:"sp_left"`
}

// Ledger mutates a character's skill set. It holds no per-character state.
type Ledger struct {
	expPerUse int
	logger    *zap.Logger
}

// NewLedger creates a Ledger. expPerUse <= 0 uses DefaultExpPerUse.
func NewLedger(expPerUse int, logger *zap.Logger) *Ledger {
	if expPerUse <= 0 {
		expPerUse = DefaultExpPerUse
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{expPerUse: expPerUse, logger: logger}
}

// ExpPerUse returns the experience granted per use.
func (l *Ledger) ExpPerUse() int { return l.expPerUse }

// Learn adds a level-1 skill. Learning a skill the character already has
// returns the existing one unchanged, with created=false.
func (l *Ledger) Learn(c *model.Character, typ model.SkillType, name string, effects []string, spCost, duration int) (*model.CharSkill, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, apperr.Validationf("skill name is required")
	}
	if existing := c.Skill(name); existing != nil {
		return existing, false, nil
	}
	if !typ.Valid() {
		return nil, false, apperr.Validationf("unknown skill type %q", typ)
	}
	if spCost < 0 || duration < 0 {
		return nil, false, apperr.Validationf("sp_cost and duration must be non-negative")
	}
	c.Skills = append(c.Skills, model.CharSkill{
		CharID:   c.ID,
		Name:     name,
		Type:     typ,
		Level:    1,
		SPCost:   spCost,
		Duration: duration,
		Active:   true,
		Effects:  append([]string(nil), effects...),
	})
	c.SkillVersion++
	for _, e := range effect.ParseAll(effects) {
		if u, ok := e.(effect.Unknown); ok {
			l.logger.Debug("skill has unrecognised effect", zap.String("skill", name), zap.String("effect", u.Raw))
		}
	}
	return &c.Skills[len(c.Skills)-1], true, nil
}

// SetActive enables or disables a learned skill.
func (l *Ledger) SetActive(c *model.Character, name string, active bool) error {
	sk := c.Skill(name)
	if sk == nil {
		return apperr.NotLearnedf("skill %q not learned", name)
	}
	if sk.Active != active {
		sk.Active = active
		c.SkillVersion++
	}
	return nil
}

// CheckUsable returns the skill if it can be cast with sp available.
func CheckUsable(c *model.Character, name string, sp int) (*model.CharSkill, error) {
	sk := c.Skill(name)
	if err := Usable(sk, name, sp); err != nil {
		return nil, err
	}
	return sk, nil
}

// Usable validates a skill lookup result. Checks run in order: learned
// (sk != nil), active, affordable.
func Usable(sk *model.CharSkill, name string, sp int) error {
	if sk == nil {
		return apperr.NotLearnedf("skill %q not learned", name)
	}
	if !sk.Active {
		return apperr.Disabledf("skill %q is disabled", name)
	}
	if sp < sk.SPCost {
		return apperr.InsufficientResourcef("skill %q needs %d sp, have %d", name, sk.SPCost, sp).
			WithMeta("sp_cost", sk.SPCost).WithMeta("sp", sp)
	}
	return nil
}

// Use casts a skill outside battle: sp is deducted, restores apply at once,
// dice effects become a travel buff, and the skill gains experience. Combat
// only effects (damage, stat boosts) have nothing to act on here.
func (l *Ledger) Use(c *model.Character, name string) (UseResult, error) {
	sk, err := CheckUsable(c, name, c.SP)
	if err != nil {
		return UseResult{Message: apperr.GetMessage(err)}, err
	}
	c.SP -= sk.SPCost

	effects := effect.ParseAll(sk.Effects)
	tot := effect.Resolve(effects)
	var parts []string
	for _, res := range []effect.Resource{effect.HP, effect.MP, effect.SP} {
		if amt := tot.Restore[res]; amt > 0 {
			restore(c, res, amt)
			parts = append(parts, fmt.Sprintf("restored %d %s", amt, res))
		}
	}
	if tot.DiceCount != 0 || tot.DiceFaces != 0 {
		AddTravelBuff(c, sk.Name, effects, sk.Duration)
		parts = append(parts, fmt.Sprintf("movement boosted for %d moves", max(sk.Duration, 1)))
	}
	if len(tot.Unknown) > 0 {
		l.logger.Debug("ignoring unrecognised effects",
			zap.Int64("char_id", c.ID), zap.String("skill", sk.Name), zap.Strings("effects", tot.Unknown))
	}

	leveled := l.GainExp(c, sk, l.expPerUse)
	msg := sk.Name + " used"
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, ", ")
	}
	if leveled {
		msg += fmt.Sprintf("; %s reached level %d", sk.Name, sk.Level)
	}
	return UseResult{Success: true, Message: msg, LeveledUp: leveled, Level: sk.Level, SPLeft: c.SP}, nil
}

// GainExp adds experience to sk and reports whether its level rose. A level
// change bumps the character's skill version.
func (l *Ledger) GainExp(c *model.Character, sk *model.CharSkill, amount int) bool {
	if amount <= 0 {
		return false
	}
	sk.Exp += amount
	lv := max(LevelForExp(sk.Exp), sk.Level)
	if lv == sk.Level {
		return false
	}
	sk.Level = lv
	c.SkillVersion++
	l.logger.Info("skill leveled up",
		zap.Int64("char_id", c.ID), zap.String("skill", sk.Name), zap.Int("level", lv))
	return true
}

func restore(c *model.Character, res effect.Resource, amount int) {
	switch res {
	case effect.HP:
		c.HP = min(c.HP+amount, c.MaxHP)
	case effect.MP:
		c.MP = min(c.MP+amount, c.MaxMP)
	case effect.SP:
		c.SP = min(c.SP+amount, c.MaxSP)
	}
}
