// Package stats derives composite battle stats from a character's level,
// learned skills and equipment.
package stats

import (
	"github.com/kasuganosora/roadquest/game/item"
	"github.com/kasuganosora/roadquest/model"
)

// Stats is one set of combat stats. It is used for base values, bonuses and
// the composite alike.
type Stats struct {
	Attack      int `json:"attack"`
	Defense     int `json:"defense"`
	Agility     int `json:"agility"`
	Evasion     int `json:"evasion"`
	MagicAttack int `json:"magic_attack"`
	Accuracy    int `json:"accuracy"`
	MaxHP       int `json:"max_hp"`
	MaxSP       int `json:"max_sp"`
	MaxMP       int `json:"max_mp"`
}

// Add returns the dimension-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Attack:      s.Attack + o.Attack,
		Defense:     s.Defense + o.Defense,
		Agility:     s.Agility + o.Agility,
		Evasion:     s.Evasion + o.Evasion,
		MagicAttack: s.MagicAttack + o.MagicAttack,
		Accuracy:    s.Accuracy + o.Accuracy,
		MaxHP:       s.MaxHP + o.MaxHP,
		MaxSP:       s.MaxSP + o.MaxSP,
		MaxMP:       s.MaxMP + o.MaxMP,
	}
}

// Base returns the level-derived stats. Levels below 1 count as 1.
func Base(level int) Stats {
	n := max(level, 1) - 1
	return Stats{
		Attack:      10 + 2*n,
		Defense:     8 + 2*n,
		Agility:     12 + 2*n,
		Evasion:     15 + 2*n,
		MagicAttack: 8 + 2*n,
		Accuracy:    85 + n,
		MaxHP:       100 + 10*n,
		MaxSP:       50 + 5*n,
		MaxMP:       60 + 8*n,
	}
}

// SkillBonus sums the bonus of every active skill.
func SkillBonus(skills []model.CharSkill) Stats {
	var b Stats
	for _, sk := range skills {
		if !sk.Active {
			continue
		}
		k := sk.Level
		b.MaxHP += 2 * k
		b.MaxSP += k
		b.MaxMP += k
		switch sk.Type {
		case model.SkillCombat:
			b.Attack += 2 * k
			b.Defense += k
			b.Accuracy += k
		case model.SkillMovement:
			b.Agility += 2 * k
			b.Evasion += k
		case model.SkillReconnaissance:
			b.Agility += k
			b.Evasion += k
		case model.SkillMagic:
			b.MagicAttack += 2 * k
			b.Accuracy += k
		case model.SkillDefense:
			b.Defense += k
			b.Evasion += k
		}
	}
	return b
}

// FromEquipment converts equipment deltas into Stats.
func FromEquipment(t item.Totals) Stats {
	return Stats{
		Attack:   t.Attack,
		Defense:  t.Defense,
		Agility:  t.Agility,
		Evasion:  t.Evasion,
		Accuracy: t.Accuracy,
		MaxHP:    t.HP,
		MaxMP:    t.MP,
	}
}

// LevelFromSkills derives the character level from the sum of all skill
// levels, active or not.
func LevelFromSkills(skills []model.CharSkill) int {
	sum := 0
	for _, sk := range skills {
		sum += sk.Level
	}
	return max(1, sum/10+1)
}
