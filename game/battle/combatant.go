package battle

import (
	"github.com/kasuganosora/roadquest/game/effect"
	"github.com/kasuganosora/roadquest/game/skill"
	"github.com/kasuganosora/roadquest/game/stats"
	"github.com/kasuganosora/roadquest/model"
)

// Combatant is a battle-local snapshot of one side. Mutating it never
// touches the persisted character or monster.
type Combatant struct {
	Name        string         `json:"name"`
	HP          int            `json:"hp"`
	MaxHP       int            `json:"max_hp"`
	MP          int            `json:"mp"`
	MaxMP       int            `json:"max_mp"`
	SP          int            `json:"sp"`
	MaxSP       int            `json:"max_sp"`
	Attack      int            `json:"attack"`
	Defense     int            `json:"defense"`
	Agility     int            `json:"agility"`
	Evasion     int            `json:"evasion"`
	Accuracy    int            `json:"accuracy"`
	MagicAttack int            `json:"magic_attack"`
	Buffs       skill.BuffList `json:"buffs"`
}

// CharacterCombatant snapshots a character with its composite stats.
func CharacterCombatant(c *model.Character, comp stats.Composite) Combatant {
	t := comp.Total
	return Combatant{
		Name: c.Name,
		HP:   c.HP, MaxHP: t.MaxHP,
		MP: c.MP, MaxMP: t.MaxMP,
		SP: c.SP, MaxSP: t.MaxSP,
		Attack:      t.Attack,
		Defense:     t.Defense,
		Agility:     t.Agility,
		Evasion:     t.Evasion,
		Accuracy:    t.Accuracy,
		MagicAttack: t.MagicAttack,
	}
}

// MonsterCombatant snapshots a monster. A zero max_hp falls back to hp.
func MonsterCombatant(m *model.Monster) Combatant {
	maxHP := m.MaxHP
	if maxHP <= 0 {
		maxHP = m.HP
	}
	return Combatant{
		Name:     m.Name,
		HP:       m.HP,
		MaxHP:    maxHP,
		Attack:   m.Attack,
		Defense:  m.Defense,
		Agility:  m.Agility,
		Evasion:  m.Evasion,
		Accuracy: m.Accuracy,
	}
}

// Stat returns a stat including active buffs.
func (c *Combatant) Stat(st effect.Stat) int {
	var base int
	switch st {
	case effect.StatAttack:
		base = c.Attack
	case effect.StatDefense:
		base = c.Defense
	case effect.StatAgility:
		base = c.Agility
	case effect.StatEvasion:
		base = c.Evasion
	case effect.StatAccuracy:
		base = c.Accuracy
	case effect.StatMagicAttack:
		base = c.MagicAttack
	}
	return base + c.Buffs.Total()[st]
}

func (c *Combatant) Alive() bool { return c.HP > 0 }

// TakeDamage lowers hp, floored at 0, and returns the damage dealt.
func (c *Combatant) TakeDamage(n int) int {
	dealt := min(max(n, 0), c.HP)
	c.HP -= dealt
	return dealt
}

// Restore refills a resource up to its max and returns the amount gained.
func (c *Combatant) Restore(res effect.Resource, n int) int {
	cur, maxv := &c.HP, c.MaxHP
	switch res {
	case effect.MP:
		cur, maxv = &c.MP, c.MaxMP
	case effect.SP:
		cur, maxv = &c.SP, c.MaxSP
	}
	before := *cur
	*cur = min(*cur+max(n, 0), maxv)
	return *cur - before
}
