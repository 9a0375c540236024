package skill

import (
	"github.com/kasuganosora/roadquest/game/effect"
)

// Buff is a turn-counted stat boost on a combatant.
type Buff struct {
	Name      string              `json:"name"`
	Boosts    map[effect.Stat]int `json:"boosts"`
	TurnsLeft int                 `json:"turns_left"`
}

// BuffList holds the buffs of one combatant for one battle.
type BuffList struct {
	Buffs []*Buff `json:"buffs"`
}

// Add adds a buff or refreshes an existing one with the same name. Turns
// below 1 last for the current turn only.
func (bl *BuffList) Add(name string, boosts map[effect.Stat]int, turns int) *Buff {
	turns = max(turns, 1)
	if b := bl.Get(name); b != nil {
		b.Boosts = boosts
		b.TurnsLeft = max(b.TurnsLeft, turns)
		return b
	}
	b := &Buff{Name: name, Boosts: boosts, TurnsLeft: turns}
	bl.Buffs = append(bl.Buffs, b)
	return b
}

// Get returns the buff with name, or nil.
func (bl *BuffList) Get(name string) *Buff {
	for _, b := range bl.Buffs {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Total sums the boosts of every active buff.
func (bl *BuffList) Total() map[effect.Stat]int {
	out := make(map[effect.Stat]int)
	for _, b := range bl.Buffs {
		for st, v := range b.Boosts {
			out[st] += v
		}
	}
	return out
}

// Tick ends one turn: every buff loses a turn and expired buffs are removed.
// Returns the names of the buffs that expired.
func (bl *BuffList) Tick() []string {
	var expired []string
	kept := bl.Buffs[:0]
	for _, b := range bl.Buffs {
		b.TurnsLeft--
		if b.TurnsLeft <= 0 {
			expired = append(expired, b.Name)
			continue
		}
		kept = append(kept, b)
	}
	bl.Buffs = kept
	return expired
}
