package item

import (
	"github.com/kasuganosora/roadquest/game/effect"
	"github.com/kasuganosora/roadquest/model"
)

// Totals is the summed contribution of all equipped items.
type Totals struct {
	Attack   int             `json:"attack"`
	Defense  int             `json:"defense"`
	Agility  int             `json:"agility"`
	Evasion  int             `json:"evasion"`
	Accuracy int             `json:"accuracy"`
	HP       int             `json:"hp"`
	MP       int             `json:"mp"`
	Effects  []effect.Effect `json:"-"`
}

// EffectTags returns the collected effects in storage form.
func (t Totals) EffectTags() []string {
	return effect.Tags(t.Effects)
}

// TotalStats folds every equipped item: numeric deltas add, effects are
// collected with flags deduplicated.
func TotalStats(c *model.Character) Totals {
	var t Totals
	var lists [][]effect.Effect
	for _, slot := range model.Slots {
		inv := c.Equipped(slot)
		if inv == nil || inv.Item == nil {
			continue
		}
		it := inv.Item
		t.Attack += it.Attack
		t.Defense += it.Defense
		t.Agility += it.Agility
		t.Evasion += it.Evasion
		t.Accuracy += it.Accuracy
		t.HP += it.HP
		t.MP += it.MP
		lists = append(lists, effect.ParseAll(it.Effects))
	}
	t.Effects = effect.Union(lists...)
	return t
}
