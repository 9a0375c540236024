package skill

import (
	"github.com/kasuganosora/roadquest/game/effect"
	"github.com/kasuganosora/roadquest/model"
	"gorm.io/datatypes"
)

// AddTravelBuff stores the dice effects of a skill as a buff lasting moves
// moves (at least one). Re-casting refreshes the remaining count.
func AddTravelBuff(c *model.Character, skillName string, effects []effect.Effect, moves int) {
	moves = max(moves, 1)
	kept := c.TravelBuffs[:0:0]
	for _, b := range c.TravelBuffs {
		if b.Skill != skillName {
			kept = append(kept, b)
		}
	}
	for _, e := range effects {
		switch e.(type) {
		case effect.DiceCount, effect.DiceFaces:
			kept = append(kept, model.TravelBuff{Skill: skillName, Effect: e.String(), Remaining: moves})
		}
	}
	c.TravelBuffs = datatypes.JSONSlice[model.TravelBuff](kept)
}

// TravelEffects returns the effects of every travel buff still running.
func TravelEffects(c *model.Character) []effect.Effect {
	out := make([]effect.Effect, 0, len(c.TravelBuffs))
	for _, b := range c.TravelBuffs {
		if b.Remaining > 0 {
			out = append(out, effect.Parse(b.Effect))
		}
	}
	return out
}

// TickTravel consumes one move from every travel buff and drops spent ones.
func TickTravel(c *model.Character) {
	kept := c.TravelBuffs[:0:0]
	for _, b := range c.TravelBuffs {
		b.Remaining--
		if b.Remaining > 0 {
			kept = append(kept, b)
		}
	}
	c.TravelBuffs = datatypes.JSONSlice[model.TravelBuff](kept)
}
