// Package effect models item and skill effects as a closed set of typed
// variants. Storage keeps the tag form ("dice_count_plus1", "hp+20"); Parse and
// String convert between the two.
package effect

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Effect is implemented only by the variants in this package.
type Effect interface {
	String() string
	sealed()
}

// Resource is a spendable character pool.
type Resource string

const (
	HP Resource = "hp"
	MP Resource = "mp"
	SP Resource = "sp"
)

// Stat is a combat stat a boost can target.
type Stat string

const (
	StatAttack      Stat = "attack"
	StatDefense     Stat = "defense"
	StatAgility     Stat = "agility"
	StatEvasion     Stat = "evasion"
	StatAccuracy    Stat = "accuracy"
	StatMagicAttack Stat = "magic_attack"
)

var statAliases = map[string]Stat{
	"atk": StatAttack, "attack": StatAttack,
	"def": StatDefense, "defense": StatDefense,
	"agi": StatAgility, "agility": StatAgility,
	"eva": StatEvasion, "evasion": StatEvasion,
	"acc": StatAccuracy, "accuracy": StatAccuracy,
	"mat": StatMagicAttack, "magic_attack": StatMagicAttack,
}

// DiceCount adds dice to a movement roll.
type DiceCount struct{ Delta int }

// DiceFaces adds faces to every movement die.
type DiceFaces struct{ Delta int }

// Restore refills a resource, clamped to its max.
type Restore struct {
	Resource Resource
	Amount   int
}

// Damage deals a fixed amount to the opposing combatant.
type Damage struct{ Amount int }

// StatBoost raises a combat stat while active.
type StatBoost struct {
	Stat   Stat
	Amount int
}

// Flag is a boolean marker such as "status_immunity".
type Flag struct{ Name string }

// Unknown keeps an unrecognised tag; it has no effect.
type Unknown struct{ Raw string }

func (DiceCount) sealed() {}
func (DiceFaces) sealed() {}
func (Restore) sealed()   {}
func (Damage) sealed()    {}
func (StatBoost) sealed() {}
func (Flag) sealed()      {}
func (Unknown) sealed()   {}

func (e DiceCount) String() string { return fmt.Sprintf("dice_count_plus%d", e.Delta) }
func (e DiceFaces) String() string { return fmt.Sprintf("dice_face_plus%d", e.Delta) }
func (e Restore) String() string   { return fmt.Sprintf("%s+%d", e.Resource, e.Amount) }
func (e Damage) String() string    { return fmt.Sprintf("damage+%d", e.Amount) }
func (e StatBoost) String() string { return fmt.Sprintf("%s+%d", e.Stat, e.Amount) }
func (e Flag) String() string      { return e.Name }
func (e Unknown) String() string   { return e.Raw }

var (
	diceCountRe = regexp.MustCompile(`^dice_count_plus(\d+)$`)
	diceFaceRe  = regexp.MustCompile(`^dice_face_plus(\d+)$`)
	amountRe    = regexp.MustCompile(`^([a-z_]+)\+(\d+)$`)
	flagRe      = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Parse converts a stored tag into its variant. Anything unrecognised becomes Unknown.
func Parse(tag string) Effect {
	if m := diceCountRe.FindStringSubmatch(tag); m != nil {
		n, _ := strconv.Atoi(m[1])
		return DiceCount{Delta: n}
	}
	if m := diceFaceRe.FindStringSubmatch(tag); m != nil {
		n, _ := strconv.Atoi(m[1])
		return DiceFaces{Delta: n}
	}
	if m := amountRe.FindStringSubmatch(tag); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return Unknown{Raw: tag}
		}
		switch key := m[1]; key {
		case string(HP), string(MP), string(SP):
			return Restore{Resource: Resource(key), Amount: n}
		case "damage":
			return Damage{Amount: n}
		default:
			if st, ok := statAliases[key]; ok {
				return StatBoost{Stat: st, Amount: n}
			}
			return Unknown{Raw: tag}
		}
	}
	if flagRe.MatchString(tag) {
		return Flag{Name: tag}
	}
	return Unknown{Raw: tag}
}

// ParseAll parses every tag in order.
func ParseAll(tags []string) []Effect {
	out := make([]Effect, 0, len(tags))
	for _, t := range tags {
		out = append(out, Parse(t))
	}
	return out
}

// Tags is the inverse of ParseAll.
func Tags(effects []Effect) []string {
	out := make([]string, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.String())
	}
	return out
}

// Totals is the folded result of a list of effects.
type Totals struct {
	DiceCount int
	DiceFaces int
	Restore   map[Resource]int
	Damage    int
	Boosts    map[Stat]int
	Flags     map[string]bool
	Unknown   []string
}

// HasFlag reports whether name is among the collected flags.
func (t Totals) HasFlag(name string) bool {
	return t.Flags[name]
}

// FlagNames returns the collected flags sorted.
func (t Totals) FlagNames() []string {
	out := make([]string, 0, len(t.Flags))
	for f := range t.Flags {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Resolve folds effects: numeric payloads add up, flags are a set.
func Resolve(effects []Effect) Totals {
	t := Totals{
		Restore: make(map[Resource]int),
		Boosts:  make(map[Stat]int),
		Flags:   make(map[string]bool),
	}
	for _, e := range effects {
		switch v := e.(type) {
		case DiceCount:
			t.DiceCount += v.Delta
		case DiceFaces:
			t.DiceFaces += v.Delta
		case Restore:
			t.Restore[v.Resource] += v.Amount
		case Damage:
			t.Damage += v.Amount
		case StatBoost:
			t.Boosts[v.Stat] += v.Amount
		case Flag:
			t.Flags[v.Name] = true
		case Unknown:
			t.Unknown = append(t.Unknown, v.Raw)
		}
	}
	return t
}

// Union merges effect lists. Flags appear once; every other variant is kept
// so that numeric effects still stack.
func Union(lists ...[]Effect) []Effect {
	var out []Effect
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, e := range l {
			if f, ok := e.(Flag); ok {
				if seen[f.Name] {
					continue
				}
				seen[f.Name] = true
			}
			out = append(out, e)
		}
	}
	return out
}
