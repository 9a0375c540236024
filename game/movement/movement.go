// Package movement turns dice rolls into progress along a path segment.
package movement

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/game/effect"
)

// Position bounds and the midpoint marker of a path segment.
const (
	MinPosition = 0
	MidPosition = 50
	MaxPosition = 100
)

// Base dice spec without any effects.
const (
	BaseCount = 2
	BaseFaces = 6
)

// Spec is how many dice are rolled and how many faces each has.
type Spec struct {
	Count int `json:"count"`
	Faces int `json:"faces"`
}

// SpecFor applies dice effects on top of base. Any other effect is ignored.
func SpecFor(base Spec, effects []effect.Effect) Spec {
	tot := effect.Resolve(effects)
	return Spec{Count: base.Count + tot.DiceCount, Faces: base.Faces + tot.DiceFaces}
}

// Roll is the outcome of one dice roll.
type Roll struct {
	Values []int `json:"values"`
	Sum    int   `json:"sum"`
}

// Boundary identifies the marker a position sits on.
type Boundary string

const (
	BoundaryNone     Boundary = ""
	BoundaryStart    Boundary = "start"
	BoundaryMidpoint Boundary = "midpoint"
	BoundaryEnd      Boundary = "end"
)

// BoundaryAt classifies position.
func BoundaryAt(position int) Boundary {
	switch position {
	case MinPosition:
		return BoundaryStart
	case MidPosition:
		return BoundaryMidpoint
	case MaxPosition:
		return BoundaryEnd
	}
	return BoundaryNone
}

// CanTransition reports whether a position allows leaving the segment.
// Only the two ends qualify; the midpoint never does.
func CanTransition(position int) bool {
	b := BoundaryAt(position)
	return b == BoundaryStart || b == BoundaryEnd
}

// Engine rolls dice through a dice.Roller.
type Engine struct {
	roller dice.Roller
	base   Spec
}

// NewEngine creates an Engine. A non-positive base falls back to 2d6.
func NewEngine(roller dice.Roller, base Spec) *Engine {
	if base.Count <= 0 {
		base.Count = BaseCount
	}
	if base.Faces <= 0 {
		base.Faces = BaseFaces
	}
	return &Engine{roller: roller, base: base}
}

// Base returns the spec used when no effects apply.
func (e *Engine) Base() Spec { return e.base }

// Roll rolls the dice described by base plus effects.
func (e *Engine) Roll(effects []effect.Effect) (Roll, error) {
	spec := SpecFor(e.base, effects)
	vals, err := e.roller.RollN(spec.Count, spec.Faces)
	if err != nil {
		return Roll{}, apperr.Wrapf(err, "roll %dd%d", spec.Count, spec.Faces)
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return Roll{Values: vals, Sum: sum}, nil
}

// Advance moves position by direction*sum, clamped to [0,100].
func Advance(position, direction, sum int) (int, error) {
	if direction != 1 && direction != -1 {
		return position, apperr.Validationf("direction must be +1 or -1, got %d", direction)
	}
	return min(max(position+direction*sum, MinPosition), MaxPosition), nil
}

// MoveResult is the outcome of Move.
type MoveResult struct {
	Roll     Roll     `json:"roll"`
	From     int      `json:"from"`
	Position int      `json:"position"`
	Boundary Boundary `json:"boundary,omitempty"`
}

// Move rolls and advances position in direction.
func (e *Engine) Move(position, direction int, effects []effect.Effect) (MoveResult, error) {
	if direction != 1 && direction != -1 {
		return MoveResult{}, apperr.Validationf("direction must be +1 or -1, got %d", direction)
	}
	r, err := e.Roll(effects)
	if err != nil {
		return MoveResult{}, err
	}
	pos, _ := Advance(position, direction, r.Sum)
	return MoveResult{Roll: r, From: position, Position: pos, Boundary: BoundaryAt(pos)}, nil
}
