// Package battle runs one-on-one turn-based combat between a character
// snapshot and a monster snapshot until victory, defeat or escape.
package battle

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/game/effect"
	"github.com/kasuganosora/roadquest/game/random"
	"github.com/kasuganosora/roadquest/game/skill"
	"github.com/kasuganosora/roadquest/game/stats"
	"github.com/kasuganosora/roadquest/model"
	"go.uber.org/zap"
)

// Result is the terminal state of a battle. Empty while ongoing.
type Result string

const (
	ResultOngoing Result = ""
	ResultVictory Result = "victory"
	ResultDefeat  Result = "defeat"
	ResultEscaped Result = "escaped"
)

// ActionKind is what the character does on its turn.
type ActionKind string

const (
	ActionAttack ActionKind = "attack"
	ActionDefend ActionKind = "defend"
	ActionSkill  ActionKind = "skill"
	ActionEscape ActionKind = "escape"
)

// Action is a player command.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Skill string     `json:"skill,omitempty"`
}

// Session is the state of one battle.
type Session struct {
	ID          string            `json:"id"`
	CharacterID int64             `json:"character_id"`
	LocationID  string            `json:"location_id"`
	MonsterID   string            `json:"monster_id"`
	Turn        int               `json:"turn"`
	Character   Combatant         `json:"character"`
	Monster     Combatant         `json:"monster"`
	Skills      []model.CharSkill `json:"skills"`
	SkillExp    map[string]int    `json:"skill_exp"`
	ExpReward   int               `json:"exp_reward"`
	Defending   bool              `json:"defending"`
	Log         []LogEntry        `json:"log"`
	Ended       bool              `json:"ended"`
	Result      Result            `json:"result"`
	Committed   bool              `json:"committed"`
	StartedAt   time.Time         `json:"started_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Start creates an ongoing session at turn 1 from independent snapshots.
func Start(c *model.Character, comp stats.Composite, m *model.Monster, locationID string) *Session {
	now := time.Now()
	skills := make([]model.CharSkill, len(c.Skills))
	copy(skills, c.Skills)
	return &Session{
		ID:          uuid.NewString(),
		CharacterID: c.ID,
		LocationID:  locationID,
		MonsterID:   m.ID,
		Turn:        1,
		Character:   CharacterCombatant(c, comp),
		Monster:     MonsterCombatant(m),
		Skills:      skills,
		SkillExp:    make(map[string]int),
		ExpReward:   m.ExperienceReward,
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// ExpGained is the experience the character earns from this battle.
func (s *Session) ExpGained() int {
	if s.Result == ResultVictory {
		return s.ExpReward
	}
	return 0
}

// Settled reports whether the battle ended and its outcome was applied to
// the character.
func (s *Session) Settled() bool {
	return s.Ended && s.Committed
}

func (s *Session) skill(name string) *model.CharSkill {
	for i := range s.Skills {
		if s.Skills[i].Name == name {
			return &s.Skills[i]
		}
	}
	return nil
}

func (s *Session) end(r Result) {
	s.Ended = true
	s.Result = r
}

// Outcome is what one Perform call did.
type Outcome struct {
	Entries []LogEntry `json:"entries"`
	Ended   bool       `json:"ended"`
	Result  Result     `json:"result"`
}

// Engine resolves actions. It holds no session state.
type Engine struct {
	rng       random.Source
	expPerUse int
	logger    *zap.Logger
}

// NewEngine creates an Engine drawing from rng.
func NewEngine(rng random.Source, expPerUse int, logger *zap.Logger) *Engine {
	if expPerUse <= 0 {
		expPerUse = skill.DefaultExpPerUse
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{rng: rng, expPerUse: expPerUse, logger: logger}
}

// Perform runs one character action and, unless the battle ended, the
// monster's reply. Errors leave the session untouched.
func (e *Engine) Perform(s *Session, a Action) (Outcome, error) {
	if s.Ended {
		return Outcome{}, apperr.InvalidStatef("battle %s already ended (%s)", s.ID, s.Result)
	}
	mark := len(s.Log)

	switch a.Kind {
	case ActionAttack:
		e.strike(s, SideCharacter, &s.Character, &s.Monster, false)
	case ActionDefend:
		s.Defending = true
		e.log(s, LogEntry{Side: SideCharacter, Action: ActionDefend, Message: s.Character.Name + " braces for the next blow"})
	case ActionSkill:
		if err := e.castSkill(s, a.Skill); err != nil {
			return Outcome{}, err
		}
	case ActionEscape:
		chance := EscapeChance(s.Character.Stat(effect.StatAgility), s.Monster.Stat(effect.StatAgility))
		if random.Percent(e.rng, chance) {
			e.log(s, LogEntry{Side: SideCharacter, Action: ActionEscape, Hit: true,
				Message: fmt.Sprintf("%s escaped (%d%%)", s.Character.Name, chance)})
			s.end(ResultEscaped)
			s.Turn++
			return e.outcome(s, mark), nil
		}
		e.log(s, LogEntry{Side: SideCharacter, Action: ActionEscape,
			Message: fmt.Sprintf("%s failed to escape (%d%%)", s.Character.Name, chance)})
	default:
		return Outcome{}, apperr.Validationf("unknown action %q", a.Kind)
	}

	if !s.Monster.Alive() {
		e.log(s, LogEntry{Side: SideSystem, Message: s.Monster.Name + " was defeated"})
		s.end(ResultVictory)
		return e.outcome(s, mark), nil
	}

	e.strike(s, SideMonster, &s.Monster, &s.Character, s.Defending)
	if !s.Character.Alive() {
		e.log(s, LogEntry{Side: SideSystem, Message: s.Character.Name + " was defeated"})
		s.end(ResultDefeat)
	}
	e.endTurn(s)
	return e.outcome(s, mark), nil
}

// strike resolves one attack. guarded halves the damage to defender.
func (e *Engine) strike(s *Session, side Side, attacker, defender *Combatant, guarded bool) {
	chance := HitChance(attacker.Stat(effect.StatAccuracy), defender.Stat(effect.StatEvasion))
	if !random.Percent(e.rng, chance) {
		e.log(s, LogEntry{Side: side, Action: ActionAttack,
			Message: fmt.Sprintf("%s missed %s", attacker.Name, defender.Name)})
		return
	}
	dmg := Damage(attacker.Stat(effect.StatAttack), defender.Stat(effect.StatDefense))
	if guarded {
		dmg = Guarded(dmg)
	}
	dealt := defender.TakeDamage(dmg)
	e.log(s, LogEntry{Side: side, Action: ActionAttack, Hit: true, Damage: dealt,
		Message: fmt.Sprintf("%s hit %s for %d", attacker.Name, defender.Name, dealt)})
}

func (e *Engine) castSkill(s *Session, name string) error {
	sk := s.skill(name)
	if err := skill.Usable(sk, name, s.Character.SP); err != nil {
		return err
	}
	s.Character.SP -= sk.SPCost

	tot := effect.Resolve(effect.ParseAll(sk.Effects))
	entry := LogEntry{Side: SideCharacter, Action: ActionSkill, Skill: sk.Name, Hit: true}
	if tot.Damage > 0 {
		entry.Damage = s.Monster.TakeDamage(tot.Damage)
	}
	for _, res := range []effect.Resource{effect.HP, effect.MP, effect.SP} {
		if amt := tot.Restore[res]; amt > 0 {
			entry.Healed += s.Character.Restore(res, amt)
		}
	}
	if len(tot.Boosts) > 0 {
		s.Character.Buffs.Add(sk.Name, tot.Boosts, sk.Duration)
	}
	if len(tot.Unknown) > 0 {
		e.logger.Debug("ignoring unrecognised effects",
			zap.String("battle_id", s.ID), zap.String("skill", sk.Name), zap.Strings("effects", tot.Unknown))
	}
	entry.Message = fmt.Sprintf("%s used %s", s.Character.Name, sk.Name)
	if entry.Damage > 0 {
		entry.Message += fmt.Sprintf(", dealing %d", entry.Damage)
	}
	if entry.Healed > 0 {
		entry.Message += fmt.Sprintf(", restoring %d", entry.Healed)
	}
	e.log(s, entry)
	s.SkillExp[sk.Name] += e.expPerUse
	return nil
}

func (e *Engine) endTurn(s *Session) {
	for _, name := range s.Character.Buffs.Tick() {
		e.log(s, LogEntry{Side: SideSystem, Message: name + " wore off"})
	}
	s.Defending = false
	s.Turn++
}

func (e *Engine) log(s *Session, entry LogEntry) {
	entry.Turn = s.Turn
	s.Log = append(s.Log, entry)
	s.UpdatedAt = time.Now()
}

func (e *Engine) outcome(s *Session, mark int) Outcome {
	entries := make([]LogEntry, len(s.Log)-mark)
	copy(entries, s.Log[mark:])
	return Outcome{Entries: entries, Ended: s.Ended, Result: s.Result}
}
