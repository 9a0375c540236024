package battle

import (
	"math/rand"
	"testing"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/game/effect"
	"github.com/kasuganosora/roadquest/game/stats"
	"github.com/kasuganosora/roadquest/model"
	"github.com/kasuganosora/roadquest/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hit always lands every percent check; miss never does.
func hit() *testutil.FixedSource  { return testutil.Always(0) }
func miss() *testutil.FixedSource { return testutil.Always(99) }

func level1() (*model.Character, stats.Composite) {
	b := stats.Base(1)
	c := &model.Character{
		ID: 1, Name: "Hero", Level: 1,
		HP: b.MaxHP, MaxHP: b.MaxHP, MP: b.MaxMP, MaxMP: b.MaxMP, SP: 20, MaxSP: b.MaxSP,
	}
	return c, stats.Composite{Level: 1, Base: b, Total: b}
}

func slime() *model.Monster {
	return &model.Monster{ID: "slime", Name: "Slime", HP: 20, MaxHP: 20, Attack: 5, Defense: 0,
		Agility: 12, Accuracy: 70, ExperienceReward: 15, IsActive: true}
}

func TestStart(t *testing.T) {
	c, comp := level1()
	c.Skills = []model.CharSkill{{Name: "slash", Active: true}}
	s := Start(c, comp, slime(), "road_1")

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, s.Turn)
	assert.False(t, s.Ended)
	assert.Equal(t, ResultOngoing, s.Result)
	assert.Equal(t, 10, s.Character.Attack)
	assert.Equal(t, 20, s.Monster.HP)

	s.Skills[0].Level = 50
	s.Character.HP = 1
	assert.Equal(t, 0, c.Skills[0].Level, "snapshots are independent")
	assert.Equal(t, 100, c.HP)
}

func TestEndToEnd_Victory(t *testing.T) {
	c, comp := level1()
	s := Start(c, comp, slime(), "road_1")
	e := NewEngine(hit(), 0, nil)

	out, err := e.Perform(s, Action{Kind: ActionAttack})
	require.NoError(t, err)
	assert.False(t, out.Ended)
	assert.Equal(t, 10, s.Monster.HP)
	assert.Equal(t, 2, s.Turn)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, SideCharacter, out.Entries[0].Side)
	assert.Equal(t, 10, out.Entries[0].Damage)
	assert.Equal(t, SideMonster, out.Entries[1].Side)
	assert.Equal(t, 1, out.Entries[1].Damage, "5 atk vs 8 def floors at 1")

	out, err = e.Perform(s, Action{Kind: ActionAttack})
	require.NoError(t, err)
	assert.True(t, out.Ended)
	assert.Equal(t, ResultVictory, out.Result)
	assert.Equal(t, 0, s.Monster.HP)
	assert.Equal(t, 2, s.Turn, "monster never acted")
	assert.Equal(t, 15, s.ExpGained())
	assert.Equal(t, 99, s.Character.HP)

	before := len(s.Log)
	_, err = e.Perform(s, Action{Kind: ActionAttack})
	assert.True(t, apperr.IsInvalidState(err))
	assert.Len(t, s.Log, before)
	assert.Equal(t, ResultVictory, s.Result)
}

func TestMiss(t *testing.T) {
	c, comp := level1()
	s := Start(c, comp, slime(), "")
	e := NewEngine(miss(), 0, nil)

	out, err := e.Perform(s, Action{Kind: ActionAttack})
	require.NoError(t, err)
	assert.False(t, out.Entries[0].Hit)
	assert.Equal(t, 20, s.Monster.HP)
	assert.Equal(t, 100, s.Character.HP)
}

func TestDefend_HalvesNextBlow(t *testing.T) {
	c, comp := level1()
	m := slime()
	m.Attack = 20 // 20 - 8 = 12
	s := Start(c, comp, m, "")
	e := NewEngine(hit(), 0, nil)

	_, err := e.Perform(s, Action{Kind: ActionDefend})
	require.NoError(t, err)
	assert.Equal(t, 94, s.Character.HP)
	assert.Equal(t, 20, s.Monster.HP)
	assert.False(t, s.Defending, "only for this turn")

	_, err = e.Perform(s, Action{Kind: ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, 82, s.Character.HP)
}

func TestSkill_InsufficientSP(t *testing.T) {
	c, comp := level1()
	c.SP = 3
	c.Skills = []model.CharSkill{{Name: "fireball", Type: model.SkillMagic, Level: 1, SPCost: 5, Active: true, Effects: []string{"damage+30"}}}
	s := Start(c, comp, slime(), "")
	e := NewEngine(hit(), 0, nil)

	_, err := e.Perform(s, Action{Kind: ActionSkill, Skill: "fireball"})
	assert.True(t, apperr.IsInsufficientResource(err))
	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, 3, s.Character.SP)
	assert.Empty(t, s.Log)
	assert.Equal(t, 20, s.Monster.HP)

	_, err = e.Perform(s, Action{Kind: ActionSkill, Skill: "meteor"})
	assert.Equal(t, apperr.CodeNotLearned, apperr.GetCode(err))
}

func TestSkill_DamageEndsBattle(t *testing.T) {
	c, comp := level1()
	c.Skills = []model.CharSkill{{Name: "fireball", Type: model.SkillMagic, Level: 1, SPCost: 5, Active: true, Effects: []string{"damage+30"}}}
	s := Start(c, comp, slime(), "")
	e := NewEngine(miss(), 10, nil)

	out, err := e.Perform(s, Action{Kind: ActionSkill, Skill: "fireball"})
	require.NoError(t, err)
	assert.Equal(t, ResultVictory, out.Result)
	assert.Equal(t, 20, out.Entries[0].Damage)
	assert.Equal(t, 15, s.Character.SP)
	assert.Equal(t, 10, s.SkillExp["fireball"])
}

func TestSkill_BoostAndRestore(t *testing.T) {
	c, comp := level1()
	c.HP = 50
	c.Skills = []model.CharSkill{
		{Name: "rage", Type: model.SkillCombat, SPCost: 2, Duration: 1, Active: true, Effects: []string{"atk+6"}},
		{Name: "mend", Type: model.SkillMagic, SPCost: 2, Active: true, Effects: []string{"hp+70"}},
	}
	s := Start(c, comp, slime(), "")
	e := NewEngine(hit(), 0, nil)

	_, err := e.Perform(s, Action{Kind: ActionSkill, Skill: "rage"})
	require.NoError(t, err)
	assert.Equal(t, 10, s.Character.Stat(effect.StatAttack), "one-turn buff expired at end of turn")

	out, err := e.Perform(s, Action{Kind: ActionSkill, Skill: "mend"})
	require.NoError(t, err)
	assert.Equal(t, 51, out.Entries[0].Healed, "49 after the slime's first hit")
	assert.Equal(t, 99, s.Character.HP)

	s.Character.Buffs.Add("rage", map[effect.Stat]int{effect.StatAttack: 6}, 2)
	_, err = e.Perform(s, Action{Kind: ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Monster.HP, "16 attack vs 0 defense")
}

func TestEscape(t *testing.T) {
	c, comp := level1()
	s := Start(c, comp, slime(), "")
	out, err := NewEngine(hit(), 0, nil).Perform(s, Action{Kind: ActionEscape})
	require.NoError(t, err)
	assert.Equal(t, ResultEscaped, out.Result)
	assert.Equal(t, 2, s.Turn)
	assert.Equal(t, 0, s.ExpGained())
	assert.Equal(t, 100, s.Character.HP)

	s = Start(c, comp, slime(), "")
	// First check fails the escape, the rest are monster hits.
	src := &testutil.FixedSource{Ints: []int{99, 0}}
	out, err = NewEngine(src, 0, nil).Perform(s, Action{Kind: ActionEscape})
	require.NoError(t, err)
	assert.False(t, out.Ended)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, SideMonster, out.Entries[1].Side)
	assert.Equal(t, 99, s.Character.HP)
	assert.Equal(t, 2, s.Turn)
}

func TestDefeat(t *testing.T) {
	c, comp := level1()
	c.HP = 5
	m := slime()
	m.Attack = 50
	s := Start(c, comp, m, "")

	out, err := NewEngine(hit(), 0, nil).Perform(s, Action{Kind: ActionDefend})
	require.NoError(t, err)
	assert.Equal(t, ResultDefeat, out.Result)
	assert.Equal(t, 0, s.Character.HP)
	assert.Equal(t, 0, s.ExpGained())
}

func TestUnknownAction(t *testing.T) {
	c, comp := level1()
	s := Start(c, comp, slime(), "")
	_, err := NewEngine(hit(), 0, nil).Perform(s, Action{Kind: "dance"})
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, 1, s.Turn)
}

func TestSeededBattleTerminates(t *testing.T) {
	c, comp := level1()
	s := Start(c, comp, slime(), "")
	e := NewEngine(rand.New(rand.NewSource(42)), 0, nil)
	for i := 0; i < 500 && !s.Ended; i++ {
		_, err := e.Perform(s, Action{Kind: ActionAttack})
		require.NoError(t, err)
	}
	require.True(t, s.Ended)
	assert.Equal(t, ResultVictory, s.Result)
}
