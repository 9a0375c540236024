package skill

import (
	"testing"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/game/effect"
	"github.com/kasuganosora/roadquest/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChar() *model.Character {
	return &model.Character{ID: 1, Level: 1, HP: 50, MaxHP: 100, MP: 60, MaxMP: 60, SP: 20, MaxSP: 50}
}

func TestCurve(t *testing.T) {
	assert.Equal(t, 0, ExpForLevel(1))
	assert.Equal(t, 100, ExpForLevel(2))
	assert.Equal(t, 300, ExpForLevel(3))
	assert.Equal(t, 1, LevelForExp(99))
	assert.Equal(t, 2, LevelForExp(100))
	assert.Equal(t, 3, LevelForExp(599))
	assert.Equal(t, 4, LevelForExp(600))
	assert.Equal(t, MaxLevel, LevelForExp(1<<30))

	prev := 1
	for exp := 0; exp < 20000; exp += 37 {
		lv := LevelForExp(exp)
		assert.GreaterOrEqual(t, lv, prev)
		prev = lv
	}
}

func TestLearn_Idempotent(t *testing.T) {
	l := NewLedger(0, nil)
	c := newChar()

	sk, created, err := l.Learn(c, model.SkillMovement, "dash", []string{"dice_count_plus1"}, 5, 2)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, sk.Level)
	assert.True(t, sk.Active)
	assert.Equal(t, int64(1), c.SkillVersion)

	sk.Exp = 40
	again, created, err := l.Learn(c, model.SkillCombat, "dash", nil, 99, 0)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 40, again.Exp)
	assert.Equal(t, model.SkillMovement, again.Type)
	assert.Len(t, c.Skills, 1)
	assert.Equal(t, int64(1), c.SkillVersion)
}

func TestLearn_Validation(t *testing.T) {
	l := NewLedger(0, nil)
	c := newChar()
	_, _, err := l.Learn(c, "cooking", "stew", nil, 0, 0)
	assert.True(t, apperr.IsValidation(err))
	_, _, err = l.Learn(c, model.SkillMagic, "  ", nil, 0, 0)
	assert.True(t, apperr.IsValidation(err))
	_, _, err = l.Learn(c, model.SkillMagic, "bolt", nil, -1, 0)
	assert.True(t, apperr.IsValidation(err))
}

func TestUse_FailureOrder(t *testing.T) {
	l := NewLedger(0, nil)
	c := newChar()

	_, err := l.Use(c, "heal")
	assert.Equal(t, apperr.CodeNotLearned, apperr.GetCode(err))

	_, _, err = l.Learn(c, model.SkillMagic, "heal", []string{"hp+20"}, 30, 0)
	require.NoError(t, err)
	require.NoError(t, l.SetActive(c, "heal", false))
	_, err = l.Use(c, "heal")
	assert.Equal(t, apperr.CodeDisabled, apperr.GetCode(err), "disabled is reported before sp")

	require.NoError(t, l.SetActive(c, "heal", true))
	res, err := l.Use(c, "heal")
	assert.True(t, apperr.IsInsufficientResource(err))
	assert.False(t, res.Success)
	assert.Equal(t, 20, c.SP, "sp unchanged")
	assert.Equal(t, 0, c.Skill("heal").Exp)
}

func TestUse_RestoreAndExp(t *testing.T) {
	l := NewLedger(50, nil)
	c := newChar()
	_, _, err := l.Learn(c, model.SkillMagic, "heal", []string{"hp+80", "mp+5"}, 5, 0)
	require.NoError(t, err)
	ver := c.SkillVersion

	res, err := l.Use(c, "heal")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.LeveledUp)
	assert.Equal(t, 100, c.HP, "clamped to max")
	assert.Equal(t, 60, c.MP)
	assert.Equal(t, 15, c.SP)
	assert.Equal(t, 15, res.SPLeft)
	assert.Equal(t, ver, c.SkillVersion)

	res, err = l.Use(c, "heal")
	require.NoError(t, err)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.Level)
	assert.Equal(t, ver+1, c.SkillVersion)
	assert.Contains(t, res.Message, "level 2")
}

func TestUse_TravelBuff(t *testing.T) {
	l := NewLedger(0, nil)
	c := newChar()
	_, _, err := l.Learn(c, model.SkillMovement, "dash", []string{"dice_count_plus1", "atk+3"}, 5, 2)
	require.NoError(t, err)

	_, err = l.Use(c, "dash")
	require.NoError(t, err)
	require.Len(t, c.TravelBuffs, 1)
	assert.Equal(t, []effect.Effect{effect.DiceCount{Delta: 1}}, TravelEffects(c))

	_, err = l.Use(c, "dash")
	require.NoError(t, err)
	require.Len(t, c.TravelBuffs, 1, "recast refreshes instead of stacking")

	TickTravel(c)
	assert.Len(t, TravelEffects(c), 1)
	TickTravel(c)
	assert.Empty(t, TravelEffects(c))
	assert.Empty(t, c.TravelBuffs)
}

func TestSetActive_NotLearned(t *testing.T) {
	l := NewLedger(0, nil)
	assert.Equal(t, apperr.CodeNotLearned, apperr.GetCode(l.SetActive(newChar(), "x", true)))
}
