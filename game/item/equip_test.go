package item

import (
	"testing"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/game/effect"
	"github.com/kasuganosora/roadquest/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChar() *model.Character {
	sword := &model.Item{ID: "iron_sword", Name: "Iron Sword", Slot: model.SlotWeapon, Attack: 5, Accuracy: 2}
	axe := &model.Item{ID: "axe", Name: "Axe", Slot: model.SlotWeapon, Attack: 8}
	boots := &model.Item{ID: "boots", Name: "Boots", Slot: model.SlotFeet, Agility: 2, Effects: []string{"dice_count_plus1", "status_immunity"}}
	ring := &model.Item{ID: "ring", Name: "Ring", Slot: model.SlotAccessory, HP: 10, Effects: []string{"dice_face_plus3", "status_immunity", "glitter+1"}}
	return &model.Character{
		ID: 1,
		Inventory: []model.Inventory{
			{ID: 1, ItemID: sword.ID, Item: sword},
			{ID: 2, ItemID: axe.ID, Item: axe},
			{ID: 3, ItemID: boots.ID, Item: boots},
			{ID: 4, ItemID: ring.ID, Item: ring},
		},
	}
}

func TestEquip_SwapReturnsPrevious(t *testing.T) {
	c := newChar()

	prev, err := Equip(c, model.SlotWeapon, 1)
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.Len(t, Bag(c), 3)

	prev, err = Equip(c, model.SlotWeapon, 2)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "iron_sword", prev.ItemID)
	assert.False(t, prev.Equipped)
	assert.Equal(t, "axe", c.Equipped(model.SlotWeapon).ItemID)
	assert.Len(t, Bag(c), 3)
}

func TestEquip_Errors(t *testing.T) {
	c := newChar()

	_, err := Equip(c, "tail", 1)
	assert.True(t, apperr.IsValidation(err))

	_, err = Equip(c, model.SlotWeapon, 99)
	assert.True(t, apperr.IsNotFound(err))

	_, err = Equip(c, model.SlotHead, 1)
	assert.True(t, apperr.IsValidation(err), "sword does not fit the head slot")

	_, err = Equip(c, model.SlotWeapon, 1)
	require.NoError(t, err)
	_, err = Equip(c, model.SlotWeapon, 1)
	assert.True(t, apperr.IsInvalidState(err))
}

func TestUnequip(t *testing.T) {
	c := newChar()
	_, err := Unequip(c, model.SlotFeet)
	assert.True(t, apperr.IsNotFound(err))

	_, err = Equip(c, model.SlotFeet, 3)
	require.NoError(t, err)
	inv, err := Unequip(c, model.SlotFeet)
	require.NoError(t, err)
	assert.Equal(t, "boots", inv.ItemID)
	assert.Nil(t, c.Equipped(model.SlotFeet))
	assert.Len(t, Bag(c), 4)
}

func TestTotalStats(t *testing.T) {
	c := newChar()
	assert.Equal(t, Totals{}, TotalStats(c))

	for slot, id := range map[model.Slot]int64{model.SlotWeapon: 1, model.SlotFeet: 3, model.SlotAccessory: 4} {
		_, err := Equip(c, slot, id)
		require.NoError(t, err)
	}

	tot := TotalStats(c)
	assert.Equal(t, 5, tot.Attack)
	assert.Equal(t, 2, tot.Accuracy)
	assert.Equal(t, 2, tot.Agility)
	assert.Equal(t, 10, tot.HP)

	res := effect.Resolve(tot.Effects)
	assert.Equal(t, 1, res.DiceCount)
	assert.Equal(t, 3, res.DiceFaces)
	assert.Equal(t, []string{"status_immunity"}, res.FlagNames(), "flags are a set")
	assert.Equal(t, []string{"glitter+1"}, res.Unknown)
	assert.Equal(t, []string{"dice_count_plus1", "status_immunity", "dice_face_plus3", "glitter+1"}, tot.EffectTags())
}
