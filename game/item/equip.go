// Package item resolves equipment: moving items between the bag and slots,
// and folding equipped items into stat deltas and effects.
package item

import (
	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/model"
)

// Equip moves bag item invID into slot. Whatever the slot held goes back to
// the bag and is returned (nil if the slot was empty).
func Equip(c *model.Character, slot model.Slot, invID int64) (*model.Inventory, error) {
	if !slot.Valid() {
		return nil, apperr.Validationf("unknown slot %q", slot)
	}
	inv := findInventory(c, invID)
	if inv == nil {
		return nil, apperr.NotFoundf("inventory item %d", invID)
	}
	if inv.Equipped {
		return nil, apperr.InvalidStatef("inventory item %d already equipped in %s", invID, inv.Slot)
	}
	if inv.Item == nil {
		return nil, apperr.NotFoundf("item %q", inv.ItemID)
	}
	if inv.Item.Slot != slot {
		return nil, apperr.Validationf("%s goes in %s, not %s", inv.Item.Name, inv.Item.Slot, slot)
	}

	prev := c.Equipped(slot)
	if prev != nil {
		prev.Equipped = false
		prev.Slot = ""
	}
	inv.Equipped = true
	inv.Slot = slot
	return prev, nil
}

// Unequip returns the item in slot to the bag and returns it.
func Unequip(c *model.Character, slot model.Slot) (*model.Inventory, error) {
	if !slot.Valid() {
		return nil, apperr.Validationf("unknown slot %q", slot)
	}
	inv := c.Equipped(slot)
	if inv == nil {
		return nil, apperr.NotFoundf("nothing equipped in %s", slot)
	}
	inv.Equipped = false
	inv.Slot = ""
	return inv, nil
}

// Bag returns the unequipped inventory rows.
func Bag(c *model.Character) []*model.Inventory {
	var out []*model.Inventory
	for i := range c.Inventory {
		if !c.Inventory[i].Equipped {
			out = append(out, &c.Inventory[i])
		}
	}
	return out
}

func findInventory(c *model.Character, invID int64) *model.Inventory {
	for i := range c.Inventory {
		if c.Inventory[i].ID == invID {
			return &c.Inventory[i]
		}
	}
	return nil
}
