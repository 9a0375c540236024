package model

import (
	"time"

	"gorm.io/datatypes"
)

// Slot names an equipment slot.
type Slot string

const (
	SlotHead      Slot = "head"
	SlotWeapon    Slot = "weapon"
	SlotShield    Slot = "shield"
	SlotBody      Slot = "body"
	SlotFeet      Slot = "feet"
	SlotAccessory Slot = "accessory"
	SlotBag       Slot = "bag"
)

// Slots lists every equipment slot in display order.
var Slots = []Slot{SlotHead, SlotWeapon, SlotShield, SlotBody, SlotFeet, SlotAccessory, SlotBag}

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool {
	for _, v := range Slots {
		if v == s {
			return true
		}
	}
	return false
}

// Item is a catalog entry for equippable gear.
type Item struct {
	ID         string                      `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Name       string                      `gorm:"size:64;not null" json:"name" yaml:"name"`
	Slot       Slot                        `gorm:"size:16;not null" json:"slot" yaml:"slot"`
	Attack     int                         `json:"attack" yaml:"attack"`
	Defense    int                         `json:"defense" yaml:"defense"`
	Agility    int                         `json:"agility" yaml:"agility"`
	Evasion    int                         `json:"evasion" yaml:"evasion"`
	Accuracy   int                         `json:"accuracy" yaml:"accuracy"`
	HP         int                         `json:"hp" yaml:"hp"`
	MP         int                         `json:"mp" yaml:"mp"`
	Effects    datatypes.JSONSlice[string] `json:"effects" yaml:"effects"`
	Durability int                         `json:"durability" yaml:"durability"`
	Price      int64                       `json:"price" yaml:"price"`
}

func (i *Item) RecordID() string       { return i.ID }
func (i *Item) RecordLocation() string { return "" }
func (i *Item) RecordActive() bool     { return true }

// Inventory is one item owned by a character, either in the bag or equipped.
type Inventory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CharID    int64     `gorm:"index:idx_char_inventory;not null" json:"char_id"`
	ItemID    string    `gorm:"size:64;not null" json:"item_id"`
	Item      *Item     `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Equipped  bool      `json:"equipped"`
	Slot      Slot      `gorm:"size:16" json:"slot"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
