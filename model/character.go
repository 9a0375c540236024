package model

import (
	"time"

	"gorm.io/datatypes"
)

// Character is a player's persisted progression and resource state.
type Character struct {
	ID           int64                           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string                          `gorm:"uniqueIndex;size:32;not null" json:"name"`
	Level        int                             `gorm:"default:1" json:"level"`
	Exp          int64                           `gorm:"default:0" json:"exp"`
	HP           int                             `gorm:"not null" json:"hp"`
	MaxHP        int                             `gorm:"not null" json:"max_hp"`
	MP           int                             `gorm:"not null" json:"mp"`
	MaxMP        int                             `gorm:"not null" json:"max_mp"`
	SP           int                             `gorm:"not null" json:"sp"`
	MaxSP        int                             `gorm:"not null" json:"max_sp"`
	Gold         int64                           `gorm:"default:0" json:"gold"`
	LocationID   string                          `gorm:"size:64" json:"location_id"`
	Position     int                             `gorm:"default:0" json:"position"`
	SkillVersion int64                           `gorm:"default:0" json:"skill_version"`
	TravelBuffs  datatypes.JSONSlice[TravelBuff] `json:"travel_buffs"`
	Skills       []CharSkill                     `gorm:"foreignKey:CharID" json:"skills"`
	Inventory    []Inventory                     `gorm:"foreignKey:CharID" json:"inventory"`
	CreatedAt    time.Time                       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TravelBuff is a timed movement effect granted by a skill, counted in moves.
type TravelBuff struct {
	Skill     string `json:"skill"`
	Effect    string `json:"effect"`
	Remaining int    `json:"remaining"`
}

// ClampResources enforces 0 <= current <= max for hp, mp and sp.
func (c *Character) ClampResources() {
	c.MaxHP = max(c.MaxHP, 0)
	c.MaxMP = max(c.MaxMP, 0)
	c.MaxSP = max(c.MaxSP, 0)
	c.HP = min(max(c.HP, 0), c.MaxHP)
	c.MP = min(max(c.MP, 0), c.MaxMP)
	c.SP = min(max(c.SP, 0), c.MaxSP)
}

// Skill returns the learned skill with name, or nil.
func (c *Character) Skill(name string) *CharSkill {
	for i := range c.Skills {
		if c.Skills[i].Name == name {
			return &c.Skills[i]
		}
	}
	return nil
}

// Equipped returns the inventory row equipped in slot, or nil.
func (c *Character) Equipped(slot Slot) *Inventory {
	for i := range c.Inventory {
		if c.Inventory[i].Equipped && c.Inventory[i].Slot == slot {
			return &c.Inventory[i]
		}
	}
	return nil
}
