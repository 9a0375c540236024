package model

import (
	"time"

	"gorm.io/datatypes"
)

// SkillType groups skills for stat bonuses.
type SkillType string

const (
	SkillCombat         SkillType = "combat"
	SkillMovement       SkillType = "movement"
	SkillReconnaissance SkillType = "reconnaissance"
	SkillMagic          SkillType = "magic"
	SkillDefense        SkillType = "defense"
)

// Valid reports whether t is one of the known skill types.
func (t SkillType) Valid() bool {
	switch t {
	case SkillCombat, SkillMovement, SkillReconnaissance, SkillMagic, SkillDefense:
		return true
	}
	return false
}

// CharSkill records a skill a character has learned.
type CharSkill struct {
	ID        int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	CharID    int64                       `gorm:"uniqueIndex:idx_char_skill;not null" json:"char_id"`
	Name      string                      `gorm:"uniqueIndex:idx_char_skill;size:64;not null" json:"name"`
	Type      SkillType                   `gorm:"size:16;not null" json:"type"`
	Level     int                         `gorm:"default:1" json:"level"`
	Exp       int                         `gorm:"default:0" json:"exp"`
	SPCost    int                         `json:"sp_cost"`
	Duration  int                         `json:"duration"`
	Active    bool                        `json:"active"`
	Effects   datatypes.JSONSlice[string] `json:"effects"`
	CreatedAt time.Time                   `gorm:"autoCreateTime" json:"created_at"`
}
