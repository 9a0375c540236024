package model

import (
	"time"

	"gorm.io/datatypes"
)

// BattleRecord is the finalised summary of one battle.
type BattleRecord struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID  string         `gorm:"uniqueIndex;size:36;not null" json:"session_id"`
	CharID     int64          `gorm:"index:idx_battle_char;not null" json:"char_id"`
	LocationID string         `gorm:"size:64" json:"location_id"`
	MonsterID  string         `gorm:"size:64" json:"monster_id"`
	Result     string         `gorm:"size:16" json:"result"`
	Turns      int            `json:"turns"`
	ExpGained  int            `json:"exp_gained"`
	Log        datatypes.JSON `json:"log"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}
