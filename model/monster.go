package model

import "strconv"

// Monster is a catalog entry for an enemy.
type Monster struct {
	ID               string `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Name             string `gorm:"size:64;not null" json:"name" yaml:"name"`
	HP               int    `json:"hp" yaml:"hp"`
	MaxHP            int    `json:"max_hp" yaml:"max_hp"`
	Attack           int    `json:"attack" yaml:"attack"`
	Defense          int    `json:"defense" yaml:"defense"`
	Agility          int    `json:"agility" yaml:"agility"`
	Evasion          int    `json:"evasion" yaml:"evasion"`
	Accuracy         int    `json:"accuracy" yaml:"accuracy"`
	ExperienceReward int    `json:"experience_reward" yaml:"experience_reward"`
	IsActive         bool   `json:"is_active" yaml:"is_active"`
}

func (m *Monster) RecordID() string       { return m.ID }
func (m *Monster) RecordLocation() string { return "" }
func (m *Monster) RecordActive() bool     { return m.IsActive }

// SpawnEntry configures how often a monster appears on a location.
// MinLevel/MaxLevel nil means unbounded on that side.
type SpawnEntry struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	LocationID string  `gorm:"index:idx_spawn_location;size:64;not null" json:"location_id" yaml:"location_id"`
	MonsterID  string  `gorm:"size:64;not null" json:"monster_id" yaml:"monster_id"`
	SpawnRate  float64 `json:"spawn_rate" yaml:"spawn_rate"`
	Priority   int     `json:"priority" yaml:"priority"`
	MinLevel   *int    `json:"min_level,omitempty" yaml:"min_level,omitempty"`
	MaxLevel   *int    `json:"max_level,omitempty" yaml:"max_level,omitempty"`
	IsActive   bool    `json:"is_active" yaml:"is_active"`
}

func (s *SpawnEntry) RecordID() string       { return strconv.FormatInt(s.ID, 10) }
func (s *SpawnEntry) RecordLocation() string { return s.LocationID }
func (s *SpawnEntry) RecordActive() bool     { return s.IsActive }

// AllowsLevel reports whether level falls inside the entry's level window.
func (s *SpawnEntry) AllowsLevel(level int) bool {
	if s.MinLevel != nil && level < *s.MinLevel {
		return false
	}
	if s.MaxLevel != nil && level > *s.MaxLevel {
		return false
	}
	return true
}
