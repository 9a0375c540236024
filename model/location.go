package model

// LocationKind distinguishes towns from road segments.
type LocationKind string

const (
	LocationTown LocationKind = "town"
	LocationRoad LocationKind = "road"
)

// Location is a town or a path segment. Start/End name the neighbours
// reachable from position 0 and 100.
type Location struct {
	ID            string       `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Name          string       `gorm:"size:64;not null" json:"name" yaml:"name"`
	Kind          LocationKind `gorm:"size:16;not null" json:"kind" yaml:"kind"`
	StartNeighbor string       `gorm:"size:64" json:"start_neighbor" yaml:"start_neighbor"`
	EndNeighbor   string       `gorm:"size:64" json:"end_neighbor" yaml:"end_neighbor"`
	Branch        string       `gorm:"size:64" json:"branch,omitempty" yaml:"branch,omitempty"`
}

func (l *Location) RecordID() string       { return l.ID }
func (l *Location) RecordLocation() string { return l.ID }
func (l *Location) RecordActive() bool     { return true }
