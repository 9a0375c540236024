// Package store puts every catalog behind one read interface so the game
// packages never know whether data came from files or from the database.
package store

import (
	"context"
)

// Record is implemented by catalog models.
type Record interface {
	RecordID() string
	RecordLocation() string
	RecordActive() bool
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	LocationID string
	ActiveOnly bool
}

// Match reports whether r passes the filter.
func (f Filter) Match(r Record) bool {
	if f.LocationID != "" && r.RecordLocation() != f.LocationID {
		return false
	}
	if f.ActiveOnly && !r.RecordActive() {
		return false
	}
	return true
}

// Source is a read-only catalog. Get returns a NOT_FOUND apperr for unknown ids.
type Source[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, f Filter) ([]*T, error)
}
