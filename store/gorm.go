package store

import (
	"context"
	"errors"

	"github.com/kasuganosora/roadquest/apperr"
	"gorm.io/gorm"
)

// Columns maps Filter fields onto table columns. An empty column disables
// that filter for the table.
type Columns struct {
	Location string
	Active   string
	Order    string
}

// Gorm is a Source backed by a relational table.
type Gorm[T any] struct {
	db   *gorm.DB
	kind string
	cols Columns
}

// NewGorm creates a Gorm source. kind names the record type in errors.
func NewGorm[T any](db *gorm.DB, kind string, cols Columns) *Gorm[T] {
	if cols.Order == "" {
		cols.Order = "id"
	}
	return &Gorm[T]{db: db, kind: kind, cols: cols}
}

func (g *Gorm[T]) Get(ctx context.Context, id string) (*T, error) {
	var row T
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("%s %q", g.kind, id)
	}
	if err != nil {
		return nil, apperr.Wrapf(err, "get %s %q", g.kind, id)
	}
	return &row, nil
}

func (g *Gorm[T]) List(ctx context.Context, f Filter) ([]*T, error) {
	q := g.db.WithContext(ctx).Model(new(T))
	if f.LocationID != "" && g.cols.Location != "" {
		q = q.Where(g.cols.Location+" = ?", f.LocationID)
	}
	if f.ActiveOnly && g.cols.Active != "" {
		q = q.Where(g.cols.Active+" = ?", true)
	}
	var rows []*T
	if err := q.Order(g.cols.Order).Find(&rows).Error; err != nil {
		return nil, apperr.Wrapf(err, "list %s", g.kind)
	}
	return rows, nil
}
