package store

import (
	"context"

	"github.com/kasuganosora/roadquest/apperr"
	"go.uber.org/zap"
)

// Fallback reads from primary and falls back to secondary when primary has
// no answer: a NOT_FOUND, no rows at all for the filter or an unexpected
// error (logged). Rows that primary holds but filters out as inactive still
// count as an answer, so deactivating them there hides the secondary copy.
type Fallback[T any] struct {
	primary   Source[T]
	secondary Source[T]
	kind      string
	logger    *zap.Logger
}

func NewFallback[T any](kind string, primary, secondary Source[T], logger *zap.Logger) *Fallback[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback[T]{primary: primary, secondary: secondary, kind: kind, logger: logger}
}

func (f *Fallback[T]) Get(ctx context.Context, id string) (*T, error) {
	v, err := f.primary.Get(ctx, id)
	if err == nil {
		return v, nil
	}
	if !apperr.IsNotFound(err) {
		f.logger.Warn("primary source failed, using fallback",
			zap.String("kind", f.kind), zap.String("id", id), zap.Error(err))
	}
	return f.secondary.Get(ctx, id)
}

func (f *Fallback[T]) List(ctx context.Context, flt Filter) ([]*T, error) {
	rows, err := f.primary.List(ctx, flt)
	if err == nil && len(rows) == 0 && flt.ActiveOnly {
		all := flt
		all.ActiveOnly = false
		var known []*T
		if known, err = f.primary.List(ctx, all); err == nil && len(known) > 0 {
			return rows, nil
		}
	}
	if err != nil {
		f.logger.Warn("primary source failed, using fallback",
			zap.String("kind", f.kind), zap.String("location_id", flt.LocationID), zap.Error(err))
	} else if len(rows) > 0 {
		return rows, nil
	}
	return f.secondary.List(ctx, flt)
}
