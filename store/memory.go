package store

import (
	"context"

	"github.com/kasuganosora/roadquest/apperr"
)

// Memory is a Source over an in-memory slice, usually filled from the
// resource loader. The rows are never modified; List preserves their order.
type Memory[T any, PT interface {
	*T
	Record
}] struct {
	kind string
	rows []*T
}

// NewMemory creates a Memory source. kind names the record type in errors.
func NewMemory[T any, PT interface {
	*T
	Record
}](kind string, rows []*T) *Memory[T, PT] {
	return &Memory[T, PT]{kind: kind, rows: rows}
}

func (m *Memory[T, PT]) Get(_ context.Context, id string) (*T, error) {
	for _, r := range m.rows {
		if PT(r).RecordID() == id {
			return r, nil
		}
	}
	return nil, apperr.NotFoundf("%s %q", m.kind, id)
}

func (m *Memory[T, PT]) List(_ context.Context, f Filter) ([]*T, error) {
	out := make([]*T, 0, len(m.rows))
	for _, r := range m.rows {
		if f.Match(PT(r)) {
			out = append(out, r)
		}
	}
	return out, nil
}
