// Package hook lets server extensions react to committed game events. Hooks
// run after the change is saved; they observe and cannot veto it.
package hook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrStop tells Fire to skip the remaining hooks of the event.
var ErrStop = errors.New("hook: stop")

// Event names a point in the game flow.
type Event string

const (
	AfterMove       Event = "after_move"
	AfterTransition Event = "after_transition"
	AfterBattleEnd  Event = "after_battle_end"
	OnSkillLevelUp  Event = "on_skill_level_up"
	OnLevelUp       Event = "on_level_up"
)

// Payload is what every hook receives. Data holds the operation result
// (MoveResult, Rewards and so on).
type Payload struct {
	CharID     int64
	LocationID string
	Data       any
}

// Fn handles one event. Returning ErrStop ends the chain; any other error is
// logged and the chain continues.
type Fn func(ctx context.Context, ev Event, p Payload) error

type entry struct {
	priority int
	name     string
	fn       Fn
}

// Center holds hook registrations. A nil *Center fires nothing.
type Center struct {
	mu     sync.RWMutex
	hooks  map[Event][]*entry
	logger *zap.Logger
}

// NewCenter creates an empty Center.
func NewCenter(logger *zap.Logger) *Center {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Center{hooks: make(map[Event][]*entry), logger: logger}
}

// Register adds fn for ev. Lower priority runs first; equal priorities run in
// registration order. name identifies the hook for Unregister.
func (c *Center) Register(ev Event, priority int, name string, fn Fn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := append(c.hooks[ev], &entry{priority: priority, name: name, fn: fn})
	sort.SliceStable(list, func(i, j int) bool { return list[i].priority < list[j].priority })
	c.hooks[ev] = list
}

// Unregister removes every hook called name from ev.
func (c *Center) Unregister(ev Event, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks[ev] = without(c.hooks[ev], name)
}

// UnregisterAll removes every hook called name.
func (c *Center) UnregisterAll(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ev, list := range c.hooks {
		c.hooks[ev] = without(list, name)
	}
}

func without(list []*entry, name string) []*entry {
	out := list[:0]
	for _, e := range list {
		if e.name != name {
			out = append(out, e)
		}
	}
	return out
}

// Fire runs the hooks of ev in priority order and returns how many ran.
// A panicking hook is logged like a failing one.
func (c *Center) Fire(ctx context.Context, ev Event, p Payload) int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	list := make([]*entry, len(c.hooks[ev]))
	copy(list, c.hooks[ev])
	c.mu.RUnlock()

	ran := 0
	for _, e := range list {
		ran++
		err := c.call(ctx, e, ev, p)
		if errors.Is(err, ErrStop) {
			break
		}
		if err != nil {
			c.logger.Warn("hook failed",
				zap.String("event", string(ev)), zap.String("hook", e.name),
				zap.Int64("char_id", p.CharID), zap.Error(err))
		}
	}
	return ran
}

func (c *Center) call(ctx context.Context, e *entry, ev Event, p Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.fn(ctx, ev, p)
}
