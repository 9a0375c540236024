// Package player keeps the per-character runtime state that lives between
// requests: the battle each character is currently fighting.
package player

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/cache"
	"github.com/kasuganosora/roadquest/game/battle"
	"go.uber.org/zap"
)

const (
	keyBattle       = "battle:%d"
	keyActiveBattle = "battle:active"

	// DefaultIdleTimeout applies when the manager is built with a zero timeout.
	DefaultIdleTimeout = 15 * time.Minute
)

type entry struct {
	mu      sync.Mutex
	session *battle.Session
	settled atomic.Bool
	gone    atomic.Bool
}

// SessionManager is the registry of ongoing battles, one per character.
// Snapshots are mirrored to the cache after every change so a restarted
// process can pick them up again with Restore.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[int64]*entry // charID → battle
	cache    cache.Cache
	idle     time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewSessionManager creates a SessionManager. c may be nil, in which case
// sessions only live in memory.
func NewSessionManager(c cache.Cache, idle time.Duration, logger *zap.Logger) *SessionManager {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		sessions: make(map[int64]*entry),
		cache:    c,
		idle:     idle,
		now:      time.Now,
		logger:   logger,
	}
}

// Register adds s as the character's battle. A second battle while the
// previous one is not settled is rejected with CONFLICT; a settled one is
// replaced.
func (sm *SessionManager) Register(ctx context.Context, s *battle.Session) error {
	sm.mu.Lock()
	if old, ok := sm.sessions[s.CharacterID]; ok && !old.settled.Load() {
		sm.mu.Unlock()
		return apperr.Conflictf("character %d is already in battle", s.CharacterID)
	}
	e := &entry{session: s}
	e.settled.Store(s.Settled())
	sm.sessions[s.CharacterID] = e
	sm.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	sm.persist(ctx, s)
	if sm.cache != nil {
		if err := sm.cache.SAdd(ctx, keyActiveBattle, strconv.FormatInt(s.CharacterID, 10)); err != nil {
			sm.logger.Warn("battle index write failed", zap.Int64("char_id", s.CharacterID), zap.Error(err))
		}
	}
	sm.logger.Info("battle registered",
		zap.Int64("char_id", s.CharacterID),
		zap.String("battle_id", s.ID),
		zap.String("monster_id", s.MonsterID))
	return nil
}

// Do runs fn with exclusive access to the character's battle, settled or
// not, and saves the snapshot afterwards, also when fn fails. Returns
// INVALID_STATE when there is no battle, including one dropped by GC.
func (sm *SessionManager) Do(ctx context.Context, charID int64, fn func(s *battle.Session) error) error {
	sm.mu.RLock()
	e, ok := sm.sessions[charID]
	sm.mu.RUnlock()
	if !ok {
		return apperr.InvalidStatef("character %d has no battle", charID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone.Load() {
		return apperr.InvalidStatef("character %d has no battle", charID)
	}
	err := fn(e.session)
	e.settled.Store(e.session.Settled())
	sm.persist(ctx, e.session)
	return err
}

// Unregister drops the character's battle from memory and cache. It must not
// be called from inside a Do callback.
func (sm *SessionManager) Unregister(ctx context.Context, charID int64) {
	sm.mu.Lock()
	e, ok := sm.sessions[charID]
	delete(sm.sessions, charID)
	sm.mu.Unlock()
	if !ok {
		return
	}
	e.mu.Lock()
	e.gone.Store(true)
	battleID := e.session.ID
	e.mu.Unlock()
	sm.forget(ctx, charID)
	sm.logger.Info("battle unregistered", zap.Int64("char_id", charID), zap.String("battle_id", battleID))
}

// IsActive reports whether the character has a battle that is not settled.
func (sm *SessionManager) IsActive(charID int64) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	e, ok := sm.sessions[charID]
	return ok && !e.settled.Load()
}

// Count returns the number of registered battles.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// GC drops battles untouched for longer than the idle timeout and returns
// the affected character ids. Abandoned battles have no effect on the character.
func (sm *SessionManager) GC(ctx context.Context) []int64 {
	cutoff := sm.now().Add(-sm.idle)

	sm.mu.Lock()
	var expired []int64
	for charID, e := range sm.sessions {
		if !e.mu.TryLock() {
			continue // in use
		}
		if e.session.UpdatedAt.Before(cutoff) {
			e.gone.Store(true)
			delete(sm.sessions, charID)
			expired = append(expired, charID)
		}
		e.mu.Unlock()
	}
	sm.mu.Unlock()

	for _, charID := range expired {
		sm.forget(ctx, charID)
	}
	if len(expired) > 0 {
		sm.logger.Info("idle battles expired", zap.Int("count", len(expired)), zap.Int("remaining", sm.Count()))
	}
	return expired
}

// Restore reloads unsettled battles from the cache. Snapshots that are
// missing, unreadable or settled are dropped from the index.
func (sm *SessionManager) Restore(ctx context.Context) (int, error) {
	if sm.cache == nil {
		return 0, nil
	}
	ids, err := sm.cache.SMembers(ctx, keyActiveBattle)
	if err != nil {
		return 0, apperr.Wrap(err, "list active battles")
	}
	restored := 0
	for _, id := range ids {
		charID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			_ = sm.cache.SRem(ctx, keyActiveBattle, id)
			continue
		}
		raw, err := sm.cache.Get(ctx, fmt.Sprintf(keyBattle, charID))
		if err != nil {
			if !cache.IsMiss(err) {
				sm.logger.Warn("battle snapshot read failed", zap.Int64("char_id", charID), zap.Error(err))
			}
			_ = sm.cache.SRem(ctx, keyActiveBattle, id)
			continue
		}
		var s battle.Session
		if err := json.Unmarshal([]byte(raw), &s); err != nil || s.Settled() || s.CharacterID != charID {
			sm.forget(ctx, charID)
			continue
		}
		if s.SkillExp == nil {
			s.SkillExp = make(map[string]int)
		}
		sm.mu.Lock()
		if _, exists := sm.sessions[charID]; !exists {
			e := &entry{session: &s}
			sm.sessions[charID] = e
			restored++
		}
		sm.mu.Unlock()
	}
	if restored > 0 {
		sm.logger.Info("battles restored from cache", zap.Int("count", restored))
	}
	return restored, nil
}

func (sm *SessionManager) persist(ctx context.Context, s *battle.Session) {
	if sm.cache == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		sm.logger.Error("battle snapshot encode failed", zap.String("battle_id", s.ID), zap.Error(err))
		return
	}
	if err := sm.cache.Set(ctx, fmt.Sprintf(keyBattle, s.CharacterID), string(data), sm.idle); err != nil {
		sm.logger.Warn("battle snapshot write failed", zap.Int64("char_id", s.CharacterID), zap.Error(err))
	}
}

func (sm *SessionManager) forget(ctx context.Context, charID int64) {
	if sm.cache == nil {
		return
	}
	if err := sm.cache.Del(ctx, fmt.Sprintf(keyBattle, charID)); err != nil {
		sm.logger.Warn("battle snapshot delete failed", zap.Int64("char_id", charID), zap.Error(err))
	}
	_ = sm.cache.SRem(ctx, keyActiveBattle, strconv.FormatInt(charID, 10))
}
