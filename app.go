package main

import (
	"context"
	"fmt"

	"github.com/kasuganosora/roadquest/audit"
	"github.com/kasuganosora/roadquest/cache"
	"github.com/kasuganosora/roadquest/config"
	dbadapter "github.com/kasuganosora/roadquest/db"
	"github.com/kasuganosora/roadquest/game/adventure"
	"github.com/kasuganosora/roadquest/game/battle"
	"github.com/kasuganosora/roadquest/game/encounter"
	"github.com/kasuganosora/roadquest/game/item"
	"github.com/kasuganosora/roadquest/game/movement"
	"github.com/kasuganosora/roadquest/game/player"
	"github.com/kasuganosora/roadquest/game/random"
	"github.com/kasuganosora/roadquest/game/skill"
	"github.com/kasuganosora/roadquest/game/stats"
	"github.com/kasuganosora/roadquest/model"
	"github.com/kasuganosora/roadquest/plugin/hook"
	"github.com/kasuganosora/roadquest/resource"
	"github.com/kasuganosora/roadquest/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is the wired game stack shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	cache   cache.Cache
	audit   *audit.Service
	battles *player.SessionManager
	svc     *adventure.Service
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildApp opens storage, loads catalogs and assembles the adventure service.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	c, err := cache.NewCache(cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	res := resource.NewLoader(cfg.Data.Dir)
	if cfg.Data.Dir != "" {
		if err := res.Load(); err != nil {
			logger.Warn("catalog load warning", zap.Error(err))
		} else {
			logger.Info("catalogs loaded",
				zap.Int("items", len(res.Items)),
				zap.Int("monsters", len(res.Monsters)),
				zap.Int("spawns", len(res.Spawns)),
				zap.Int("locations", len(res.Locations)),
				zap.Int("skills", len(res.Skills)))
			for _, s := range res.DanglingSpawns() {
				logger.Warn("spawn entry references unknown monster",
					zap.Int64("spawn_id", s.ID), zap.String("location_id", s.LocationID), zap.String("monster_id", s.MonsterID))
			}
		}
	}

	// Database rows win; the catalog files fill in whatever the tables lack.
	items := store.NewFallback[model.Item]("item",
		store.NewGorm[model.Item](db, "item", store.Columns{}),
		store.NewMemory[model.Item]("item", res.Items), logger)
	monsters := store.NewFallback[model.Monster]("monster",
		store.NewGorm[model.Monster](db, "monster", store.Columns{Active: "is_active"}),
		store.NewMemory[model.Monster]("monster", res.Monsters), logger)
	spawns := store.NewFallback[model.SpawnEntry]("spawn",
		store.NewGorm[model.SpawnEntry](db, "spawn", store.Columns{Location: "location_id", Active: "is_active"}),
		store.NewMemory[model.SpawnEntry]("spawn", res.Spawns), logger)
	locations := store.NewFallback[model.Location]("location",
		store.NewGorm[model.Location](db, "location", store.Columns{}),
		store.NewMemory[model.Location]("location", res.Locations), logger)

	rng, err := random.New(cfg.Game.RNGSeed)
	if err != nil {
		return nil, err
	}

	battles := player.NewSessionManager(c, cfg.Game.SessionIdleTimeout, logger)
	if n, err := battles.Restore(ctx); err != nil {
		logger.Warn("battle restore failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("battles restored", zap.Int("count", n))
	}

	auditSvc := audit.New(db, logger)

	hooks := hook.NewCenter(logger)
	hooks.Register(hook.OnLevelUp, 100, "audit", auditHook(auditSvc, audit.ActionLevelUp))
	hooks.Register(hook.OnSkillLevelUp, 100, "audit", auditHook(auditSvc, audit.ActionSkillLevelUp))

	svc, err := adventure.New(adventure.Config{
		Characters:   store.NewCharacterRepo(db, items, logger),
		Inventory:    item.NewInventoryService(db, items, logger),
		Locations:    locations,
		SkillCatalog: res,
		Stats:        stats.NewAggregator(c, cfg.Game.BonusCacheTTL, logger),
		Skills:       skill.NewLedger(cfg.Game.SkillExpPerUse, logger),
		Movement: movement.NewEngine(random.NewRoller(rng), movement.Spec{
			Count: cfg.Game.BaseDiceCount,
			Faces: cfg.Game.BaseDiceFaces,
		}),
		Encounters:      encounter.NewSelector(spawns, monsters, rng, logger),
		Battles:         battles,
		Combat:          battle.NewEngine(rng, cfg.Game.SkillExpPerUse, logger),
		Audit:           auditSvc,
		Hooks:           hooks,
		StartLocationID: cfg.Game.StartLocationID,
		Logger:          logger,
	})
	if err != nil {
		auditSvc.Stop(ctx)
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, db: db, cache: c, audit: auditSvc, battles: battles, svc: svc}, nil
}

// auditHook records a hook event in the audit trail.
func auditHook(svc *audit.Service, action string) hook.Fn {
	return func(ctx context.Context, _ hook.Event, p hook.Payload) error {
		id := p.CharID
		svc.Log(audit.Entry{
			TraceID:    audit.TraceFrom(ctx),
			CharID:     &id,
			Action:     action,
			Response:   p.Data,
			LocationID: p.LocationID,
		})
		return nil
	}
}

func (a *app) close(ctx context.Context) {
	a.audit.Stop(ctx)
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("cache close failed", zap.Error(err))
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
