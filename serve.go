package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/roadquest/api/rest"
	"github.com/kasuganosora/roadquest/config"
	mw "github.com/kasuganosora/roadquest/middleware"
	"github.com/kasuganosora/roadquest/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP game server",
	RunE:  runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override server.port")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	logger, err := newLogger(cfg.Server.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker(scheduler.JobBattleSessionGC, cfg.Game.SessionGCInterval, func(ctx context.Context) {
		if ids := a.svc.ExpireBattles(ctx); len(ids) > 0 {
			logger.Info("idle battles expired", zap.Int64s("char_ids", ids))
		}
	})
	sched.AddTicker(scheduler.JobSpawnTableAudit, cfg.Game.SpawnAuditInterval, func(ctx context.Context) {
		warnings, err := a.svc.ValidateSpawns(ctx)
		if err != nil {
			logger.Error("spawn table audit failed", zap.Error(err))
			return
		}
		for _, w := range warnings {
			logger.Warn("spawn table warning",
				zap.String("location_id", w.LocationID),
				zap.String("kind", string(w.Kind)),
				zap.Float64("total_rate", w.TotalRate))
		}
	})

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))
	rest.Register(r, a.svc, rest.RouterConfig{
		AdminKey: cfg.Server.AdminKey,
		AdminIPs: cfg.Security.AdminIPs,
		Sched:    sched,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
