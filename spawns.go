package main

import (
	"fmt"

	"github.com/kasuganosora/roadquest/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var spawnsCmd = &cobra.Command{
	Use:   "spawns",
	Short: "Spawn table tools",
}

var spawnsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report over-allocated and empty spawn tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger, err := newLogger(cfg.Server.Debug)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer logger.Sync()

		a, err := buildApp(cmd.Context(), cfg, logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
		if err != nil {
			return err
		}
		defer a.close(cmd.Context())

		warnings, err := a.svc.ValidateSpawns(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range warnings {
			fmt.Fprintf(out, "%-24s %-16s total=%.2f  %s\n", w.LocationID, w.Kind, w.TotalRate, w.Message)
		}
		fmt.Fprintf(out, "%d warning(s)\n", len(warnings))
		return nil
	},
}

func init() {
	spawnsCmd.AddCommand(spawnsValidateCmd)
}
