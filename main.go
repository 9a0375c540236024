package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "roadquest",
	Short: "Roadquest game server",
	Long:  `Roadquest serves a dice-driven travel and turn-based battle game over HTTP.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config/config.yaml", "path to the YAML config file (empty for defaults)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(spawnsCmd)
}
