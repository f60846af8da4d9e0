package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	schemaPath string
)

var rootCmd = &cobra.Command{
	Use:   "qjm-roster",
	Short: "Battle roster console for the QJM wargame service",
	Long:  "qjm-roster assigns formations to attacker and defender rosters by drag and drop and submits them to the wargame service.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/roster.yaml", "Path to roster configuration YAML")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "schemas/roster.cue", "Path to CUE schema file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(catalogCmd)
}
