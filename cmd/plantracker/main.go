package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AbelardoOk/PlanTracker/internal/telemetry"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "plantracker",
	Short: "PlanTracker API - plant-pollinator field records",
	Long: `PlanTracker records research projects, the plants observed in them and the
visitors (pollinators) seen on each plant, and exports the observations.

Configuration is read from config.yaml, .env and PLANTRACKER_* variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "plantracker version %s\n", telemetry.Version)
	},
}
