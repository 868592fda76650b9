package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "video-tracker",
		Short: "Screen recording upload and watch analytics service",
		Long: `Stores uploaded screen recordings and tracks how they are watched.

Commands:
- serve:   HTTP API for uploads, view/watch reports and per-video stats
- migrate: create or update the videos and watch_events tables
- consume: apply watch reports arriving on a Kafka topic`,
		SilenceUsage: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); environment variables override it")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(consumeCmd)
}
