package cmd

import (
	"fmt"
	"os"

	"gar-builder/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gar-builder",
	Short: "Address registry builder",
	Long: `gar-builder turns the national address registry (GAR) into flat per-region address files
with resolved postal codes and administrative hierarchy, and computes change logs
between two exports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// configPath is the directory holding the optional .env file.
var configPath string

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding with debug level gives readable ISO8601 timestamps for CLI errors
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing the .env file")
}
