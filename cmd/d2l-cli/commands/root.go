package commands

import (
	"context"
	"fmt"
	"log/slog"

	"brightspace-helper/internal/application"
	"brightspace-helper/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	dumpDir    *string
)

// service is built once the flags are parsed, every subcommand uses it.
var service *application.Service
var closeService func() error

var rootCmd = &cobra.Command{
	Use:           "d2l-cli",
	Short:         "d2l-cli shows grades, upcoming items and what-if projections of Brightspace courses.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		cfg, err := LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		service, closeService, err = NewService(cmd.Context(), cfg, *dumpDir)
		if err != nil {
			return fmt.Errorf("initialize service: %w", err)
		}
		return nil
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read, <name>.local.json5 is merged on top.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output.")
	dumpDir = rootCmd.PersistentFlags().String("dump", "", "Write every http exchange into this directory.")
}

// release closes whatever PersistentPreRunE opened, it runs whether the command failed or not.
func release() {
	if closeService == nil {
		return
	}
	err := closeService()
	if err != nil {
		slog.Warn("failed to close overrides db", "err", err)
	}
	closeService = nil
}

// ExecuteContext runs the command line and returns the error of the command that failed, it
// has already been logged.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	release()
	if err != nil {
		slog.Error("command failed", "err", err)
	}
	return err
}
