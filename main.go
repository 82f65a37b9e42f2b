// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/danielhkuo/quickly-vote/cliparse"
)

const programName = "quickly-vote"

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

// loadConfig parses the flags of a subcommand. ok is false when only
// help was requested.
func loadConfig(args []string) (cfg cliparse.Config, ok bool, err error) {
	cfg, err = cliparse.ParseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, err
	}
	return cfg, true, nil
}

// commonRun installs the process-wide logger and sizes GOMAXPROCS
func commonRun(cfg cliparse.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: cfg.Debug,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)

	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	return logger
}

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Multi-round permissioned voting service",
		Long: programName + ` runs voting sessions through voter registration,
proposal registration, voting and tally. Without a subcommand it serves
the HTTP API.`,
		// Flags are parsed by cliparse so env, .env and YAML layering stay
		// in one place
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE:               serveRun,
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
