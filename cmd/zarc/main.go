// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command zarc packs, inspects, extracts, and mounts Zarc archives.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/zarcfile/zarc/cmd/zarc/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var configPath string
	var insecure bool
	var logLevel string

	globalFlags := pflag.NewFlagSet("zarc", pflag.ContinueOnError)
	globalFlags.StringVar(&configPath, "config", DefaultConfigPath(), "path to zarc's JSONC config file")
	globalFlags.BoolVar(&insecure, "insecure", false, "downgrade archive verification failures to warnings")
	globalFlags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, or error")
	globalFlags.SetOutput(os.Stderr)
	// Stop at the first non-flag argument (the subcommand name): global
	// flags must precede the subcommand, so a subcommand's own flags of
	// the same name (e.g. unpack's --insecure) are never shadowed here.
	globalFlags.SetInterspersed(false)
	if err := globalFlags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, "zarc:", err)
		return 1
	}
	args = globalFlags.Args()

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "zarc:", err)
		return 1
	}
	if insecure {
		cfg.Insecure = true
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(logLevel),
	}))

	root := &cli.Command{
		Name:    "zarc",
		Summary: "Pack, inspect, extract, and mount Zarc archives",
		Subcommands: []*cli.Command{
			packCommand(&cfg),
			unpackCommand(&cfg),
			listFilesCommand(&cfg),
			debugCommand(&cfg),
			mountCommand(&cfg),
		},
	}

	if err := root.Execute(context.Background(), args, logger); err != nil {
		fmt.Fprintln(os.Stderr, "zarc:", err)
		return 1
	}
	return 0
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
