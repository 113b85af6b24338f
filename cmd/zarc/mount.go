// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/zarcfile/zarc/cmd/zarc/cli"
	"github.com/zarcfile/zarc/lib/archive"
	"github.com/zarcfile/zarc/lib/archivefs"
)

func mountCommand(globalConfig *Config) *cli.Command {
	var allowOther bool

	fs := pflag.NewFlagSet("mount", pflag.ContinueOnError)
	fs.BoolVar(&allowOther, "allow-other", false, "allow other users to access the mount (requires user_allow_other in /etc/fuse.conf)")

	return &cli.Command{
		Name:    "mount",
		Summary: "Mount an archive read-only as a FUSE filesystem",
		Usage:   "zarc mount <archive.zarc> <mountpoint>",
		Flags:   func() *pflag.FlagSet { return fs },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: zarc mount <archive.zarc> <mountpoint>")
			}
			return runMount(ctx, args[0], args[1], allowOther, *globalConfig, logger)
		},
	}
}

func runMount(ctx context.Context, archivePath, mountpoint string, allowOther bool, cfg Config, logger *slog.Logger) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stating %s: %w", archivePath, err)
	}

	reader, err := archive.Open(f, stat.Size(), archive.OpenOptions{Insecure: cfg.Insecure})
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	server, err := archivefs.Mount(archivefs.Options{
		Mountpoint: mountpoint,
		Archive:    reader,
		AllowOther: allowOther,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
		case <-signalChan:
		}
		_ = server.Unmount()
	}()

	server.Wait()
	return nil
}
