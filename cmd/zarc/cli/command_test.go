// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCommandExecuteDispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "zarc",
		Subcommands: []*Command{
			{
				Name: "pack",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "pack"
					return nil
				},
			},
			{
				Name: "unpack",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "unpack"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"unpack"}, discardLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "unpack" {
		t.Errorf("dispatched to %q, want %q", called, "unpack")
	}
}

func TestCommandExecuteNestedSubcommands(t *testing.T) {
	var receivedArgs []string

	root := &Command{
		Name: "zarc",
		Subcommands: []*Command{
			{
				Name: "debug",
				Subcommands: []*Command{
					{
						Name: "frames",
						Run: func(_ context.Context, args []string, _ *slog.Logger) error {
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"debug", "frames", "extra-arg"}, discardLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra-arg" {
		t.Errorf("args = %v, want [extra-arg]", receivedArgs)
	}
}

func TestCommandExecuteFlagParsing(t *testing.T) {
	var gotGlob string

	fs := pflag.NewFlagSet("list-files", pflag.ContinueOnError)
	globFlag := fs.String("glob", "", "filter by glob pattern")

	root := &Command{
		Name:  "list-files",
		Flags: func() *pflag.FlagSet { return fs },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			gotGlob = *globFlag
			return nil
		},
	}

	if err := root.Execute(context.Background(), []string{"--glob", "*.txt"}, discardLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if gotGlob != "*.txt" {
		t.Errorf("glob = %q, want %q", gotGlob, "*.txt")
	}
}

func TestCommandExecuteUnknownCommandSuggestsClosestMatch(t *testing.T) {
	root := &Command{
		Name: "zarc",
		Subcommands: []*Command{
			{Name: "pack", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), []string{"pakc"}, discardLogger())
	if err == nil {
		t.Fatal("expected an error for an unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "pack"?`) {
		t.Errorf("error = %q, want it to suggest %q", err.Error(), "pack")
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"pack", "pack", 0},
		{"pakc", "pack", 2},
		{"unpack", "pack", 2},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
