// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/zarcfile/zarc/cmd/zarc/cli"
	"github.com/zarcfile/zarc/lib/archive"
	"github.com/zarcfile/zarc/lib/directory"
)

func listFilesCommand(globalConfig *Config) *cli.Command {
	var glob string
	var asJSON bool

	fs := pflag.NewFlagSet("list-files", pflag.ContinueOnError)
	fs.StringVar(&glob, "glob", "", "only list files whose path matches this glob pattern")
	fs.BoolVar(&asJSON, "json", false, "print entries as a JSON array instead of a table")

	return &cli.Command{
		Name:    "list-files",
		Summary: "List the files recorded in an archive",
		Usage:   "zarc list-files <archive.zarc> [--glob PATTERN] [--json]",
		Examples: []cli.Example{
			{Description: "List every .txt file", Command: `zarc list-files release.zarc --glob "*.txt"`},
		},
		Flags: func() *pflag.FlagSet { return fs },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: zarc list-files <archive.zarc> [--glob PATTERN] [--json]")
			}
			return runListFiles(args[0], glob, asJSON, *globalConfig)
		},
	}
}

type listedFile struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
	Size uint64 `json:"size"`
}

func runListFiles(archivePath, glob string, asJSON bool, cfg Config) error {
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

	var matched []listedFile
	for _, entry := range reader.Files() {
		joined := directory.JoinedPath(entry.Path)
		if glob != "" {
			ok, err := path.Match(glob, joined)
			if err != nil {
				return fmt.Errorf("invalid --glob pattern %q: %w", glob, err)
			}
			if !ok {
				continue
			}
		}
		matched = append(matched, listedFile{
			Path: joined,
			Kind: entryKind(entry),
			Size: entry.Size,
		})
	}

	if asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		return json.NewEncoder(os.Stdout).Encode(matched)
	}
	printFileTable(matched)
	return nil
}

func entryKind(entry directory.FileEntry) string {
	if entry.Special == nil {
		return "file"
	}
	return entry.Special.Kind.String()
}

func printFileTable(files []listedFile) {
	// lipgloss.NewStyle alone autodetects color support from os.Stdout at
	// package init, before runListFiles has had a chance to check
	// term.IsTerminal. Route through a renderer with an explicit profile
	// so the table's colors match the terminal check already performed.
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.ANSI256))
	headerStyle := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	kindStyle := renderer.NewStyle().Foreground(lipgloss.Color("8"))

	pathWidth := len("PATH")
	for _, file := range files {
		if len(file.Path) > pathWidth {
			pathWidth = len(file.Path)
		}
	}

	fmt.Println(headerStyle.Render(padRight("PATH", pathWidth)) + "  " +
		headerStyle.Render(padRight("KIND", 10)) + "  " +
		headerStyle.Render("SIZE"))

	for _, file := range files {
		size := ""
		if file.Kind == "file" {
			size = strconv.FormatUint(file.Size, 10)
		}
		fmt.Println(padRight(file.Path, pathWidth) + "  " +
			kindStyle.Render(padRight(file.Kind, 10)) + "  " + size)
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
