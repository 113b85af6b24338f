// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli implements the zarc command tree: a small recursive
// Command type that dispatches by positional argument, parses flags
// with pflag, and renders its own help text. It carries no knowledge
// of archives; the subcommand definitions in cmd/zarc supply that.
package cli
