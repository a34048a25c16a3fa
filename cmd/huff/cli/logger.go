// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger writing to w. When w is
// a terminal it uses slog.TextHandler for human-readable output;
// otherwise slog.JSONHandler, so scripts and CI get one JSON object
// per line.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger(stderr, level).With(
//	    "command", "compress",
//	    "source", path,
//	)
func NewCommandLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if isTerminal(w) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
