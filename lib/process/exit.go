// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exitCoder is implemented by errors that carry their own exit status
// and whose message has already been reported.
type exitCoder interface {
	ExitCode() int
}

// Exit ends the process with the status err calls for: zero for nil,
// the carried code for an error with an ExitCode method (printing
// nothing), and 1 with the message on stderr for anything else.
func Exit(err error) {
	os.Exit(Report(os.Stderr, err))
}

// Report writes err to w unless it carries its own exit code, and
// returns the exit status for it.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}
