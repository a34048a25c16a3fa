// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"os"
)

// Streams are the standard streams a command tree reads and writes.
// Tests substitute buffers for Out and Err.
type Streams struct {
	// In is where passwords are prompted for. It must be a terminal
	// for prompting to work.
	In *os.File

	// Out receives command results.
	Out io.Writer

	// Err receives logs, prompts and help.
	Err io.Writer
}

// StandardStreams returns the process's stdin, stdout and stderr.
func StandardStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}
