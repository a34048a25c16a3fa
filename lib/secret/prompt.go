// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by [Prompt] when the input is not an
// interactive terminal.
var ErrNotTerminal = errors.New("secret: password prompt requires a terminal")

// ErrMismatch is returned by [Prompt] when the confirmation differs
// from the first entry.
var ErrMismatch = errors.New("secret: passwords do not match")

// PromptOptions configures [Prompt].
type PromptOptions struct {
	// Input is the terminal to read from. Defaults to os.Stdin.
	Input *os.File

	// Output receives the prompt text. Defaults to os.Stderr.
	Output io.Writer

	// Confirm asks for the password twice and fails on mismatch. Use
	// it when the password will encrypt something new.
	Confirm bool
}

// Prompt reads a password from the terminal without echo.
func Prompt(label string, options PromptOptions) (*Buffer, error) {
	input := options.Input
	if input == nil {
		input = os.Stdin
	}
	output := options.Output
	if output == nil {
		output = os.Stderr
	}
	if !term.IsTerminal(int(input.Fd())) {
		return nil, ErrNotTerminal
	}

	first, err := readNoEcho(input, output, label+": ")
	if err != nil {
		return nil, err
	}
	if !options.Confirm {
		return first, nil
	}

	second, err := readNoEcho(input, output, "Confirm "+label+": ")
	if err != nil {
		first.Close()
		return nil, err
	}
	defer second.Close()
	if !first.Equal(second) {
		first.Close()
		return nil, ErrMismatch
	}
	return first, nil
}

func readNoEcho(input *os.File, output io.Writer, prompt string) (*Buffer, error) {
	fmt.Fprint(output, prompt)
	data, err := term.ReadPassword(int(input.Fd()))
	fmt.Fprintln(output)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return fromTrimmed(data)
}
