// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the huff command tree.
package commands

import (
	"github.com/Axonny/HuffmanCoding/cmd/huff/cli"
)

// Root builds the complete huff command tree writing through streams.
func Root(streams cli.Streams) *cli.Command {
	return &cli.Command{
		Name: "huff",
		Description: `huff: static Huffman compression with per-entry integrity and
optional password encryption.

An archive is a plain concatenation of self-describing entries, so
archives can be joined with cat and a new entry appended to the end.`,
		HelpOutput: streams.Err,
		Subcommands: []*cli.Command{
			compressCommand(streams),
			decompressCommand(streams),
			listCommand(streams),
			inspectCommand(streams),
			statsCommand(streams),
			mountCommand(streams),
			versionCommand(streams),
		},
	}
}
