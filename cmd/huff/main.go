// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// huff compresses files and folders with static Huffman coding.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Axonny/HuffmanCoding/cmd/huff/cli"
	"github.com/Axonny/HuffmanCoding/cmd/huff/commands"
	"github.com/Axonny/HuffmanCoding/lib/process"
)

func main() {
	process.Exit(run())
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root(cli.StandardStreams()).Execute(ctx, os.Args[1:])
}
