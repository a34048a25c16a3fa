// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/Axonny/HuffmanCoding/cmd/huff/cli"
	"github.com/Axonny/HuffmanCoding/lib/version"
)

type versionParams struct {
	cli.Output
}

func versionCommand(streams cli.Streams) *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Usage:   "huff version [--json]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("version", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("version takes no arguments, got %q", args[0])
			}
			if done, err := params.Emit(streams.Out, version.Current()); done {
				return err
			}
			fmt.Fprintf(streams.Out, "huff %s\n", version.Full())
			return nil
		},
	}
}
