// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/Axonny/HuffmanCoding/cmd/huff/cli"
	"github.com/Axonny/HuffmanCoding/lib/compare"
)

type statsParams struct {
	globalParams
	cli.Output
}

func statsCommand(streams cli.Streams) *cli.Command {
	var params statsParams

	return &cli.Command{
		Name:    "stats",
		Summary: "Compare Huffman coding of a file with zstd and LZ4",
		Description: `Compute the order-0 entropy of a file and the sizes it compresses to
as a huff entry, as a bare Huffman body, and with zstd and LZ4 for
reference. Nothing is written.`,
		Usage: "huff stats FILE [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("stats", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "FILE"); err != nil {
				return err
			}
			return runStats(streams, &params, args[0])
		},
	}
}

func runStats(streams cli.Streams, params *statsParams, path string) error {
	if _, _, err := params.setup(streams, "stats"); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	comparison, err := compare.Analyze(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if done, err := params.Emit(streams.Out, comparison); done {
		return err
	}

	fmt.Fprintf(streams.Out, "%s: %d bytes, %d distinct symbols, %.3f bits/byte entropy (bound %d bytes)\n",
		path, comparison.InputBytes, comparison.Distinct, comparison.EntropyBits, comparison.EntropyBytes)
	writer := tabwriter.NewWriter(streams.Out, 2, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "METHOD\tBYTES\tRATIO\n")
	for _, result := range comparison.Results {
		note := ""
		if result.Incompressible {
			note = " (stored)"
		}
		fmt.Fprintf(writer, "%s\t%d\t%.3f%s\n", result.Method, result.Bytes, result.Ratio, note)
	}
	return writer.Flush()
}
