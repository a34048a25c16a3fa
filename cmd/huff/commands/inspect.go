// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/Axonny/HuffmanCoding/cmd/huff/cli"
	"github.com/Axonny/HuffmanCoding/lib/archive"
	"github.com/Axonny/HuffmanCoding/lib/codebookcache"
)

type inspectParams struct {
	globalParams
	cli.Output
}

func inspectCommand(streams cli.Streams) *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Show header fields and code statistics of each entry",
		Description: `Report, for every entry, its header fields and the shape of the
prefix code rebuilt from its stored frequency table: the number of
distinct symbols, the longest code and how many symbols get each code
length. Bodies are never decrypted, so no password is needed.`,
		Usage: "huff inspect ARCHIVE [flags]",
		Examples: []cli.Example{
			{
				Description: "Emit the report as CBOR",
				Command:     "huff inspect notes.huf --cbor > report.cbor",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("inspect", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "ARCHIVE"); err != nil {
				return err
			}
			return runInspect(streams, &params, args[0])
		},
	}
}

func runInspect(streams cli.Streams, params *inspectParams, path string) error {
	configuration, logger, err := params.setup(streams, "inspect")
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cache := codebookcache.New(configuration.Cache.Codebooks)
	reports, err := archive.Inspect(file, cache)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	stats := cache.Stats()
	logger.Debug("codebook cache", "hits", stats.Hits, "misses", stats.Misses)

	if done, err := params.Emit(streams.Out, reports); done {
		return err
	}
	for index, report := range reports {
		if index > 0 {
			fmt.Fprintln(streams.Out)
		}
		if err := writeReport(streams.Out, report); err != nil {
			return err
		}
	}
	return nil
}

func writeReport(w io.Writer, report archive.Report) error {
	fmt.Fprintln(w, report.Filename)
	writer := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "  offset\t%d\n", report.Offset)
	fmt.Fprintf(writer, "  symbols\t%d\n", report.SymbolCount)
	fmt.Fprintf(writer, "  body\t%d bytes (about %d before encryption)\n",
		report.BodyLength, (report.PlainBodyBits+7)/8)
	fmt.Fprintf(writer, "  entry\t%d bytes\n", report.EntryLength)
	fmt.Fprintf(writer, "  digest\t%s\n", report.Digest)
	fmt.Fprintf(writer, "  distinct\t%d\n", report.Distinct)
	fmt.Fprintf(writer, "  max code\t%d bits\n", report.MaxCodeLength)

	var lengths []string
	for length, count := range report.CodeLengths {
		if count > 0 {
			lengths = append(lengths, fmt.Sprintf("%d:%d", length, count))
		}
	}
	fmt.Fprintf(writer, "  code lengths\t%s\n", strings.Join(lengths, " "))
	return writer.Flush()
}
