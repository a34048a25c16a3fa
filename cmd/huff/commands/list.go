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
	"github.com/Axonny/HuffmanCoding/lib/archive"
)

type listParams struct {
	globalParams
	cli.Output

	Long bool `flag:"long,l" desc:"show offset, sizes and digest"`
}

// listRow is one entry in machine-readable output.
type listRow struct {
	Filename    string `json:"filename"`
	Offset      int64  `json:"offset"`
	Size        uint32 `json:"size"`
	BodyLength  uint32 `json:"body_length"`
	EntryLength int64  `json:"entry_length"`
	Digest      string `json:"digest"`
}

func listCommand(streams cli.Streams) *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List entry names in append order",
		Description: `List the entries of an archive in the order they were appended.
Only headers are read, so listing needs no password and is fast even
for large archives. A name may appear more than once; extraction and
mount use the last occurrence.`,
		Usage: "huff list ARCHIVE [flags]",
		Examples: []cli.Example{
			{
				Description: "Show sizes and digests",
				Command:     "huff list notes.huf -l",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "ARCHIVE"); err != nil {
				return err
			}
			return runList(streams, &params, args[0])
		},
	}
}

func runList(streams cli.Streams, params *listParams, path string) error {
	if _, _, err := params.setup(streams, "list"); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	listings, err := archive.List(file)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	rows := make([]listRow, 0, len(listings))
	for _, listing := range listings {
		rows = append(rows, listRow{
			Filename:    listing.Filename,
			Offset:      listing.Offset,
			Size:        listing.SymbolCount,
			BodyLength:  listing.BodyLength,
			EntryLength: listing.EntrySize(),
			Digest:      listing.Digest.String(),
		})
	}
	if done, err := params.Emit(streams.Out, rows); done {
		return err
	}

	if !params.Long {
		for _, row := range rows {
			fmt.Fprintln(streams.Out, row.Filename)
		}
		return nil
	}
	writer := tabwriter.NewWriter(streams.Out, 2, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(writer, "OFFSET\tSIZE\tBODY\tDIGEST\t NAME\n")
	for _, row := range rows {
		fmt.Fprintf(writer, "%d\t%d\t%d\t%s\t %s\n", row.Offset, row.Size, row.BodyLength, row.Digest, row.Filename)
	}
	return writer.Flush()
}
