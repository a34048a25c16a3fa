// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/Axonny/HuffmanCoding/cmd/huff/cli"
	"github.com/Axonny/HuffmanCoding/lib/archive"
	"github.com/Axonny/HuffmanCoding/lib/entry"
)

type decompressParams struct {
	globalParams
	cli.Output
	Password passwordParams

	Directory string `flag:"directory,C" default:"." desc:"directory to extract into"`
}

// extractResult is one entry's outcome in machine-readable output.
type extractResult struct {
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	Error    string `json:"error,omitempty"`
}

func decompressCommand(streams cli.Streams) *cli.Command {
	var params decompressParams

	return &cli.Command{
		Name:    "decompress",
		Summary: "Extract every entry of an archive",
		Description: `Extract every entry of an archive into a directory, recreating the
folder structure implied by entry names.

Entries are independent: an entry that fails to decrypt or whose
content digest does not match is reported and skipped, and the rest
are still extracted. A failed entry never leaves a partial file. The
exit status is 2 when any entry failed and 1 when the archive itself
is malformed.`,
		Usage: "huff decompress ARCHIVE [flags]",
		Examples: []cli.Example{
			{
				Description: "Extract into ./restored",
				Command:     "huff decompress notes.huf -C restored",
			},
			{
				Description: "Extract an encrypted archive, prompting for the password",
				Command:     "huff decompress secret.huf -p",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("decompress", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "ARCHIVE"); err != nil {
				return err
			}
			return runDecompress(ctx, streams, &params, args[0])
		},
	}
}

func runDecompress(ctx context.Context, streams cli.Streams, params *decompressParams, path string) error {
	configuration, logger, err := params.setup(streams, "decompress")
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	password, err := params.Password.read(streams, configuration, false)
	if err != nil {
		return err
	}
	session, err := openCodec(configuration, configuration.CipherOptions(), password, true)
	if err != nil {
		return err
	}
	defer session.Close()

	logger = logger.With("archive", path, "directory", params.Directory)
	results, extractErr := archive.Extract(ctx, bufio.NewReader(file), params.Directory, archive.ExtractOptions{
		Codec:  session.codec,
		Logger: logger,
	})
	session.logCacheStats(logger)

	failed := archive.Failed(results)
	rows := make([]extractResult, 0, len(results))
	for _, result := range results {
		row := extractResult{Filename: result.Filename, Size: result.Size}
		if result.Err != nil {
			row.Error = result.Err.Error()
			fmt.Fprintf(streams.Err, "huff: %s: %s\n", result.Filename, describeFailure(result.Err))
		}
		rows = append(rows, row)
	}
	if extractErr != nil {
		return fmt.Errorf("%s: %w", path, extractErr)
	}

	logger.Info("archive extracted", "entries", len(results), "failed", failed)
	done, err := params.Emit(streams.Out, rows)
	if err != nil {
		return err
	}
	if !done {
		fmt.Fprintf(streams.Out, "%d of %d entries extracted to %s\n", len(results)-failed, len(results), params.Directory)
	}

	if failed > 0 {
		return &cli.ExitError{Code: 2}
	}
	return nil
}

// describeFailure phrases an entry failure for a person.
func describeFailure(err error) string {
	if entry.IsWrongPassword(err) {
		return "cannot decrypt: wrong password, or the entry was not encrypted with one"
	}
	return err.Error()
}
