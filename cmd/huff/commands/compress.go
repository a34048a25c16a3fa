// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Axonny/HuffmanCoding/cmd/huff/cli"
	"github.com/Axonny/HuffmanCoding/lib/archive"
	"github.com/Axonny/HuffmanCoding/lib/cipher"
)

type compressParams struct {
	globalParams
	cli.Output
	Password passwordParams

	OutputPath string   `flag:"output,o" desc:"archive to write (default: PATH plus archive.suffix)"`
	Cipher     string   `flag:"cipher" desc:"age or xchacha20poly1305; overrides cipher.kind"`
	Include    []string `flag:"include" desc:"only compress paths matching this doublestar glob (repeatable)"`
	Exclude    []string `flag:"exclude" desc:"skip paths matching this doublestar glob (repeatable)"`
	Workers    int      `flag:"workers" desc:"parallel encoders; overrides archive.workers"`
	Force      bool     `flag:"force,f" desc:"overwrite an existing archive"`
}

// compressResult is the machine-readable summary.
type compressResult struct {
	Source      string `json:"source"`
	Archive     string `json:"archive"`
	Entries     int    `json:"entries"`
	InputBytes  int64  `json:"input_bytes"`
	OutputBytes int64  `json:"output_bytes"`
	Encrypted   bool   `json:"encrypted"`
}

func compressCommand(streams cli.Streams) *cli.Command {
	var params compressParams

	return &cli.Command{
		Name:    "compress",
		Summary: "Compress a file or folder into an archive",
		Description: `Compress a file into a single-entry archive, or every regular file
under a folder into one archive whose entries are named by their
slash-separated path relative to the folder.

Each entry carries its own frequency table and content digest. With a
password, each body is encrypted separately after coding. The archive
is written to a temporary file and renamed into place when complete.`,
		Usage: "huff compress PATH [flags]",
		Examples: []cli.Example{
			{
				Description: "Compress a folder, skipping version control metadata",
				Command:     "huff compress ./notes --exclude '**/.git'",
			},
			{
				Description: "Encrypt with a password from a file",
				Command:     "huff compress report.txt --password-file ~/.huff-pass -o report.huf",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("compress", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "PATH"); err != nil {
				return err
			}
			return runCompress(ctx, streams, &params, args[0])
		},
	}
}

func runCompress(ctx context.Context, streams cli.Streams, params *compressParams, source string) error {
	configuration, logger, err := params.setup(streams, "compress")
	if err != nil {
		return err
	}

	cipherOptions := configuration.CipherOptions()
	if params.Cipher != "" {
		kind, err := cipher.ParseKind(params.Cipher)
		if err != nil {
			return fmt.Errorf("--cipher: %w", err)
		}
		cipherOptions.Kind = kind
	}

	include := configuration.Archive.Include
	if len(params.Include) > 0 {
		include = params.Include
	}
	exclude := configuration.Archive.Exclude
	if len(params.Exclude) > 0 {
		exclude = params.Exclude
	}
	if err := archive.ValidatePatterns(append(append([]string{}, include...), exclude...)); err != nil {
		return err
	}
	workers := configuration.Archive.Workers
	if params.Workers > 0 {
		workers = params.Workers
	}

	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	source = filepath.Clean(source)
	output := params.OutputPath
	if output == "" {
		output, err = defaultArchivePath(source, configuration.Archive.Suffix)
		if err != nil {
			return err
		}
	}
	if info.IsDir() && within(source, output) {
		return fmt.Errorf("output %s is inside the folder being compressed", output)
	}
	if !params.Force {
		if _, err := os.Lstat(output); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", output)
		}
	}

	password, err := params.Password.read(streams, configuration, true)
	if err != nil {
		return err
	}
	session, err := openCodec(configuration, cipherOptions, password, false)
	if err != nil {
		return err
	}
	defer session.Close()

	logger = logger.With("source", source, "archive", output)
	summary, err := writeAtomically(output, func(w io.Writer) (archive.Summary, error) {
		if !info.IsDir() {
			return archive.CompressFile(source, session.codec, w)
		}
		return archive.CompressTree(ctx, source, w, archive.CompressOptions{
			Codec:   session.codec,
			Include: include,
			Exclude: exclude,
			Workers: workers,
			Logger:  logger,
		})
	})
	if err != nil {
		return err
	}
	logger.Info("archive written",
		"entries", summary.Entries,
		"input_bytes", summary.InputBytes,
		"output_bytes", summary.OutputBytes,
		"encrypted", session.codec.Encrypted(),
	)

	result := compressResult{
		Source:      source,
		Archive:     output,
		Entries:     summary.Entries,
		InputBytes:  summary.InputBytes,
		OutputBytes: summary.OutputBytes,
		Encrypted:   session.codec.Encrypted(),
	}
	if done, err := params.Emit(streams.Out, result); done {
		return err
	}
	fmt.Fprintf(streams.Out, "%s: %d entries, %d -> %d bytes\n",
		output, summary.Entries, summary.InputBytes, summary.OutputBytes)
	return nil
}

// writeAtomically runs write against a temporary file beside path and
// renames it to path only when write succeeds.
func writeAtomically(path string, write func(io.Writer) (archive.Summary, error)) (archive.Summary, error) {
	directory := filepath.Dir(path)
	temporary, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return archive.Summary{}, err
	}
	committed := false
	defer func() {
		if !committed {
			temporary.Close()
			os.Remove(temporary.Name())
		}
	}()

	summary, err := write(temporary)
	if err != nil {
		return summary, err
	}
	if err := temporary.Chmod(archiveMode(path)); err != nil {
		return summary, err
	}
	if err := temporary.Sync(); err != nil {
		return summary, err
	}
	if err := temporary.Close(); err != nil {
		return summary, err
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		os.Remove(temporary.Name())
		return summary, err
	}
	committed = true
	return summary, nil
}

// archiveMode is the permission of an existing file at path, or 0644
// for a new archive.
func archiveMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return 0o644
}

// defaultArchivePath appends suffix to source. "." and ".." are
// resolved first so the archive is named after the folder.
func defaultArchivePath(source, suffix string) (string, error) {
	if base := filepath.Base(source); base == "." || base == ".." {
		absolute, err := filepath.Abs(source)
		if err != nil {
			return "", err
		}
		source = absolute
	}
	return source + suffix, nil
}

// within reports whether path lies inside directory.
func within(directory, path string) bool {
	absoluteDirectory, err := filepath.Abs(directory)
	if err != nil {
		return false
	}
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	relative, err := filepath.Rel(absoluteDirectory, absolutePath)
	if err != nil {
		return false
	}
	return relative != ".." && !strings.HasPrefix(relative, ".."+string(filepath.Separator))
}
