// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/Axonny/HuffmanCoding/cmd/huff/cli"
	"github.com/Axonny/HuffmanCoding/lib/archive"
	"github.com/Axonny/HuffmanCoding/lib/mount"
)

type mountParams struct {
	globalParams
	Password passwordParams

	AllowOther bool `flag:"allow-other" desc:"let other users read the mount (needs user_allow_other in /etc/fuse.conf)"`
}

func mountCommand(streams cli.Streams) *cli.Command {
	var params mountParams

	return &cli.Command{
		Name:    "mount",
		Summary: "Mount an archive as a read-only filesystem",
		Description: `Mount an archive with FUSE so its entries can be read as ordinary
files. Directories are implied by entry names; when a name occurs
more than once the last entry wins. A file is decrypted and decoded
the first time it is opened.

The command runs in the foreground until interrupted, then unmounts.`,
		Usage: "huff mount ARCHIVE MOUNTPOINT [flags]",
		Examples: []cli.Example{
			{
				Description: "Browse an encrypted archive",
				Command:     "huff mount notes.huf /tmp/notes --password-file ~/.huff-pass",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("mount", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "ARCHIVE", "MOUNTPOINT"); err != nil {
				return err
			}
			return runMount(ctx, streams, &params, args[0], args[1])
		},
	}
}

func runMount(ctx context.Context, streams cli.Streams, params *mountParams, path, mountpoint string) error {
	configuration, logger, err := params.setup(streams, "mount")
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return err
	}

	password, err := params.Password.read(streams, configuration, false)
	if err != nil {
		return err
	}
	session, err := openCodec(configuration, configuration.CipherOptions(), password, true)
	if err != nil {
		return err
	}
	defer session.Close()

	fsys, err := archive.OpenFS(file, info.Size(), session.codec)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	logger = logger.With("archive", path, "mountpoint", mountpoint)
	server, err := mount.Mount(mount.Options{
		Mountpoint: mountpoint,
		Source:     fsys,
		Name:       "huff:" + path,
		AllowOther: params.AllowOther,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	served := make(chan struct{})
	go func() {
		server.Wait()
		close(served)
	}()

	select {
	case <-ctx.Done():
		logger.Info("unmounting")
		if err := server.Unmount(); err != nil {
			return fmt.Errorf("unmounting %s: %w", mountpoint, err)
		}
		<-served
	case <-served:
		logger.Info("unmounted externally")
	}
	session.logCacheStats(logger)
	return nil
}
