// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Axonny/HuffmanCoding/cmd/huff/cli"
	"github.com/Axonny/HuffmanCoding/lib/cipher"
	"github.com/Axonny/HuffmanCoding/lib/codebookcache"
	"github.com/Axonny/HuffmanCoding/lib/config"
	"github.com/Axonny/HuffmanCoding/lib/entry"
	"github.com/Axonny/HuffmanCoding/lib/secret"
)

// globalParams are accepted by every command that reads configuration.
type globalParams struct {
	ConfigPath string `flag:"config" desc:"configuration file (YAML, or JSON with comments for .json/.jsonc); overrides HUFF_CONFIG"`
	LogLevel   string `flag:"log-level" desc:"debug, info, warn or error; overrides log.level"`
}

// setup loads the configuration and builds the command's logger.
func (g *globalParams) setup(streams cli.Streams, command string) (*config.Config, *slog.Logger, error) {
	configuration, err := config.Resolve(g.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	levelName := configuration.Log.Level
	if g.LogLevel != "" {
		levelName = g.LogLevel
	}
	level, err := config.ParseLevel(levelName)
	if err != nil {
		return nil, nil, fmt.Errorf("--log-level: %w", err)
	}
	logger := cli.NewCommandLogger(streams.Err, level).With("command", command)
	return configuration, logger, nil
}

// passwordParams selects where the password comes from. It binds its
// own flags so the -p shorthand and the mutual exclusion live in one
// place.
type passwordParams struct {
	File   string
	Prompt bool
}

func (p *passwordParams) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.File, "password-file", "", `read the password from a file ("-" for the first line of stdin)`)
	flagSet.BoolVarP(&p.Prompt, "password", "p", false, "prompt for the password on the terminal")
}

// read returns the password, or nil when none was requested by flag or
// by cipher.password_file. confirm asks twice when prompting.
func (p *passwordParams) read(streams cli.Streams, configuration *config.Config, confirm bool) (*secret.Buffer, error) {
	if p.File != "" && p.Prompt {
		return nil, errors.New("--password-file and --password are mutually exclusive")
	}
	switch {
	case p.Prompt:
		buffer, err := secret.Prompt("Password", secret.PromptOptions{
			Input:   streams.In,
			Output:  streams.Err,
			Confirm: confirm,
		})
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		return buffer, nil
	case p.File != "":
		return secret.ReadFromPath(p.File)
	case configuration.Cipher.PasswordFile != "":
		return secret.ReadFromPath(configuration.Cipher.PasswordFile)
	}
	return nil, nil
}

// codecSession owns a codec together with the password and cipher
// behind it.
type codecSession struct {
	codec      *entry.Codec
	codebooks  *codebookcache.Cache
	password   *secret.Buffer
	passphrase *cipher.Passphrase
}

// openCodec builds the codec for a command. A nil password yields an
// unencrypted codec. Decoding commands get a codebook cache sized by
// cache.codebooks.
func openCodec(configuration *config.Config, options cipher.Options, password *secret.Buffer, cached bool) (*codecSession, error) {
	session := &codecSession{password: password}
	codecOptions := entry.Options{}
	if password != nil {
		passphrase, err := cipher.NewPassphrase(password, options)
		if err != nil {
			password.Close()
			return nil, err
		}
		session.passphrase = passphrase
		codecOptions.Cipher = passphrase
	}
	if cached && configuration.Cache.Codebooks > 0 {
		session.codebooks = codebookcache.New(configuration.Cache.Codebooks)
		codecOptions.Codebooks = session.codebooks
	}
	session.codec = entry.NewCodec(codecOptions)
	return session, nil
}

func (s *codecSession) Close() {
	if s.passphrase != nil {
		s.passphrase.Close()
	}
	if s.password != nil {
		s.password.Close()
	}
}

// logCacheStats reports codebook reuse at debug level.
func (s *codecSession) logCacheStats(logger *slog.Logger) {
	if s.codebooks == nil {
		return
	}
	stats := s.codebooks.Stats()
	logger.Debug("codebook cache", "hits", stats.Hits, "misses", stats.Misses)
}

// requireArgs checks the positional argument count.
func requireArgs(args []string, names ...string) error {
	if len(args) != len(names) {
		return fmt.Errorf("expected arguments %s, got %d argument(s)", strings.Join(names, " "), len(args))
	}
	return nil
}
