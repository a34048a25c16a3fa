// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/Axonny/HuffmanCoding/lib/cipher"
	"github.com/Axonny/HuffmanCoding/lib/codebookcache"
)

// EnvironmentVariable names the variable [Load] reads the config file
// path from.
const EnvironmentVariable = "HUFF_CONFIG"

// DefaultSuffix is appended to a source path to name its archive.
const DefaultSuffix = ".huf"

// Config is the complete huff configuration. Every field has a usable
// default, so an empty file yields [Default].
type Config struct {
	Cipher  CipherConfig  `yaml:"cipher"`
	Archive ArchiveConfig `yaml:"archive"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
}

// CipherConfig selects and tunes the passphrase cipher.
type CipherConfig struct {
	// Kind is "age" or "xchacha20poly1305".
	Kind string `yaml:"kind"`

	// ScryptWorkFactor is the log2 scrypt cost for age archives.
	ScryptWorkFactor int `yaml:"scrypt_work_factor"`

	Argon2 Argon2Config `yaml:"argon2"`

	// PasswordFile is read when no password flag is given. Supports
	// ${VAR} expansion.
	PasswordFile string `yaml:"password_file"`
}

// Argon2Config holds the Argon2id cost used to seal xchacha20poly1305
// archives. Opening always uses the cost recorded in the archive.
type Argon2Config struct {
	Time      uint32 `yaml:"time"`
	MemoryKiB uint32 `yaml:"memory_kib"`
	Threads   uint8  `yaml:"threads"`
}

// ArchiveConfig controls folder compression.
type ArchiveConfig struct {
	Suffix string `yaml:"suffix"`

	// Workers bounds parallel entry encoding. Zero means GOMAXPROCS.
	Workers int `yaml:"workers"`

	// Include and Exclude are doublestar patterns matched against
	// slash-separated paths relative to the compressed folder.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// CacheConfig sizes the codebook cache used when reading archives.
type CacheConfig struct {
	// Codebooks is the number of rebuilt codebooks kept. Zero disables
	// the cache.
	Codebooks int `yaml:"codebooks"`
}

// LogConfig sets the default log level for commands.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Cipher: CipherConfig{
			Kind:             string(cipher.KindAge),
			ScryptWorkFactor: cipher.DefaultScryptWorkFactor,
			Argon2: Argon2Config{
				Time:      cipher.DefaultArgon2.Time,
				MemoryKiB: cipher.DefaultArgon2.MemoryKiB,
				Threads:   cipher.DefaultArgon2.Threads,
			},
		},
		Archive: ArchiveConfig{
			Suffix: DefaultSuffix,
		},
		Cache: CacheConfig{
			Codebooks: codebookcache.DefaultCapacity,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the file named by HUFF_CONFIG. When the variable is unset
// or empty, Load returns [Default].
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Resolve loads the file named by flagPath when it is non-empty and
// falls back to [Load] otherwise.
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	return Load()
}

// LoadFile reads a configuration file. Files ending in .json or .jsonc
// are JSON with comments and trailing commas; anything else is YAML.
// Values not present in the file keep their defaults. Unknown keys are
// an error. The result is expanded and validated.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	config := Default()
	if err := decode(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	config.expandVariables()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// decode unmarshals YAML (a superset of the JSON produced by jsonc)
// into config, rejecting unknown keys. An empty document leaves config
// unchanged.
func decode(data []byte, config *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	kind, err := cipher.ParseKind(c.Cipher.Kind)
	if err != nil {
		errs = append(errs, fmt.Errorf("cipher.kind: %w", err))
	}
	if kind == cipher.KindAge || err != nil {
		if c.Cipher.ScryptWorkFactor < 1 || c.Cipher.ScryptWorkFactor > cipher.MaxScryptWorkFactor {
			errs = append(errs, fmt.Errorf("cipher.scrypt_work_factor: %d is outside 1..%d",
				c.Cipher.ScryptWorkFactor, cipher.MaxScryptWorkFactor))
		}
	}
	if err := c.Argon2().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cipher.argon2: %w", err))
	}

	if c.Archive.Suffix == "" {
		errs = append(errs, errors.New("archive.suffix: must not be empty"))
	} else if strings.ContainsRune(c.Archive.Suffix, '/') {
		errs = append(errs, fmt.Errorf("archive.suffix: %q contains a path separator", c.Archive.Suffix))
	}
	if c.Archive.Workers < 0 {
		errs = append(errs, fmt.Errorf("archive.workers: %d is negative", c.Archive.Workers))
	}
	for _, pattern := range c.Archive.Include {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("archive.include: invalid pattern %q", pattern))
		}
	}
	for _, pattern := range c.Archive.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("archive.exclude: invalid pattern %q", pattern))
		}
	}

	if c.Cache.Codebooks < 0 {
		errs = append(errs, fmt.Errorf("cache.codebooks: %d is negative", c.Cache.Codebooks))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// CipherOptions converts the cipher section into [cipher.Options].
// Call after [Config.Validate].
func (c *Config) CipherOptions() cipher.Options {
	kind, _ := cipher.ParseKind(c.Cipher.Kind)
	return cipher.Options{
		Kind:             kind,
		ScryptWorkFactor: c.Cipher.ScryptWorkFactor,
		Argon2:           c.Argon2(),
	}
}

// Argon2 returns the configured Argon2id cost.
func (c *Config) Argon2() cipher.Argon2Params {
	return cipher.Argon2Params{
		Time:      c.Cipher.Argon2.Time,
		MemoryKiB: c.Cipher.Argon2.MemoryKiB,
		Threads:   c.Cipher.Argon2.Threads,
	}
}

// ParseLevel maps a level name to a [slog.Level]. The empty string is
// info.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown level %q (want debug, info, warn or error)", name)
	}
	return level, nil
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandVariables expands ${VAR} patterns in path-like fields.
func (c *Config) expandVariables() {
	c.Cipher.PasswordFile = expandVars(c.Cipher.PasswordFile)
}

// expandVars replaces ${VAR} with the variable's value and
// ${VAR:-default} with the value or, when unset or empty, the default.
func expandVars(value string) string {
	return varPattern.ReplaceAllStringFunc(value, func(match string) string {
		groups := varPattern.FindStringSubmatch(match)
		name := groups[1]
		fallback := groups[2]
		if resolved := os.Getenv(name); resolved != "" {
			return resolved
		}
		return fallback
	})
}
