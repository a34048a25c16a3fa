// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads huff configuration.
//
// Configuration comes from a single file named either by the --config
// flag (via [LoadFile] or [Resolve]) or by the HUFF_CONFIG environment
// variable (via [Load]). There is no discovery of files in home or
// system directories. Without a file, [Default] applies.
//
// Files ending in .json or .jsonc are read as JSON with comments;
// everything else is YAML. Both formats share the same keys:
//
//	cipher:
//	  kind: xchacha20poly1305
//	  argon2: {time: 3, memory_kib: 65536, threads: 4}
//	  password_file: ${XDG_RUNTIME_DIR:-/run/user/1000}/huff.pass
//	archive:
//	  workers: 8
//	  exclude: ["**/.git"]
//	log:
//	  level: debug
//
// ${VAR} and ${VAR:-default} are expanded in path fields only. No
// environment variable overrides a config value directly.
package config
