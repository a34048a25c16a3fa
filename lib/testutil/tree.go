// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
)

// TB is the subset of testing.TB the helpers use.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// WriteTree creates each file of files under directory, keyed by slash
// path, creating parent directories as needed.
//
//	testutil.WriteTree(t, root, map[string]string{
//		"a.txt":     "alpha",
//		"sub/b.txt": "beta",
//	})
func WriteTree(t TB, directory string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(directory, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

// ReadTree returns every regular file under directory keyed by slash
// path relative to it.
func ReadTree(t TB, directory string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := fs.WalkDir(os.DirFS(directory), ".", func(name string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.Type().IsRegular() {
			return err
		}
		data, err := os.ReadFile(filepath.Join(directory, filepath.FromSlash(name)))
		if err != nil {
			return err
		}
		files[name] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("reading tree %s: %v", directory, err)
	}
	return files
}

// RandomBytes returns size pseudo-random bytes determined by seed.
func RandomBytes(seed uint64, size int) []byte {
	source := rand.New(rand.NewPCG(seed, ^seed))
	data := make([]byte, size)
	for i := 0; i < size; i += 8 {
		value := source.Uint64()
		for j := 0; j < 8 && i+j < size; j++ {
			data[i+j] = byte(value >> (8 * j))
		}
	}
	return data
}
