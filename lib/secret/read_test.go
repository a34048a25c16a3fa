// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFromPath(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"plain", "hunter2", "hunter2"},
		{"trailing newline", "hunter2\n", "hunter2"},
		{"surrounding whitespace", "  hunter2 \t\n", "hunter2"},
		{"inner spaces kept", "correct horse battery\n", "correct horse battery"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(tempDir, test.name)
			if err := os.WriteFile(path, []byte(test.content), 0600); err != nil {
				t.Fatalf("writing password file: %v", err)
			}
			result, err := ReadFromPath(path)
			if err != nil {
				t.Fatalf("ReadFromPath: %v", err)
			}
			defer result.Close()
			if result.String() != test.expected {
				t.Errorf("ReadFromPath = %q, want %q", result.String(), test.expected)
			}
		})
	}
}

func TestReadFromPathErrors(t *testing.T) {
	tempDir := t.TempDir()
	empty := filepath.Join(tempDir, "empty")
	whitespace := filepath.Join(tempDir, "whitespace")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if err := os.WriteFile(whitespace, []byte("  \n\t\n"), 0600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	for _, path := range []string{filepath.Join(tempDir, "missing"), empty, whitespace} {
		if buffer, err := ReadFromPath(path); err == nil {
			buffer.Close()
			t.Errorf("ReadFromPath(%s) succeeded", filepath.Base(path))
		}
	}
}

func TestReadFirstLine(t *testing.T) {
	buffer, err := readFirstLine(strings.NewReader("first line\nsecond line\n"))
	if err != nil {
		t.Fatalf("readFirstLine: %v", err)
	}
	defer buffer.Close()
	if buffer.String() != "first line" {
		t.Errorf("readFirstLine = %q, want %q", buffer.String(), "first line")
	}

	if _, err := readFirstLine(strings.NewReader("")); err == nil {
		t.Error("readFirstLine on empty input succeeded")
	}
}
