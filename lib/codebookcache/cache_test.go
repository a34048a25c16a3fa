// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codebookcache

import (
	"sync"
	"testing"

	"github.com/Axonny/HuffmanCoding/lib/entry"
	"github.com/Axonny/HuffmanCoding/lib/huffman"
)

var _ entry.CodebookSource = (*Cache)(nil)

func storedTable(t *testing.T, data string) [huffman.SymbolCount]byte {
	t.Helper()
	table, err := huffman.Count([]byte(data)).Normalize().Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	return table
}

func TestHitAfterMiss(t *testing.T) {
	cache := New(4)
	table := storedTable(t, "cache me if you can")

	first, err := cache.Codebook(table)
	if err != nil {
		t.Fatalf("Codebook: %v", err)
	}
	second, err := cache.Codebook(table)
	if err != nil {
		t.Fatalf("Codebook: %v", err)
	}
	if first != second {
		t.Error("second lookup rebuilt the codebook")
	}
	if stats := cache.Stats(); stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Stats = %+v, want 1 hit and 1 miss", stats)
	}
}

func TestMatchesDirectBuild(t *testing.T) {
	cache := New(0)
	table := storedTable(t, "the same codes either way")
	cached, err := cache.Codebook(table)
	if err != nil {
		t.Fatalf("Codebook: %v", err)
	}
	direct, err := entry.BuildCodebooks{}.Codebook(table)
	if err != nil {
		t.Fatalf("BuildCodebooks: %v", err)
	}
	if cached.Lengths() != direct.Lengths() {
		t.Error("cached codebook differs from a direct build")
	}
}

func TestConcurrentUse(t *testing.T) {
	cache := New(2)
	tables := [][huffman.SymbolCount]byte{
		storedTable(t, "aaaa"),
		storedTable(t, "abab"),
		storedTable(t, "abcabc"),
	}

	var wait sync.WaitGroup
	errs := make(chan error, 64)
	for i := range 64 {
		wait.Add(1)
		go func() {
			defer wait.Done()
			if _, err := cache.Codebook(tables[i%len(tables)]); err != nil {
				errs <- err
			}
		}()
	}
	wait.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Codebook: %v", err)
	}
	stats := cache.Stats()
	if stats.Hits+stats.Misses != 64 {
		t.Errorf("Stats = %+v, want 64 lookups", stats)
	}
}

func TestSmallCapacity(t *testing.T) {
	tables := [][huffman.SymbolCount]byte{
		storedTable(t, "aaaa"),
		storedTable(t, "abab"),
		storedTable(t, "abcabc"),
		storedTable(t, "abcdabcd"),
	}
	for _, capacity := range []int{1, 2, 3} {
		cache := New(capacity)
		for i := range 400 {
			table := tables[i%len(tables)]
			book, err := cache.Codebook(table)
			if err != nil {
				t.Fatalf("New(%d): Codebook: %v", capacity, err)
			}
			if book == nil {
				t.Fatalf("New(%d): nil codebook", capacity)
			}
		}
		if stats := cache.Stats(); stats.Hits+stats.Misses != 400 {
			t.Errorf("New(%d): Stats = %+v, want 400 lookups", capacity, stats)
		}
	}
}
