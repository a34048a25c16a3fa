// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codebookcache remembers the codebooks rebuilt from stored
// frequency tables.
//
// A codebook is a pure function of its 256-byte table, and archives of
// similar files (source trees, logs, repeated exports) carry the same
// normalized table many times. [Cache] implements entry.CodebookSource
// and builds each distinct table's tree once, keeping the most useful
// codebooks under a TinyLFU admission policy
// (github.com/dgryski/go-tinylfu) keyed by an xxhash of the table.
package codebookcache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"

	"github.com/Axonny/HuffmanCoding/lib/huffman"
)

// DefaultCapacity is the number of codebooks kept when the caller does
// not choose.
const DefaultCapacity = 64

// MinCapacity is the smallest capacity New honors. Below it the
// protected segment of the TinyLFU cache would be empty.
const MinCapacity = 8

type tableKey = [huffman.SymbolCount]byte

// Stats counts cache outcomes since creation.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Cache is a bounded, concurrency-safe [huffman.Codebook] cache.
type Cache struct {
	mu    sync.Mutex
	lfu   *tinylfu.T[tableKey, *huffman.Codebook]
	stats Stats
}

// New returns a cache holding at most capacity codebooks. A capacity
// below one uses [DefaultCapacity]; other capacities are raised to
// [MinCapacity].
func New(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	capacity = max(capacity, MinCapacity)
	return &Cache{
		lfu: tinylfu.New[tableKey, *huffman.Codebook](capacity, capacity*10, hashTable),
	}
}

// Codebook returns the codebook for table, building and caching it on
// a miss. Build errors are not cached.
func (c *Cache) Codebook(table [huffman.SymbolCount]byte) (*huffman.Codebook, error) {
	c.mu.Lock()
	book, ok := c.lfu.Get(table)
	if ok {
		c.stats.Hits++
		c.mu.Unlock()
		return book, nil
	}
	c.stats.Misses++
	c.mu.Unlock()

	// Built outside the lock: two goroutines missing on the same table
	// both build, and both results are identical.
	book, err := huffman.BuildCodebook(huffman.TableFromBytes(table))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lfu.Add(table, book)
	c.mu.Unlock()
	return book, nil
}

// Stats returns a snapshot of the hit and miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func hashTable(table tableKey) uint64 {
	return xxhash.Sum64(table[:])
}
