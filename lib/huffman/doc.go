// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package huffman implements static Huffman coding over the byte
// alphabet: frequency tables, deterministic tree construction, code
// derivation, and MSB-first bit packing.
//
// The package is built around one property: a tree built from a
// [FrequencyTable] is a pure function of that table. Two processes
// that hold the same 256 counts build the same tree shape and derive
// the same codes, so a decoder needs nothing but the stored table to
// reverse an encoding. Ties between equal weights are broken by a
// sequence number stamped on every node at creation (leaves in
// ascending symbol order, then internal nodes as they are formed),
// never by incidental heap layout.
//
// The pipeline, encoder side:
//
//	table := huffman.Count(data).Normalize()
//	book, err := huffman.BuildCodebook(table)
//	body, err := huffman.Pack(data, book)
//
// and decoder side, from the serialized table:
//
//	book, err := huffman.BuildCodebook(huffman.TableFromBytes(stored))
//	data, err := huffman.Unpack(body, book, symbolCount)
//
// Tables are normalized into one byte per symbol before they are
// stored; see [FrequencyTable.Normalize]. Trees live in an index-
// addressed arena and every traversal uses an explicit stack, so
// pathological depths cannot exhaust the goroutine stack.
//
// This package has no dependencies outside the standard library.
package huffman
