// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compare measures how the archive's static Huffman coding
// fares against general-purpose compressors on the same buffer.
//
// [Analyze] reports the order-0 Shannon entropy bound, the size of a
// Huffman entry and of its body alone, and the sizes produced by zstd
// (github.com/klauspost/compress) and LZ4 block compression
// (github.com/pierrec/lz4). Every compressed form is decompressed
// again and checked against the input before it is reported.
package compare

import (
	"bytes"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/Axonny/HuffmanCoding/lib/entry"
	"github.com/Axonny/HuffmanCoding/lib/huffman"
)

// Method names a compression scheme in a [Comparison].
type Method string

const (
	MethodHuffmanEntry Method = "huffman_entry"
	MethodHuffmanBody  Method = "huffman_body"
	MethodZstd         Method = "zstd"
	MethodLZ4          Method = "lz4"
)

// Result is one method's outcome.
type Result struct {
	Method Method `json:"method"`
	Bytes  int    `json:"bytes"`

	// Ratio is Bytes divided by the input size; below 1 is a saving.
	// Zero for an empty input.
	Ratio float64 `json:"ratio"`

	// Incompressible is set when the method declined to compress and
	// Bytes is the input size.
	Incompressible bool `json:"incompressible,omitempty"`
}

// Comparison is the full report for one buffer.
type Comparison struct {
	InputBytes int `json:"input_bytes"`
	Distinct   int `json:"distinct_symbols"`

	// EntropyBits is the order-0 entropy in bits per byte, and
	// EntropyBytes the resulting lower bound on any symbol-by-symbol
	// code's output.
	EntropyBits  float64 `json:"entropy_bits_per_byte"`
	EntropyBytes int     `json:"entropy_bound_bytes"`

	Results []Result `json:"results"`
}

// zstdEncoder and zstdDecoder are safe for concurrent use and reused
// across calls.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compare: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compare: zstd decoder initialization failed: " + err.Error())
	}
}

// Analyze compresses data every way and reports the sizes.
func Analyze(data []byte) (*Comparison, error) {
	table := huffman.Count(data)
	bits := Entropy(table)
	comparison := &Comparison{
		InputBytes:   len(data),
		Distinct:     table.Distinct(),
		EntropyBits:  bits,
		EntropyBytes: int(math.Ceil(bits * float64(len(data)) / 8)),
	}

	codec := entry.NewCodec(entry.Options{})
	encoded, err := codec.Encode("stats", data)
	if err != nil {
		return nil, err
	}
	decoded, err := codec.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("huffman round trip: %w", err)
	}
	if !bytes.Equal(decoded, data) {
		return nil, fmt.Errorf("huffman round trip: output differs from input")
	}
	comparison.add(MethodHuffmanEntry, int(encoded.EntrySize()), false)
	comparison.add(MethodHuffmanBody, len(encoded.Body), false)

	compressed := zstdEncoder.EncodeAll(data, nil)
	restored, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, len(data)))
	if err != nil {
		return nil, fmt.Errorf("zstd round trip: %w", err)
	}
	if !bytes.Equal(restored, data) {
		return nil, fmt.Errorf("zstd round trip: output differs from input")
	}
	comparison.add(MethodZstd, len(compressed), false)

	size, incompressible, err := lz4Size(data)
	if err != nil {
		return nil, err
	}
	comparison.add(MethodLZ4, size, incompressible)

	return comparison, nil
}

// Entropy returns the order-0 Shannon entropy of table in bits per
// symbol.
func Entropy(table huffman.FrequencyTable) float64 {
	total := float64(table.Total())
	if total == 0 {
		return 0
	}
	var entropy float64
	for _, count := range table {
		if count == 0 {
			continue
		}
		probability := float64(count) / total
		entropy -= probability * math.Log2(probability)
	}
	return entropy
}

func (c *Comparison) add(method Method, size int, incompressible bool) {
	result := Result{Method: method, Bytes: size, Incompressible: incompressible}
	if c.InputBytes > 0 {
		result.Ratio = float64(size) / float64(c.InputBytes)
	}
	c.Results = append(c.Results, result)
}

// lz4Size block-compresses data and verifies the block. CompressBlock
// returns 0 for incompressible input, reported as the input size.
func lz4Size(data []byte) (int, bool, error) {
	if len(data) == 0 {
		return 0, true, nil
	}
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return 0, false, fmt.Errorf("lz4 compress: %w", err)
	}
	if written == 0 || written >= len(data) {
		return len(data), true, nil
	}

	restored := make([]byte, len(data))
	read, err := lz4.UncompressBlock(destination[:written], restored)
	if err != nil {
		return 0, false, fmt.Errorf("lz4 round trip: %w", err)
	}
	if read != len(data) || !bytes.Equal(restored, data) {
		return 0, false, fmt.Errorf("lz4 round trip: output differs from input")
	}
	return written, false, nil
}
