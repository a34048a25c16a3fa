// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"

	"github.com/Axonny/HuffmanCoding/lib/digest"
	"github.com/Axonny/HuffmanCoding/lib/entry"
	"github.com/Axonny/HuffmanCoding/lib/huffman"
)

// Report describes one entry without decoding its body.
type Report struct {
	Filename    string `json:"filename"`
	Offset      int64  `json:"offset"`
	SymbolCount uint32 `json:"symbol_count"`
	BodyLength  uint32 `json:"body_length"`
	EntryLength int64  `json:"entry_length"`
	Digest      string `json:"digest"`

	// Distinct is the number of symbols in the stored table.
	Distinct int `json:"distinct_symbols"`

	// MaxCodeLength is the longest code the rebuilt tree assigns.
	MaxCodeLength int `json:"max_code_length"`

	// CodeLengths counts symbols per code length: CodeLengths[n] is
	// the number of symbols with an n-bit code.
	CodeLengths []int `json:"code_lengths"`

	// PlainBodyBits is the size the body would have unencrypted,
	// estimated from the stored (normalized) table scaled to the
	// symbol count.
	PlainBodyBits uint64 `json:"plain_body_bits"`
}

// Inspect reads every header in r and reports its fields and the
// shape of the code its table rebuilds. Bodies are skipped, so an
// encrypted archive inspects without a password.
func Inspect(r io.Reader, codebooks entry.CodebookSource) ([]Report, error) {
	if codebooks == nil {
		codebooks = entry.BuildCodebooks{}
	}
	var reports []Report
	err := walkHeaders(r, func(listing Listing) error {
		book, err := codebooks.Codebook(listing.Table)
		if err != nil {
			return fmt.Errorf("rebuilding codes for %q: %w", listing.Filename, err)
		}
		reports = append(reports, newReport(listing, book))
		return nil
	})
	return reports, err
}

func newReport(listing Listing, book *huffman.Codebook) Report {
	table := listing.FrequencyTable()
	report := Report{
		Filename:      listing.Filename,
		Offset:        listing.Offset,
		SymbolCount:   listing.SymbolCount,
		BodyLength:    listing.BodyLength,
		EntryLength:   listing.EntrySize(),
		Digest:        digest.Format(listing.Digest),
		Distinct:      table.Distinct(),
		MaxCodeLength: book.MaxLength(),
		CodeLengths:   make([]int, book.MaxLength()+1),
	}
	for symbol, length := range book.Lengths() {
		if table[symbol] > 0 {
			report.CodeLengths[length]++
		}
	}
	if total := table.Total(); total > 0 {
		// Stored counts are proportional to the real ones, so the
		// average code length they imply carries over.
		report.PlainBodyBits = book.EncodedBits(table) * uint64(listing.SymbolCount) / total
	}
	return report
}
