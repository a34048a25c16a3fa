// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
)

func randomBytes(seed uint64, size int) []byte {
	source := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(source.UintN(256))
	}
	return data
}

func roundTrip(t *testing.T, data []byte) []byte {
	t.Helper()
	table := Count(data).Normalize()
	book, err := BuildCodebook(table)
	if err != nil {
		t.Fatalf("BuildCodebook: %v", err)
	}
	body, err := Pack(data, book)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	// The decoder only ever sees the serialized table.
	stored, err := table.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	decodeBook, err := BuildCodebook(TableFromBytes(stored))
	if err != nil {
		t.Fatalf("BuildCodebook (decoder): %v", err)
	}
	decoded, err := Unpack(body, decodeBook, len(data))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	return decoded
}

func TestRoundTrip(t *testing.T) {
	allValues := make([]byte, 256)
	for i := range allValues {
		allValues[i] = byte(i)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"single byte", []byte("a")},
		{"single repeated byte", bytes.Repeat([]byte{0x00}, 1000)},
		{"two symbols", []byte("abababababbbbbba")},
		{"all byte values", allValues},
		{"text", []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 50))},
		{"random small", randomBytes(1, 17)},
		{"random large", randomBytes(2, 64*1024)},
		{"skewed large", append(bytes.Repeat([]byte("x"), 200000), []byte("yz")...)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			decoded := roundTrip(t, test.data)
			if !bytes.Equal(decoded, test.data) {
				t.Fatalf("round trip mismatch: got %d bytes, want %d", len(decoded), len(test.data))
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("no-op below limit", func(t *testing.T) {
		var table FrequencyTable
		table['a'] = 255
		table['b'] = 1
		if got := table.Normalize(); got != table {
			t.Errorf("Normalize changed a table whose max is %d", table.Max())
		}
	})

	t.Run("formula", func(t *testing.T) {
		var table FrequencyTable
		table['a'] = 1000
		table['b'] = 500
		table['c'] = 1
		normalized := table.Normalize()
		// 1 + count*255/1001
		want := map[byte]uint64{'a': 1 + 1000*255/1001, 'b': 1 + 500*255/1001, 'c': 1}
		for symbol, count := range want {
			if normalized[symbol] != count {
				t.Errorf("normalized[%q] = %d, want %d", symbol, normalized[symbol], count)
			}
		}
		if normalized['d'] != 0 {
			t.Errorf("absent symbol became %d", normalized['d'])
		}
	})

	t.Run("bounds", func(t *testing.T) {
		var table FrequencyTable
		for symbol := range table {
			table[symbol] = uint64(symbol) * 1_000_003
		}
		table[255] = 1 << 62
		normalized := table.Normalize()
		for symbol, count := range normalized {
			if table[symbol] == 0 && count != 0 {
				t.Errorf("symbol %d: zero count became %d", symbol, count)
			}
			if table[symbol] != 0 && (count < 1 || count > MaxStoredCount) {
				t.Errorf("symbol %d: normalized count %d outside [1, 255]", symbol, count)
			}
		}
		if !normalized.Normalized() {
			t.Error("Normalized() = false after Normalize")
		}
	})

	t.Run("serialization rejects raw counts", func(t *testing.T) {
		var table FrequencyTable
		table[7] = 256
		if _, err := table.Bytes(); !errors.Is(err, ErrNotNormalized) {
			t.Fatalf("Bytes error = %v, want ErrNotNormalized", err)
		}
	})
}

func TestFallbackLeaves(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		synthetic []byte
	}{
		{"empty", nil, []byte{0, 1}},
		{"single 'a'", []byte("a"), []byte{0}},
		{"single zero byte", []byte{0, 0, 0}, []byte{1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree, err := Build(Count(test.data))
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if tree.Leaves() != 2 {
				t.Errorf("Leaves = %d, want 2", tree.Leaves())
			}
			if got := tree.SyntheticLeaves(); !bytes.Equal(got, test.synthetic) {
				t.Errorf("SyntheticLeaves = %v, want %v", got, test.synthetic)
			}
			book, err := tree.Codebook()
			if err != nil {
				t.Fatalf("Codebook: %v", err)
			}
			for _, symbol := range test.data {
				code, ok := book.Lookup(symbol)
				if !ok || code.Length != 1 {
					t.Errorf("symbol %#02x: code %v (present %v), want a 1-bit code", symbol, code, ok)
				}
			}
		})
	}
}

func TestTieBreak(t *testing.T) {
	// Four symbols of equal weight. Leaves get sequence 0..3 in symbol
	// order; 'a'+'b' merge first, then 'c'+'d', then the two internal
	// nodes with the earlier one on the left.
	book, err := BuildCodebook(Count([]byte("abcd")))
	if err != nil {
		t.Fatalf("BuildCodebook: %v", err)
	}
	want := map[byte]string{'a': "00", 'b': "01", 'c': "10", 'd': "11"}
	for symbol, bits := range want {
		code, _ := book.Lookup(symbol)
		if code.String() != bits {
			t.Errorf("code(%q) = %s, want %s", symbol, code, bits)
		}
	}

	// A merged node of weight 2 ties with leaf 'c' of weight 2; the leaf
	// was created first, so it is removed first and becomes the left
	// child.
	book, err = BuildCodebook(Count([]byte("abcc")))
	if err != nil {
		t.Fatalf("BuildCodebook: %v", err)
	}
	want = map[byte]string{'c': "0", 'a': "10", 'b': "11"}
	for symbol, bits := range want {
		code, _ := book.Lookup(symbol)
		if code.String() != bits {
			t.Errorf("code(%q) = %s, want %s", symbol, code, bits)
		}
	}
}

func TestDeterminism(t *testing.T) {
	table := Count(randomBytes(3, 10000)).Normalize()
	first, err := Build(table)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for range 20 {
		again, err := Build(table)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if again.String() != first.String() {
			t.Fatal("two builds from the same table produced different trees")
		}
	}
}

func TestPrefixFree(t *testing.T) {
	for seed := range uint64(8) {
		data := randomBytes(seed, int(seed+1)*997)
		// Skew the distribution so code lengths vary.
		for i := range data {
			data[i] &= byte(0xff >> (seed % 8))
		}
		book, err := BuildCodebook(Count(data).Normalize())
		if err != nil {
			t.Fatalf("BuildCodebook: %v", err)
		}

		var codes []Code
		for symbol := range SymbolCount {
			if code, ok := book.Lookup(byte(symbol)); ok {
				codes = append(codes, code)
			}
		}
		for i, a := range codes {
			for j, b := range codes {
				if i == j || a.Length > b.Length {
					continue
				}
				if b.Bits>>(b.Length-a.Length) == a.Bits {
					t.Fatalf("seed %d: code %s is a prefix of %s", seed, a, b)
				}
			}
		}
	}
}

func TestCodebookFromBuildMatchesShorthand(t *testing.T) {
	table := Count([]byte("mississippi river")).Normalize()
	tree, err := Build(table)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fromTree, err := tree.Codebook()
	if err != nil {
		t.Fatalf("Codebook: %v", err)
	}
	shorthand, err := BuildCodebook(table)
	if err != nil {
		t.Fatalf("BuildCodebook: %v", err)
	}
	if fromTree.Lengths() != shorthand.Lengths() {
		t.Error("code lengths differ between Tree.Codebook and BuildCodebook")
	}
	if fromTree.MaxLength() != tree.Depth() {
		t.Errorf("MaxLength = %d, tree depth = %d", fromTree.MaxLength(), tree.Depth())
	}
	if fromTree.Len() != table.Distinct() {
		t.Errorf("Len = %d, want %d", fromTree.Len(), table.Distinct())
	}
}

func TestBitWriterPadding(t *testing.T) {
	var writer BitWriter
	writer.WriteCode(Code{Bits: 0b101, Length: 3})
	writer.WriteCode(Code{Bits: 0b1, Length: 1})
	if got := writer.Bytes(); !bytes.Equal(got, []byte{0b10110000}) {
		t.Fatalf("Bytes = %08b, want 10110000", got)
	}

	writer.WriteCode(Code{Bits: 0b11110000_1, Length: 9})
	if writer.BitLen() != 13 {
		t.Errorf("BitLen = %d, want 13", writer.BitLen())
	}
	if got := writer.Bytes(); !bytes.Equal(got, []byte{0b10111111, 0b00001000}) {
		t.Fatalf("Bytes = %08b, want [10111111 00001000]", got)
	}
}

func TestCompressesRepetitiveInput(t *testing.T) {
	data := bytes.Repeat([]byte{'z'}, 100000)
	book, err := BuildCodebook(Count(data).Normalize())
	if err != nil {
		t.Fatalf("BuildCodebook: %v", err)
	}
	body, err := Pack(data, book)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(body) != 12500 {
		t.Errorf("packed size = %d, want 12500 (one bit per symbol)", len(body))
	}
}

func TestUnpackCorrupt(t *testing.T) {
	data := []byte("abracadabra, abracadabra")
	book, err := BuildCodebook(Count(data))
	if err != nil {
		t.Fatalf("BuildCodebook: %v", err)
	}
	body, err := Pack(data, book)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	t.Run("truncated body", func(t *testing.T) {
		_, err := Unpack(body[:len(body)/2], book, len(data))
		if !IsCorruptStream(err) {
			t.Fatalf("Unpack error = %v, want CorruptStreamError", err)
		}
		var streamError *CorruptStreamError
		errors.As(err, &streamError)
		if streamError.Decoded >= len(data) || streamError.Expected != len(data) {
			t.Errorf("CorruptStreamError = %+v", streamError)
		}
	})

	t.Run("symbol count beyond body", func(t *testing.T) {
		if _, err := Unpack(body, book, len(data)*100); !IsCorruptStream(err) {
			t.Fatalf("Unpack error = %v, want CorruptStreamError", err)
		}
	})

	t.Run("zero symbols reads nothing", func(t *testing.T) {
		decoded, err := Unpack(nil, book, 0)
		if err != nil || len(decoded) != 0 {
			t.Fatalf("Unpack(nil, 0) = %v, %v", decoded, err)
		}
	})

	t.Run("unmatched sequence", func(t *testing.T) {
		// A complete tree leaves no unmatched sequence, so use a
		// codebook with a missing branch.
		partial := &Codebook{
			symbols:   map[Code]byte{{Bits: 0, Length: 1}: 'x'},
			maxLength: 2,
		}
		_, err := Unpack([]byte{0b11000000}, partial, 1)
		if !IsCorruptStream(err) {
			t.Fatalf("Unpack error = %v, want CorruptStreamError", err)
		}
	})

	t.Run("flipped bits never decode silently", func(t *testing.T) {
		for i := range len(body) * 8 {
			flipped := bytes.Clone(body)
			flipped[i/8] ^= 1 << (7 - i%8)
			decoded, err := Unpack(flipped, book, len(data))
			if err == nil && bytes.Equal(decoded, data) {
				// Only possible when the flip lands in padding.
				if uint64(i) < book.EncodedBits(Count(data)) {
					t.Fatalf("bit %d flipped in the payload decoded to the original", i)
				}
			}
		}
	})
}

func TestPackMissingSymbol(t *testing.T) {
	book, err := BuildCodebook(Count([]byte("ab")))
	if err != nil {
		t.Fatalf("BuildCodebook: %v", err)
	}
	if _, err := Pack([]byte("abc"), book); err == nil {
		t.Fatal("Pack succeeded with a symbol missing from the codebook")
	}
}
