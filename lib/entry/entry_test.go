// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entry

import (
	"bytes"
	"errors"
	"encoding/binary"
	"io"
	"runtime"
	"strings"
	"testing"

	"github.com/Axonny/HuffmanCoding/lib/digest"
	"github.com/Axonny/HuffmanCoding/lib/huffman"
)

// tagCipher is a toy authenticated cipher: the ciphertext is a one-byte
// key tag followed by the plaintext XORed with the key. Decrypt with a
// different key fails on the tag.
type tagCipher struct {
	key byte
}

func (c tagCipher) Encrypt(plaintext []byte) ([]byte, error) {
	output := make([]byte, 1+len(plaintext))
	output[0] = c.key
	for i, b := range plaintext {
		output[1+i] = b ^ c.key
	}
	return output, nil
}

func (c tagCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || ciphertext[0] != c.key {
		return nil, errors.New("authentication failed")
	}
	output := make([]byte, len(ciphertext)-1)
	for i, b := range ciphertext[1:] {
		output[i] = b ^ c.key
	}
	return output, nil
}

// xorCipher has no authentication: a wrong key yields garbage.
type xorCipher struct {
	key byte
}

func (c xorCipher) Encrypt(plaintext []byte) ([]byte, error) {
	output := bytes.Clone(plaintext)
	for i := range output {
		output[i] ^= c.key
	}
	return output, nil
}

func (c xorCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	return c.Encrypt(ciphertext)
}

func TestCodecRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		cipher Cipher
	}{
		{"empty", []byte{}, nil},
		{"one byte", []byte("a"), nil},
		{"text", []byte(strings.Repeat("hello, archive ", 100)), nil},
		{"encrypted empty", []byte{}, tagCipher{key: 7}},
		{"encrypted text", []byte("secret contents"), tagCipher{key: 7}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			codec := NewCodec(Options{Cipher: test.cipher})
			encoded, err := codec.Encode("dir/file.txt", test.data)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if encoded.SymbolCount != uint32(len(test.data)) {
				t.Errorf("SymbolCount = %d, want %d", encoded.SymbolCount, len(test.data))
			}
			if encoded.BodyLength != uint32(len(encoded.Body)) {
				t.Errorf("BodyLength = %d, body is %d bytes", encoded.BodyLength, len(encoded.Body))
			}

			serialized, err := encoded.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			parsed, err := ReadEntry(bytes.NewReader(serialized))
			if err != nil {
				t.Fatalf("ReadEntry: %v", err)
			}
			decoded, err := codec.Decode(parsed)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !bytes.Equal(decoded, test.data) {
				t.Fatalf("Decode = %q, want %q", decoded, test.data)
			}
		})
	}
}

func TestHeaderLayout(t *testing.T) {
	codec := NewCodec(Options{})
	encoded, err := codec.Encode("ab", []byte("aab"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	serialized, err := encoded.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	if serialized[0] != 2 || string(serialized[1:3]) != "ab" {
		t.Fatalf("filename prefix = %q", serialized[:3])
	}
	if !bytes.Equal(serialized[3:7], []byte{0, 0, 0, 3}) {
		t.Errorf("symbol count bytes = %v, want big-endian 3", serialized[3:7])
	}
	if !bytes.Equal(serialized[7:11], []byte{0, 0, 0, 1}) {
		t.Errorf("body length bytes = %v, want big-endian 1", serialized[7:11])
	}
	table := serialized[11 : 11+256]
	if table['a'] != 2 || table['b'] != 1 || table['c'] != 0 {
		t.Errorf("table counts a=%d b=%d c=%d", table['a'], table['b'], table['c'])
	}
	hexDigest := string(serialized[267:299])
	if hexDigest != digest.Format(digest.Sum([]byte("aab"))) {
		t.Errorf("stored digest = %q", hexDigest)
	}
	// 'b' is lighter, so it is the left child (0) and 'a' is 1.
	if !bytes.Equal(serialized[299:], []byte{0b11000000}) {
		t.Errorf("body = %08b, want [11000000]", serialized[299:])
	}
	if len(serialized) != encoded.Size()+1 {
		t.Errorf("serialized length %d, Size()+body = %d", len(serialized), encoded.Size()+1)
	}
}

func TestFallbackEntry(t *testing.T) {
	encoded, err := NewCodec(Options{}).Encode("a.txt", []byte("a"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded.Table['a'] != 1 || encoded.Table[0] != 0 {
		t.Errorf("stored table must hold only the real symbol")
	}
	if len(encoded.Body) != 1 {
		t.Errorf("body is %d bytes, want 1", len(encoded.Body))
	}
}

func TestRepetitiveInputShrinks(t *testing.T) {
	data := bytes.Repeat([]byte{'q'}, 100000)
	encoded, err := NewCodec(Options{}).Encode("big", data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded.EntrySize() >= int64(len(data)) {
		t.Fatalf("entry is %d bytes, input %d", encoded.EntrySize(), len(data))
	}
}

func TestDecodeWrongPassword(t *testing.T) {
	encoded, err := NewCodec(Options{Cipher: tagCipher{key: 1}}).Encode("f", []byte("payload"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, err = NewCodec(Options{Cipher: tagCipher{key: 2}}).Decode(encoded)
	if !IsWrongPassword(err) {
		t.Fatalf("Decode error = %v, want WrongPasswordError", err)
	}
	if IsCorruption(err) {
		t.Fatal("wrong password also reported as corruption")
	}
}

func TestDecodeUnauthenticatedWrongKey(t *testing.T) {
	data := []byte(strings.Repeat("the same text over and over ", 20))
	encoded, err := NewCodec(Options{Cipher: xorCipher{key: 0x5a}}).Encode("f", data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := NewCodec(Options{Cipher: xorCipher{key: 0x3c}}).Decode(encoded)
	if err == nil {
		t.Fatalf("Decode succeeded with the wrong key, returned %d bytes", len(decoded))
	}
	if decoded != nil {
		t.Fatal("Decode returned bytes alongside an error")
	}
	if !IsCorruption(err) && !huffman.IsCorruptStream(err) {
		t.Fatalf("Decode error = %v, want corruption or corrupt stream", err)
	}
	var corruption *CorruptionError
	if errors.As(err, &corruption) && !strings.Contains(err.Error(), "possibly wrong password") {
		t.Errorf("corruption message %q does not mention the password", err)
	}
}

func TestDecodeTampered(t *testing.T) {
	data := []byte(strings.Repeat("tamper detection ", 40))
	codec := NewCodec(Options{})
	encoded, err := codec.Encode("f", data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for i := range len(encoded.Body) * 8 {
		tampered := *encoded
		tampered.Body = bytes.Clone(encoded.Body)
		tampered.Body[i/8] ^= 1 << (7 - i%8)
		decoded, err := codec.Decode(&tampered)
		if err == nil {
			// Flips in trailing padding are invisible and harmless.
			if !bytes.Equal(decoded, data) {
				t.Fatalf("bit %d: silent wrong output", i)
			}
			continue
		}
		if !IsCorruption(err) && !huffman.IsCorruptStream(err) {
			t.Fatalf("bit %d: error = %v", i, err)
		}
		if IsCorruption(err) && !strings.Contains(err.Error(), "file is damaged") {
			t.Fatalf("bit %d: message %q", i, err)
		}
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"plain", "a.txt", true},
		{"nested", "dir/sub/a.txt", true},
		{"unicode", "файл.txt", true},
		{"max length", strings.Repeat("n", 255), true},
		{"empty", "", false},
		{"too long", strings.Repeat("n", 256), false},
		{"absolute", "/etc/passwd", false},
		{"parent", "../escape", false},
		{"inner parent", "a/../../b", false},
		{"dot", ".", false},
		{"trailing slash", "dir/", false},
		{"invalid utf8", "bad\xff", false},
		{"nul", "a\x00b", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateFilename(test.input)
			if test.valid && err != nil {
				t.Fatalf("ValidateFilename(%q): %v", test.input, err)
			}
			if !test.valid && !errors.Is(err, ErrInvalidFilename) {
				t.Fatalf("ValidateFilename(%q) = %v, want ErrInvalidFilename", test.input, err)
			}
		})
	}
}

func TestReadHeaderErrors(t *testing.T) {
	encoded, err := NewCodec(Options{}).Encode("name", []byte("body bytes"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	serialized, err := encoded.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	t.Run("clean end", func(t *testing.T) {
		if _, err := ReadHeader(bytes.NewReader(nil)); err != io.EOF {
			t.Fatalf("ReadHeader(empty) = %v, want io.EOF", err)
		}
		if _, _, err := ParseHeader(nil); err != io.EOF {
			t.Fatalf("ParseHeader(empty) = %v, want io.EOF", err)
		}
	})

	t.Run("truncated header", func(t *testing.T) {
		for _, cut := range []int{1, 5, 100, encoded.Size() - 1} {
			if _, err := ReadHeader(bytes.NewReader(serialized[:cut])); !errors.Is(err, ErrMalformedEntry) {
				t.Fatalf("cut at %d: error = %v, want ErrMalformedEntry", cut, err)
			}
		}
	})

	t.Run("truncated body", func(t *testing.T) {
		if _, err := ReadEntry(bytes.NewReader(serialized[:len(serialized)-1])); !errors.Is(err, ErrMalformedEntry) {
			t.Fatalf("ReadEntry error = %v, want ErrMalformedEntry", err)
		}
	})

	t.Run("oversized body length", func(t *testing.T) {
		// namelen(1) + "name" + symbol count(4), then the body length.
		forged := bytes.Clone(serialized)
		binary.BigEndian.PutUint32(forged[1+len("name")+4:], 0xFFFFFFF0)

		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		_, err := ReadEntry(bytes.NewReader(forged))
		runtime.ReadMemStats(&after)

		if !errors.Is(err, ErrMalformedEntry) {
			t.Fatalf("ReadEntry error = %v, want ErrMalformedEntry", err)
		}
		if allocated := after.TotalAlloc - before.TotalAlloc; allocated > 64<<20 {
			t.Errorf("ReadEntry allocated %d bytes for a %d-byte input", allocated, len(forged))
		}
	})

	t.Run("zero filename length", func(t *testing.T) {
		broken := bytes.Clone(serialized)
		broken[0] = 0
		if _, err := ReadHeader(bytes.NewReader(broken)); !errors.Is(err, ErrMalformedEntry) {
			t.Fatalf("ReadHeader error = %v, want ErrMalformedEntry", err)
		}
	})

	t.Run("bad digest", func(t *testing.T) {
		broken := bytes.Clone(serialized)
		broken[encoded.Size()-1] = 'G'
		if _, err := ReadHeader(bytes.NewReader(broken)); !errors.Is(err, ErrMalformedEntry) {
			t.Fatalf("ReadHeader error = %v, want ErrMalformedEntry", err)
		}
	})

	t.Run("parse consumed", func(t *testing.T) {
		header, consumed, err := ParseHeader(serialized)
		if err != nil {
			t.Fatalf("ParseHeader: %v", err)
		}
		if consumed != header.Size() {
			t.Errorf("consumed %d, Size() %d", consumed, header.Size())
		}
		if header.Filename != "name" {
			t.Errorf("Filename = %q", header.Filename)
		}
	})
}

func TestEncodeRejectsBadFilename(t *testing.T) {
	if _, err := NewCodec(Options{}).Encode("../x", []byte("x")); !errors.Is(err, ErrInvalidFilename) {
		t.Fatalf("Encode error = %v, want ErrInvalidFilename", err)
	}
}

func TestWriteToMatchesMarshal(t *testing.T) {
	encoded, err := NewCodec(Options{}).Encode("w", []byte("written"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	marshaled, err := encoded.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var buffer bytes.Buffer
	written, err := encoded.WriteTo(&buffer)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if written != int64(len(marshaled)) || !bytes.Equal(buffer.Bytes(), marshaled) {
		t.Fatal("WriteTo output differs from MarshalBinary")
	}
}
