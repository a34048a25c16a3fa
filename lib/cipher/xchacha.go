// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cipher

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/Axonny/HuffmanCoding/lib/secret"
)

// Argon2Params is the Argon2id cost used to stretch the password into
// an XChaCha20-Poly1305 key.
type Argon2Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultArgon2 follows the RFC 9106 second recommended option.
var DefaultArgon2 = Argon2Params{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}

// Upper bounds on what a stored blob may ask the decryptor to spend.
const (
	maxArgon2Time      = 64
	maxArgon2MemoryKiB = 2 * 1024 * 1024
)

func (p Argon2Params) withDefaults() Argon2Params {
	if p.Time == 0 {
		p.Time = DefaultArgon2.Time
	}
	if p.MemoryKiB == 0 {
		p.MemoryKiB = DefaultArgon2.MemoryKiB
	}
	if p.Threads == 0 {
		p.Threads = DefaultArgon2.Threads
	}
	return p
}

// Validate reports whether the cost is within the bounds a decryptor
// accepts.
func (p Argon2Params) Validate() error {
	switch {
	case p.Time < 1 || p.Time > maxArgon2Time:
		return fmt.Errorf("cipher: argon2 time %d outside [1, %d]", p.Time, maxArgon2Time)
	case p.MemoryKiB < 8*uint32(p.Threads) || p.MemoryKiB > maxArgon2MemoryKiB:
		return fmt.Errorf("cipher: argon2 memory %d KiB outside [%d, %d]", p.MemoryKiB, 8*uint32(p.Threads), maxArgon2MemoryKiB)
	case p.Threads < 1:
		return fmt.Errorf("cipher: argon2 threads must be positive")
	}
	return nil
}

// blobVersion is the first byte of every XChaCha20-Poly1305 body. It
// can never start an age file, which begins with 'a'.
const blobVersion byte = 0x01

const saltSize = 16

// blobHeaderSize covers everything before the nonce. The whole header
// is authenticated as additional data, so the stored cost parameters
// and salt cannot be swapped.
//
//	version    1 byte
//	time       uint32 big-endian
//	memory     uint32 big-endian, KiB
//	threads    1 byte
//	salt       16 bytes
const blobHeaderSize = 1 + 4 + 4 + 1 + saltSize

// BlobOverhead is the size a plaintext grows by under
// [KindXChaCha20Poly1305]: header, nonce, and Poly1305 tag.
const BlobOverhead = blobHeaderSize + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

type derivedKey struct {
	header [blobHeaderSize]byte
	key    *secret.Buffer
}

func encodeBlobHeader(params Argon2Params, salt []byte) [blobHeaderSize]byte {
	var header [blobHeaderSize]byte
	header[0] = blobVersion
	binary.BigEndian.PutUint32(header[1:5], params.Time)
	binary.BigEndian.PutUint32(header[5:9], params.MemoryKiB)
	header[9] = params.Threads
	copy(header[10:], salt)
	return header
}

func decodeBlobHeader(header []byte) (Argon2Params, []byte) {
	params := Argon2Params{
		Time:      binary.BigEndian.Uint32(header[1:5]),
		MemoryKiB: binary.BigEndian.Uint32(header[5:9]),
		Threads:   header[9],
	}
	return params, header[10:blobHeaderSize]
}

func (p *Passphrase) deriveKey(params Argon2Params, salt []byte) (*secret.Buffer, error) {
	key := argon2.IDKey(p.password.Bytes(), salt, params.Time, params.MemoryKiB, params.Threads, chacha20poly1305.KeySize)
	return secret.NewFromBytes(key)
}

func (p *Passphrase) sealingKey() (*derivedKey, error) {
	p.sealOnce.Do(func() {
		salt := make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			p.sealErr = fmt.Errorf("generating salt: %w", err)
			return
		}
		key, err := p.deriveKey(p.params, salt)
		if err != nil {
			p.sealErr = fmt.Errorf("deriving key: %w", err)
			return
		}
		p.sealKey = &derivedKey{header: encodeBlobHeader(p.params, salt), key: key}
	})
	return p.sealKey, p.sealErr
}

func (p *Passphrase) sealXChaCha(plaintext []byte) ([]byte, error) {
	derived, err := p.sealingKey()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(derived.key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	output := make([]byte, blobHeaderSize+chacha20poly1305.NonceSizeX, BlobOverhead+len(plaintext))
	copy(output, derived.header[:])
	nonce := output[blobHeaderSize:]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating random nonce: %w", err)
	}
	return aead.Seal(output, nonce, plaintext, derived.header[:]), nil
}

func (p *Passphrase) openXChaCha(blob []byte) ([]byte, error) {
	if len(blob) < BlobOverhead {
		return nil, fmt.Errorf("%w: blob is %d bytes, minimum is %d", ErrAuthentication, len(blob), BlobOverhead)
	}
	header := blob[:blobHeaderSize]
	params, salt := decodeBlobHeader(header)
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	key, err := p.openingKey(header, params, salt)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	nonce := blob[blobHeaderSize : blobHeaderSize+chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, blob[blobHeaderSize+chacha20poly1305.NonceSizeX:], header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// openingKey returns the key for a stored header, deriving it once per
// distinct (parameters, salt). All bodies sealed by one Passphrase
// share a header, so an archive costs one derivation to open.
func (p *Passphrase) openingKey(header []byte, params Argon2Params, salt []byte) (*secret.Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("cipher: passphrase is closed")
	}
	if key, ok := p.openKeys[string(header)]; ok {
		return key, nil
	}
	key, err := p.deriveKey(params, salt)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	p.openKeys[string(header)] = key
	return key, nil
}
