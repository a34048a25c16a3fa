// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cipher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"filippo.io/age"

	"github.com/Axonny/HuffmanCoding/lib/secret"
)

// Kind names an encryption scheme.
type Kind string

const (
	KindAge               Kind = "age"
	KindXChaCha20Poly1305 Kind = "xchacha20poly1305"
)

// ParseKind validates a configured kind name.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindAge, KindXChaCha20Poly1305:
		return Kind(name), nil
	}
	return "", fmt.Errorf("unknown cipher kind %q (want %q or %q)", name, KindAge, KindXChaCha20Poly1305)
}

// ErrAuthentication is wrapped by every decryption failure: a wrong
// password, a modified ciphertext, or a blob in no known format.
var ErrAuthentication = errors.New("cipher: authentication failed")

// DefaultScryptWorkFactor is the scrypt log2(N) used for new age
// bodies. Each entry pays one scrypt derivation on both sides.
const DefaultScryptWorkFactor = 15

// MaxScryptWorkFactor bounds the work factor an age body may demand
// from the decryptor.
const MaxScryptWorkFactor = 22

// Options configures a [Passphrase].
type Options struct {
	// Kind selects the scheme used by Encrypt. Defaults to [KindAge].
	Kind Kind

	// ScryptWorkFactor is the log2 scrypt cost for age bodies. Defaults
	// to [DefaultScryptWorkFactor].
	ScryptWorkFactor int

	// Argon2 sets the key stretching cost for XChaCha20-Poly1305
	// bodies. Zero fields take the [DefaultArgon2] values.
	Argon2 Argon2Params
}

// Passphrase encrypts and decrypts entry bodies under one password.
// It is safe for concurrent use. Close releases derived keys; the
// password buffer is borrowed and not closed.
type Passphrase struct {
	kind     Kind
	password *secret.Buffer
	params   Argon2Params

	recipient *age.ScryptRecipient
	identity  *age.ScryptIdentity

	// sealKey is the XChaCha key used for every Encrypt call, derived
	// on first use under a single random salt.
	sealOnce sync.Once
	sealKey  *derivedKey
	sealErr  error

	mu       sync.Mutex
	openKeys map[string]*secret.Buffer
	closed   bool
}

// NewPassphrase prepares a cipher for password.
func NewPassphrase(password *secret.Buffer, options Options) (*Passphrase, error) {
	if password == nil || password.Len() == 0 {
		return nil, errors.New("cipher: empty password")
	}
	kind := options.Kind
	if kind == "" {
		kind = KindAge
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	workFactor := options.ScryptWorkFactor
	if workFactor == 0 {
		workFactor = DefaultScryptWorkFactor
	}
	if workFactor < 1 || workFactor > MaxScryptWorkFactor {
		return nil, fmt.Errorf("cipher: scrypt work factor %d outside [1, %d]", workFactor, MaxScryptWorkFactor)
	}
	params := options.Argon2.withDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// The age API takes the password as a string. That heap copy is
	// unavoidable; the Buffer remains the durable copy.
	recipient, err := age.NewScryptRecipient(password.String())
	if err != nil {
		return nil, fmt.Errorf("cipher: creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(workFactor)
	identity, err := age.NewScryptIdentity(password.String())
	if err != nil {
		return nil, fmt.Errorf("cipher: creating scrypt identity: %w", err)
	}
	identity.SetMaxWorkFactor(MaxScryptWorkFactor)

	return &Passphrase{
		kind:      kind,
		password:  password,
		params:    params,
		recipient: recipient,
		identity:  identity,
		openKeys:  make(map[string]*secret.Buffer),
	}, nil
}

// Kind returns the scheme Encrypt uses.
func (p *Passphrase) Kind() Kind {
	return p.kind
}

// Encrypt seals plaintext under the configured kind.
func (p *Passphrase) Encrypt(plaintext []byte) ([]byte, error) {
	if p.kind == KindXChaCha20Poly1305 {
		return p.sealXChaCha(plaintext)
	}
	return p.sealAge(plaintext)
}

// Decrypt opens a body produced by either kind. Any failure wraps
// [ErrAuthentication].
func (p *Passphrase) Decrypt(ciphertext []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(ciphertext, ageMagic):
		return p.openAge(ciphertext)
	case len(ciphertext) > 0 && ciphertext[0] == blobVersion:
		return p.openXChaCha(ciphertext)
	}
	return nil, fmt.Errorf("%w: unrecognized ciphertext format", ErrAuthentication)
}

// Close zeroes every derived key. The Passphrase must not be used
// afterwards.
func (p *Passphrase) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	for salt, key := range p.openKeys {
		errs = append(errs, key.Close())
		delete(p.openKeys, salt)
	}
	if p.sealKey != nil {
		errs = append(errs, p.sealKey.key.Close())
	}
	return errors.Join(errs...)
}

// ageMagic is the first line of every age file.
var ageMagic = []byte("age-encryption.org/v1\n")

func (p *Passphrase) sealAge(plaintext []byte) ([]byte, error) {
	var output bytes.Buffer
	writer, err := age.Encrypt(&output, p.recipient)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return output.Bytes(), nil
}

func (p *Passphrase) openAge(ciphertext []byte) ([]byte, error) {
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), p.identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return plaintext, nil
}
