// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cipher implements the password-based encryption layer for
// archive entry bodies.
//
// [Passphrase] satisfies entry.Cipher. It encrypts with one of two
// kinds:
//
//   - [KindAge] -- an age file with a single scrypt passphrase stanza
//     (filippo.io/age). Every body carries its own scrypt salt.
//   - [KindXChaCha20Poly1305] -- a versioned blob sealed with
//     XChaCha20-Poly1305 under a key stretched by Argon2id. The Argon2
//     parameters and salt travel in the blob, authenticated as AAD.
//
// Decryption does not need the kind: the blob format is recognized
// from its first bytes, so an archive written under either kind opens
// with only the password. Every decryption failure wraps
// [ErrAuthentication].
//
// Passwords and derived keys stay in [secret.Buffer] memory, apart
// from the string copy the age API requires.
package cipher
