// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package entry implements the archive entry: one file encoded as a
// self-describing header followed by a Huffman-packed body.
//
// [Header] carries everything a decoder needs: the filename, the
// original length (the decoder's stop condition), the body length,
// the normalized frequency table the tree is rebuilt from, and the
// content digest of the original bytes. [ReadHeader], [ParseHeader],
// and [ReadEntry] parse it; [Entry.WriteTo] and [Entry.MarshalBinary]
// produce it.
//
// [Codec] is the encode/decode pipeline. Encoding hashes, counts,
// normalizes, builds codes, packs, and optionally encrypts through a
// [Cipher]. Decoding runs the same steps backwards and refuses to
// return bytes that fail the digest check. Failures are typed so
// callers can tell a wrong password ([WrongPasswordError]) from a
// damaged file ([CorruptionError], [huffman.CorruptStreamError]) from
// a structurally broken archive ([ErrMalformedEntry]).
package entry
