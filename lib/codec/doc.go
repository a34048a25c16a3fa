// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration for machine-readable
// command output (--cbor on list, inspect, and stats).
//
// The encoder uses Core Deterministic Encoding, so the same report
// always produces identical bytes and outputs can be compared or
// hashed directly. Report types carry `json` struct tags only;
// fxamacker/cbor reads them as a fallback, which keeps field names
// identical between --json and --cbor output.
package codec
