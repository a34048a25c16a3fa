// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [WriteTree] materializes a map of slash paths to contents under a
// directory and [ReadTree] reads one back, so tests can compare an
// extracted tree against its source with a single map comparison.
// [RandomBytes] produces deterministic pseudo-random input from a
// seed.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
