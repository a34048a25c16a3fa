// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process turns the error returned by a binary's run function
// into an exit status. It is one of the few places allowed to write to
// stderr directly, since it runs after every logger is gone.
package process
