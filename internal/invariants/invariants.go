// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package invariants gates debug-only consistency checks.
//
// Checks guarded by Enabled catch caller misuse that production builds
// tolerate by falling back to a conservative answer. Build with
// `-tags invariants` (or `-race`) to turn them into panics.
package invariants

import "github.com/cockroachdb/errors"

// Check panics with an assertion failure when invariants are enabled and
// cond is false. It is a no-op otherwise.
func Check(cond bool, format string, args ...interface{}) {
	if Enabled && !cond {
		panic(errors.AssertionFailedf(format, args...))
	}
}
