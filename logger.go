// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"log/slog"
	"sync/atomic"
)

// silent discards every record without formatting it.
var silent = slog.New(slog.DiscardHandler)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(silent)
}

// SetLogger sets the logger used by cc and its sub-packages. Nothing is
// logged until it is called; nil restores that default. It is safe to call
// while other goroutines log.
//
// Levels:
//   - [slog.LevelDebug]: one record per draw-property, occlusion, commit or
//     paint pass, and per serializer clear
//   - [slog.LevelWarn]: a serializer that dropped its client state after
//     reading an inconsistent source tree
//
// Example:
//
//	cc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	logger.Store(l)
}

// Logger returns the logger set by SetLogger. The ax package logs through
// it too.
func Logger() *slog.Logger {
	return logger.Load()
}
