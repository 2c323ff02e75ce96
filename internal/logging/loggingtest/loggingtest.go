// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package loggingtest provides logging utilities for unit tests.
package loggingtest

import (
	"strings"
	"sync"
	"testing"
	"time"

	"go.chromium.org/wasmtest/internal/logging"
)

// Logger is a logging.Logger that forwards every log to t.Logf and keeps
// the messages at or above a minimum level for later inspection.
type Logger struct {
	t   testing.TB
	min logging.Level

	mu   sync.Mutex
	msgs []string
}

// NewLogger returns a Logger keeping logs at level or above.
func NewLogger(t testing.TB, level logging.Level) *Logger {
	return &Logger{t: t, min: level}
}

// Log implements logging.Logger.
func (l *Logger) Log(level logging.Level, ts time.Time, msg string) {
	l.t.Helper()
	l.t.Logf("[%s] %s", level, msg)
	if level < l.min {
		return
	}
	l.mu.Lock()
	l.msgs = append(l.msgs, msg)
	l.mu.Unlock()
}

// Logs returns the kept messages in order.
func (l *Logger) Logs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

// String returns the kept messages joined by newlines.
func (l *Logger) String() string {
	return strings.Join(l.Logs(), "\n")
}
