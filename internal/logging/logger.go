// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package logging provides leveled loggers that are attached to and consumed
// through context.Context.
package logging

import "time"

// Level indicates a logging level. A larger level value means a log is more
// important.
type Level int

const (
	// LevelDebug is used for per-request traces and subprocess details.
	LevelDebug Level = iota
	// LevelInfo is used for session lifecycle events and test console output.
	LevelInfo
	// LevelWarning is used for degraded but non-fatal outcomes.
	LevelWarning
	// LevelError is used for failures that affect the exit status.
	LevelError
)

// String returns the upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger consumes logs sent via context.Context.
//
// A Logger attached to a context by AttachLogger consumes all logs sent to
// that context and to its descendant contexts.
type Logger interface {
	// Log gets called for a log entry. It may be called concurrently.
	Log(level Level, ts time.Time, msg string)
}

// teeLogger forwards logs to two loggers.
type teeLogger struct {
	child, parent Logger
}

func (l teeLogger) Log(level Level, ts time.Time, msg string) {
	l.child.Log(level, ts, msg)
	l.parent.Log(level, ts, msg)
}
