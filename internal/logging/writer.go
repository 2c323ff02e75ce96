// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging

import (
	"io"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02T15:04:05.000000Z "

// WriterLogger is a Logger that writes one line per log to an io.Writer,
// e.g. the console or a log file.
type WriterLogger struct {
	level     Level
	timestamp bool

	mu sync.Mutex
	w  io.Writer
}

// NewWriterLogger returns a WriterLogger that writes logs at level or above
// to w. If timestamp is true, each line starts with the UTC time of the log.
// Warnings and errors are tagged with their level name.
func NewWriterLogger(w io.Writer, level Level, timestamp bool) *WriterLogger {
	return &WriterLogger{level: level, timestamp: timestamp, w: w}
}

// Log writes a log line. Write errors are ignored.
func (l *WriterLogger) Log(level Level, ts time.Time, msg string) {
	if level < l.level {
		return
	}
	var line []byte
	if l.timestamp {
		line = ts.UTC().AppendFormat(line, timestampFormat)
	}
	if level >= LevelWarning {
		line = append(line, level.String()+": "...)
	}
	line = append(line, msg...)
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(line)
}
