// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging_test

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"go.chromium.org/wasmtest/internal/logging"
)

func TestWriterLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, logging.LevelInfo, false)
	logger.Log(logging.LevelInfo, time.Time{}, "serving")
	logger.Log(logging.LevelDebug, time.Time{}, "GET /")
	logger.Log(logging.LevelWarning, time.Time{}, "port may not be reusable")
	logger.Log(logging.LevelError, time.Time{}, "bad exit code")

	const want = "serving\nWARNING: port may not be reusable\nERROR: bad exit code\n"
	if got := buf.String(); got != want {
		t.Errorf("Output mismatch: got %q, want %q", got, want)
	}
}

func TestWriterLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, logging.LevelDebug, true)
	logger.Log(logging.LevelDebug, time.Date(2026, 1, 2, 3, 4, 5, 6000, time.UTC), "foo")
	logger.Log(logging.LevelError, time.Now(), "bar")

	pattern := regexp.MustCompile(`^2026-01-02T03:04:05.000006Z foo\n\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d\.\d{6}Z ERROR: bar\n$`)
	if got := buf.String(); !pattern.MatchString(got) {
		t.Errorf("Output mismatch: got %q, want match with regexp %q", got, pattern)
	}
}
