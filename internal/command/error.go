// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package command contains code shared by wasmtest subcommands: flag values,
// status errors and signal handling.
package command

import (
	"fmt"
	"io"

	"go.chromium.org/wasmtest/internal/errors"
)

// StatusError implements the error interface and contains an additional status code.
type StatusError struct {
	msg    string
	status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v (status %v)", e.msg, e.status)
}

// Status returns e's status code.
func (e *StatusError) Status() int {
	return e.status
}

// NewStatusErrorf creates a StatusError with the passed status code and formatted string.
func NewStatusErrorf(status int, format string, args ...interface{}) *StatusError {
	return &StatusError{fmt.Sprintf(format, args...), status}
}

// WriteError writes a newline-terminated fatal error to w and returns the
// status code to use when exiting. If err does not wrap a *StatusError,
// status code 1 is returned.
func WriteError(w io.Writer, err error) int {
	msg := err.Error()
	status := 1

	var se *StatusError
	if errors.As(err, &se) {
		if se == err {
			msg = se.msg
		}
		status = se.status
	}

	if len(msg) > 0 && msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	io.WriteString(w, msg)
	return status
}
