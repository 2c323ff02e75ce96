// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package errors provides basic utilities to construct errors.
//
// Use this package rather than the standard errors.New or fmt.Errorf so that
// failures carry the location where they were created:
//
//	errors.New("engine not found")
//	errors.Errorf("port %d out of range", port)
//	errors.Wrapf(err, "failed to listen on port %d", port)
//
// Formatting an error with "%+v" prints each link of the chain followed by
// its origin. Links created outside this package are shown as "at ???".
package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

type impl struct {
	msg   string
	pc    uintptr // program counter of the constructor's caller
	cause error
}

func newImpl(msg string, cause error) *impl {
	var pcs [1]uintptr
	// Skip runtime.Callers, newImpl and the exported constructor.
	runtime.Callers(3, pcs[:])
	return &impl{msg: msg, pc: pcs[0], cause: cause}
}

func (e *impl) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *impl) Unwrap() error { return e.cause }

// origin returns "func (file:line)" for the location that created e.
func (e *impl) origin() string {
	f, _ := runtime.CallersFrames([]uintptr{e.pc}).Next()
	if f.Function == "" {
		return "???"
	}
	return fmt.Sprintf("%s (%s:%d)", f.Function, filepath.Base(f.File), f.Line)
}

// Format implements fmt.Formatter.
func (e *impl) Format(s fmt.State, verb rune) {
	if verb != 'v' || !s.Flag('+') {
		io.WriteString(s, e.Error())
		return
	}
	var links []string
	var err error = e
	for err != nil {
		ie, ok := err.(*impl)
		if !ok {
			links = append(links, err.Error()+"\n\tat ???")
			break
		}
		links = append(links, ie.msg+"\n\tat "+ie.origin())
		err = ie.cause
	}
	io.WriteString(s, strings.Join(links, "\n"))
}

// New creates a new error with the given message.
func New(msg string) error {
	return newImpl(msg, nil)
}

// Errorf creates a new error with a formatted message.
func Errorf(format string, args ...interface{}) error {
	return newImpl(fmt.Sprintf(format, args...), nil)
}

// Wrap creates a new error with the given message, wrapping cause.
// If cause is nil, this is the same as New.
func Wrap(cause error, msg string) error {
	return newImpl(msg, cause)
}

// Wrapf creates a new error with a formatted message, wrapping cause.
// If cause is nil, this is the same as Errorf.
func Wrapf(cause error, format string, args ...interface{}) error {
	return newImpl(fmt.Sprintf(format, args...), cause)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
