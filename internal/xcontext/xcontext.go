// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package xcontext provides contexts that are canceled with custom errors,
// so that a session can tell an interruption by signal from a timeout.
//
// Unlike contexts from context.WithCancelCause, Err returns the cause itself
// rather than context.Canceled, so that code logging ctx.Err() reports why
// the session ended.
package xcontext

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"
)

// clk is replaced in unit tests to use fake clocks.
var clk clock.Clock = clock.NewClock()

// CancelFunc cancels an associated context with err. Calls after the first
// have no effect. It panics if err is nil. When it returns, the context is
// guaranteed to be canceled.
type CancelFunc func(err error)

type causeContext struct {
	context.Context // created by context.WithCancelCause
	cancelCause     context.CancelCauseFunc

	deadline    time.Time
	hasDeadline bool
}

func newContext(parent context.Context) *causeContext {
	ctx, cancel := context.WithCancelCause(parent)
	deadline, ok := parent.Deadline()
	return &causeContext{Context: ctx, cancelCause: cancel, deadline: deadline, hasDeadline: ok}
}

func (c *causeContext) Deadline() (time.Time, bool) {
	return c.deadline, c.hasDeadline
}

// Err returns the error the context was canceled with.
func (c *causeContext) Err() error {
	if c.Context.Err() == nil {
		return nil
	}
	return context.Cause(c.Context)
}

func (c *causeContext) cancel(err error) {
	if err == nil {
		panic("xcontext: cancel called with nil")
	}
	c.cancelCause(err)
}

// WithCancel returns a context that can be canceled with arbitrary errors.
func WithCancel(parent context.Context) (context.Context, CancelFunc) {
	ctx := newContext(parent)
	return ctx, ctx.cancel
}

// WithTimeout returns a context that is canceled with err after d elapses,
// unless parent's deadline comes first. It panics if err is nil.
func WithTimeout(parent context.Context, d time.Duration, err error) (context.Context, CancelFunc) {
	if err == nil {
		panic("xcontext: WithTimeout called with nil err")
	}
	ctx := newContext(parent)
	deadline := clk.Now().Add(d)
	if ctx.hasDeadline && !deadline.Before(ctx.deadline) {
		return ctx, ctx.cancel
	}
	ctx.deadline, ctx.hasDeadline = deadline, true

	if d <= 0 {
		ctx.cancel(err)
		return ctx, ctx.cancel
	}
	tm := clk.NewTimer(d)
	go func() {
		defer tm.Stop()
		select {
		case <-tm.C():
			ctx.cancel(err)
		case <-ctx.Done():
		}
	}()
	return ctx, ctx.cancel
}
