// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package run

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"

	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/session"
	"go.chromium.org/wasmtest/internal/timing"
)

// engineGrace is how long the engine may keep running after the session
// was asked to shut down, e.g. to close its own window.
const engineGrace = 5 * time.Second

// server is implemented by *httpd.Server.
type server interface {
	Serve(ctx context.Context) error
}

// engineRunner is implemented by *engine.Launcher.
type engineRunner interface {
	Run(ctx context.Context, url string) error
}

type controller struct {
	clk             clock.Clock
	sess            *session.Session
	srv             server
	eng             engineRunner // nil to only serve
	shutdownTimeout time.Duration
}

// run drives the session to completion and returns its final status.
func (c *controller) run(ctx context.Context) int {
	logging.Infof(ctx, "Starting session %s", c.sess.ID())

	// The server stops on the session's shutdown request, not on ctx.
	done := make(chan error, 1)
	go func() {
		done <- c.srv.Serve(context.WithoutCancel(ctx))
	}()

	st := timing.Start(ctx, "serve")
	select {
	case <-c.sess.Ready():
		st.End()
	case err := <-done:
		st.End()
		if err == nil {
			// Shutdown was requested before the socket was bound.
			return c.sess.FinalStatus()
		}
		logging.Errorf(ctx, "Failed to start server: %v", err)
		return 1
	case <-ctx.Done():
		st.End()
		return c.interrupt(ctx, done)
	}

	url := c.sess.RootURL()
	if c.eng != nil {
		st := timing.Start(ctx, "engine")
		if err := c.runEngine(ctx, url); err != nil {
			logging.Errorf(ctx, "Failed to run engine: %v", err)
			c.sess.RequestShutdown()
			c.sess.SetExitCode(1)
		}
		st.End()
	} else {
		logging.Infof(ctx, "No engine given; serving %s until the test exits or the run is interrupted", url)
	}

	st = timing.Start(ctx, "await")
	defer st.End()
	select {
	case err := <-done:
		if err != nil {
			logging.Errorf(ctx, "Server failed: %v", err)
			c.sess.RecordFailure()
		}
		return c.finish(ctx)
	case <-ctx.Done():
		return c.interrupt(ctx, done)
	}
}

// runEngine runs the engine until it exits. An engine still running
// engineGrace after shutdown was requested is terminated.
func (c *controller) runEngine(ctx context.Context, url string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.sess.Shutdown():
		case <-ctx.Done():
			return
		}
		select {
		case <-c.clk.After(engineGrace):
			logging.Debug(ctx, "Engine did not exit after the test finished; stopping it")
			cancel()
		case <-ctx.Done():
		}
	}()
	return c.eng.Run(ctx, url)
}

// interrupt stops the session after ctx was canceled and waits a bounded
// time for the server to stop.
func (c *controller) interrupt(ctx context.Context, done <-chan error) int {
	logging.Infof(ctx, "Interrupted: %v", ctx.Err())
	c.sess.RequestShutdown()
	c.sess.SetExitCode(1)

	select {
	case <-done:
	case <-c.clk.After(c.shutdownTimeout):
		select {
		case <-c.sess.Ready():
			logging.Warningf(ctx, "Port %d may not be reusable. Failed to stop HTTP server at %s", c.sess.Port(), c.sess.RootURL())
		default:
			logging.Warning(ctx, "Failed to stop HTTP server")
		}
	}
	return c.finish(ctx)
}

func (c *controller) finish(ctx context.Context) int {
	status := c.sess.FinalStatus()
	code, ok := c.sess.ExitCode()
	failures := c.sess.Failures()
	switch {
	case !ok:
		logging.Info(ctx, "Test did not report an exit code")
	case code < 0 || code > session.MaxExitStatus:
		logging.Warningf(ctx, "Test exited with code %d, which is not a valid exit status; exiting with %d", code, status)
	case failures > 0:
		logging.Infof(ctx, "Test exited with code %d; %d request(s) failed", code, failures)
	default:
		logging.Infof(ctx, "Test exited with code %d", code)
	}
	return status
}
