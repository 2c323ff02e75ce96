// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package run drives a test session: it starts the HTTP server, launches the
// engine against it and waits for the artifact's result.
package run

import (
	"context"
	"os"
	"time"

	"code.cloudfoundry.org/clock"

	"go.chromium.org/wasmtest/internal/config"
	"go.chromium.org/wasmtest/internal/engine"
	"go.chromium.org/wasmtest/internal/errors"
	"go.chromium.org/wasmtest/internal/harness"
	"go.chromium.org/wasmtest/internal/httpd"
	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/session"
	"go.chromium.org/wasmtest/internal/timing"
	"go.chromium.org/wasmtest/internal/xcontext"
)

// Run runs a session described by cfg and returns the process exit status.
// Canceling ctx interrupts the session. fatal is called when the session
// cannot continue at all; it may be nil to log and exit.
func Run(ctx context.Context, cfg *config.Config, fatal func(ctx context.Context, err error)) int {
	if cfg.LogFile != "" {
		f, err := os.Create(cfg.LogFile)
		if err != nil {
			logging.Error(ctx, "Failed to create log file: ", err)
			return 1
		}
		defer f.Close()
		ctx = logging.AttachLogger(ctx, logging.NewWriterLogger(f, logging.LevelDebug, true))
	}

	clk := clock.NewClock()
	tl := timing.NewLog(clk)
	ctx = timing.NewContext(ctx, tl)

	if cfg.Timeout > 0 {
		var cancel xcontext.CancelFunc
		ctx, cancel = xcontext.WithTimeout(ctx, cfg.Timeout, errors.Errorf("session timed out after %v", cfg.Timeout))
		defer cancel(context.Canceled)
	}

	status := runSession(ctx, clk, cfg, fatal)

	if cfg.TimingLog != "" {
		if err := writeTimingLog(cfg.TimingLog, tl); err != nil {
			logging.Warningf(ctx, "Failed to write timing log: %v", err)
		}
	}
	return status
}

func runSession(ctx context.Context, clk clock.Clock, cfg *config.Config, fatal func(ctx context.Context, err error)) int {
	st := timing.Start(ctx, "session")
	defer st.End()

	c, err := newController(clk, cfg, fatal)
	if err != nil {
		logging.Error(ctx, err)
		return 1
	}
	status := c.run(ctx)
	if st != nil {
		logging.Debugf(ctx, "Session %s finished in %v", c.sess.ID(), st.Elapsed().Round(time.Millisecond))
	}
	return status
}

func newController(clk clock.Clock, cfg *config.Config, fatal func(ctx context.Context, err error)) (*controller, error) {
	gen, err := harness.NewGenerator(cfg.Template)
	if err != nil {
		return nil, err
	}
	icon, err := harness.Favicon(cfg.Favicon)
	if err != nil {
		return nil, err
	}

	sess := session.New(session.Artifact{Script: cfg.Script, Binary: cfg.Binary}, cfg.AutoExit)
	srv := httpd.New(sess, gen, httpd.Options{
		Port:            cfg.Port,
		TestArgs:        cfg.TestArgs,
		RootDir:         cfg.RootDir,
		Favicon:         icon,
		Compress:        cfg.Compress,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Fatal:           fatal,
	})

	c := &controller{
		clk:             clk,
		sess:            sess,
		srv:             srv,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	if cfg.Engine != "" {
		c.eng = engine.NewLauncher(cfg.Engine, cfg.EngineArgs)
	}
	return c, nil
}

func writeTimingLog(path string, tl *timing.Log) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tl.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
