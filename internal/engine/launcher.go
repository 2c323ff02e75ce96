// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package engine

import (
	"context"
	"os/exec"
	"runtime"
	"time"

	"go.chromium.org/wasmtest/internal/errors"
	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/shutil"
)

// killDelay is how long an engine may take to exit after SIGTERM before it
// is killed.
const killDelay = 5 * time.Second

// Launcher runs an engine pointed at a URL.
type Launcher struct {
	path     string
	implicit []string
	user     []string
}

// NewLauncher returns a Launcher for the engine at path. userArgs are
// appended after the family's implicit flags so that they take precedence in
// engines with last-wins flag parsing. A user --enable-features flag is
// merged into the implicit one instead.
func NewLauncher(path string, userArgs []string) *Launcher {
	return &Launcher{
		path:     path,
		implicit: ImplicitArgs(path, runtime.GOOS),
		user:     append([]string(nil), userArgs...),
	}
}

// Command returns the full argument vector used to open url.
func (l *Launcher) Command(url string) []string {
	args := []string{l.path}
	args = append(args, appendUserArgs(l.implicit, l.user)...)
	return append(args, url)
}

// Run starts the engine on url and waits for it to exit. The engine's own
// output is discarded. An engine exiting with a non-zero status is not an
// error; failing to start it is. If ctx is canceled, the engine's process
// group is terminated.
func (l *Launcher) Run(ctx context.Context, url string) error {
	argv := l.Command(url)
	logging.Infof(ctx, "Running %s", shutil.EscapeSlice(argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	// Leaving Stdout and Stderr nil connects them to the null device.
	cmd.WaitDelay = killDelay
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start %s", l.path)
	}
	logging.Debugf(ctx, "Engine started with PID %d", cmd.Process.Pid)

	err := cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		logging.Debug(ctx, "Engine exited")
	case ctx.Err() != nil:
		logging.Debugf(ctx, "Engine stopped: %v", ctx.Err())
	case errors.As(err, &exitErr):
		logging.Debugf(ctx, "Engine exited with status %d", exitErr.ExitCode())
	default:
		return errors.Wrapf(err, "failed to wait for %s", l.path)
	}
	return nil
}
