// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"go.chromium.org/wasmtest/internal/command"
	"go.chromium.org/wasmtest/internal/config"
	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/run"
)

// runWrapper allows run.Run to be stubbed out for testing.
type runWrapper interface {
	run(ctx context.Context, cfg *config.Config) int
}

// realRunWrapper calls the real run.Run.
type realRunWrapper struct{}

func (realRunWrapper) run(ctx context.Context, cfg *config.Config) int {
	return run.Run(ctx, cfg, func(ctx context.Context, err error) {
		logging.Error(ctx, err)
		os.Exit(1)
	})
}

// runCmd implements subcommands.Command to run a test artifact.
type runCmd struct {
	cfg     *config.Config
	wrapper runWrapper
}

var _ = subcommands.Command(&runCmd{})

func newRunCmd() *runCmd {
	return &runCmd{cfg: config.NewConfig(), wrapper: realRunWrapper{}}
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run a WebAssembly test in a browser" }
func (*runCmd) Usage() string {
	return `Usage: run [flag]... <test.js> [testarg]...

Description:
    Serves the test script, its WebAssembly binary and a harness page on a
    loopback port, opens the page with the engine and waits for the test to
    report its exit code. Exits with the reported code, or 1 if the test
    never reported one or the run was interrupted.

    Without -engine, the page is served until interrupted so that a browser
    can be pointed at it manually.

    Arguments after the script are passed to the test.

Flag:
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	r.cfg.SetFlags(f)
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := r.cfg.Finalize(f); err != nil {
		if status := command.WriteError(os.Stderr, err); status == int(subcommands.ExitUsageError) {
			os.Stderr.WriteString("\n" + r.Usage())
			f.PrintDefaults()
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitStatus(r.wrapper.run(ctx, r.cfg))
}
