// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/subcommands"

	"go.chromium.org/wasmtest/internal/config"
)

type stubRunWrapper struct {
	status int
	cfg    *config.Config
}

func (w *stubRunWrapper) run(ctx context.Context, cfg *config.Config) int {
	w.cfg = cfg
	return w.status
}

// executeRunCmd creates a runCmd and executes it with args.
func executeRunCmd(t *testing.T, args []string, wrapper *stubRunWrapper) subcommands.ExitStatus {
	t.Helper()
	cmd := newRunCmd()
	cmd.wrapper = wrapper
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	cmd.SetFlags(flags)
	if err := flags.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cmd.Execute(context.Background(), flags)
}

func TestRunCmdConfig(t *testing.T) {
	args := []string{"-engine=chromium", "-exit", "out/TestFoo.js", "-I", "data"}
	wrapper := &stubRunWrapper{}
	if status := executeRunCmd(t, args, wrapper); status != subcommands.ExitSuccess {
		t.Fatalf("Execute(%q) returned %v; want %v", args, status, subcommands.ExitSuccess)
	}
	if wrapper.cfg == nil {
		t.Fatalf("Execute(%q) did not run the test", args)
	}
	if wrapper.cfg.Script != "out/TestFoo.js" || wrapper.cfg.Binary != "out/TestFoo.wasm" {
		t.Errorf("Execute(%q) passed artifact %q, %q", args, wrapper.cfg.Script, wrapper.cfg.Binary)
	}
	if diff := cmp.Diff(wrapper.cfg.TestArgs, []string{"-I", "data"}); diff != "" {
		t.Errorf("Test args mismatch (-got +want):\n%s", diff)
	}
	if !wrapper.cfg.AutoExit || wrapper.cfg.Engine != "chromium" {
		t.Errorf("Execute(%q) passed AutoExit=%v Engine=%q", args, wrapper.cfg.AutoExit, wrapper.cfg.Engine)
	}
}

func TestRunCmdStatus(t *testing.T) {
	for _, code := range []int{0, 1, 42} {
		wrapper := &stubRunWrapper{status: code}
		if status := executeRunCmd(t, []string{"a.js"}, wrapper); int(status) != code {
			t.Errorf("Execute returned %v; want %d", status, code)
		}
	}
}

func TestRunCmdMissingScript(t *testing.T) {
	wrapper := &stubRunWrapper{}
	if status := executeRunCmd(t, []string{"-exit"}, wrapper); status != subcommands.ExitUsageError {
		t.Errorf("Execute returned %v; want %v", status, subcommands.ExitUsageError)
	}
	if wrapper.cfg != nil {
		t.Error("Test was run without a script")
	}
}

func TestRunCmdBadEngineArgs(t *testing.T) {
	wrapper := &stubRunWrapper{}
	if status := executeRunCmd(t, []string{`-engineargs="--foo`, "a.js"}, wrapper); status != subcommands.ExitFailure {
		t.Errorf("Execute returned %v; want %v", status, subcommands.ExitFailure)
	}
}
