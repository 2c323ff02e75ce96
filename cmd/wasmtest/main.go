// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package main implements the wasmtest executable, which runs WebAssembly
// test artifacts in a browser and reports their exit codes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"golang.org/x/term"

	"go.chromium.org/wasmtest/internal/command"
	"go.chromium.org/wasmtest/internal/errors"
	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/xcontext"
)

// Version is the version info of this command. It is filled in at build time.
var Version = "<unknown>"

// newLogger creates a logger writing to stdout based on the supplied
// command-line flags.
func newLogger(verbose, logTime bool) logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.NewWriterLogger(os.Stdout, level, logTime)
}

// installSignalHandler cancels ctx on the first SIGINT or SIGTERM so that
// the session shuts down gracefully, restoring the terminal first.
func installSignalHandler(ctx context.Context, cancel xcontext.CancelFunc) {
	var st *term.State
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		var err error
		if st, err = term.GetState(fd); err != nil {
			logging.Debug(ctx, "Failed to get terminal state: ", err)
		}
	}

	command.InstallSignalHandler(os.Stderr, func(sig os.Signal) {
		if st != nil {
			term.Restore(fd, st)
		}
		cancel(errors.Errorf("caught %v signal", sig))
	})
}

// doMain implements the main body of the program. It's a separate function
// so that its deferred functions run before os.Exit.
func doMain() int {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(newRunCmd(), "")
	subcommands.Register(newEnginesCmd(os.Stdout), "")

	version := flag.Bool("version", false, "print version and exit")
	verbose := flag.Bool("verbose", false, "use verbose logging")
	logTime := flag.Bool("logtime", false, "include date/time headers in logs")
	flag.Parse()

	if *version {
		fmt.Printf("wasmtest version %s\n", Version)
		return 0
	}

	ctx := logging.AttachLogger(context.Background(), newLogger(*verbose, *logTime))
	ctx, cancel := xcontext.WithCancel(ctx)
	defer cancel(context.Canceled)
	installSignalHandler(ctx, cancel)

	return int(subcommands.Execute(ctx))
}

func main() {
	os.Exit(doMain())
}
