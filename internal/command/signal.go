// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// exit is replaced in tests.
var exit = os.Exit

// InstallSignalHandler handles SIGINT and SIGTERM until the returned stop
// function is called. Messages are written to out, typically stderr.
//
// The first signal calls callback, which should start a graceful shutdown.
// SIGTERM usually comes from an outer harness that is about to give up on
// us, so goroutine stacks are dumped and child processes terminated as well.
// A second signal exits with status 1 at once.
func InstallSignalHandler(out io.Writer, callback func(sig os.Signal)) (stop func()) {
	name := filepath.Base(os.Args[0])
	ch := make(chan os.Signal, 2)
	done := make(chan struct{})
	signal.Notify(ch, unix.SIGINT, unix.SIGTERM)

	go func() {
		var caught os.Signal
		for {
			select {
			case sig := <-ch:
				if caught != nil {
					fmt.Fprintf(out, "\n%s: Caught %v signal again; exiting\n", name, sig)
					exit(1)
					return
				}
				caught = sig
				fmt.Fprintf(out, "\n%s: Caught %v signal; shutting down\n", name, sig)
				callback(sig)
				if sig == unix.SIGTERM {
					dumpGoroutines(out, name)
					terminateChildren(out)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func dumpGoroutines(out io.Writer, name string) {
	fmt.Fprintf(out, "%s: Goroutines at SIGTERM:\n\n", name)
	pprof.Lookup("goroutine").WriteTo(out, 2)
	fmt.Fprintf(out, "\n%s: End of goroutines\n", name)
}

// terminateChildren sends SIGTERM to direct children so that an engine does
// not outlive us.
func terminateChildren(out io.Writer) {
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		fmt.Fprintf(out, "Failed to look up own process: %v\n", err)
		return
	}
	children, err := self.Children()
	if err != nil {
		// gopsutil reports ErrorNoChildren when there is nothing to do.
		return
	}
	for _, c := range children {
		if err := c.Terminate(); err != nil {
			fmt.Fprintf(out, "Failed to terminate PID %d: %v\n", c.Pid, err)
		}
	}
}
