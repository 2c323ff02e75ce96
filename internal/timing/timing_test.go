// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package timing_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"

	"go.chromium.org/wasmtest/internal/timing"
)

func TestStartNil(t *testing.T) {
	// End on the nil stage from a context without a Log is a no-op.
	timing.Start(context.Background(), "engine").End()
}

func TestNesting(t *testing.T) {
	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	l := timing.NewLog(clk)
	ctx := timing.NewContext(context.Background(), l)

	session := timing.Start(ctx, "session")
	serve := timing.Start(ctx, "serve")
	clk.Increment(time.Second)
	serve.End()
	engine := timing.Start(ctx, "engine")
	clk.Increment(2 * time.Second)
	engine.End()
	session.End()
	timing.Start(ctx, "shutdown").End()

	stages := l.Stages()
	if len(stages) != 2 {
		t.Fatalf("Got %d top-level stages; want 2", len(stages))
	}
	if got := stages[0].Elapsed(); got != 3*time.Second {
		t.Errorf("session elapsed %v; want 3s", got)
	}
	if n := len(stages[0].Children); n != 2 {
		t.Fatalf("session has %d children; want 2", n)
	}
	if name := stages[0].Children[1].Name; name != "engine" {
		t.Errorf("Second child is %q; want %q", name, "engine")
	}
}

func TestEndClosesChildren(t *testing.T) {
	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	l := timing.NewLog(clk)
	outer := l.Start("outer")
	l.Start("inner")
	clk.Increment(time.Second)
	outer.End()

	inner := l.Stages()[0].Children[0]
	if got := inner.Elapsed(); got != time.Second {
		t.Errorf("inner elapsed %v; want 1s", got)
	}
}

func TestWrite(t *testing.T) {
	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	l := timing.NewLog(clk)

	s0 := l.Start("session")
	s1 := l.Start("serve")
	clk.Increment(time.Second)
	s1.End()
	s2 := l.Start("await")
	clk.Increment(3 * time.Second)
	s2.End()
	s0.End()
	s3 := l.Start("shutdown")
	clk.Increment(500 * time.Millisecond)
	s3.End()

	var b bytes.Buffer
	if err := l.Write(&b); err != nil {
		t.Fatal("Write failed: ", err)
	}
	const want = `[[4.000, "session", [
         [1.000, "serve"],
         [3.000, "await"]]],
 [0.500, "shutdown"]]
`
	if got := b.String(); got != want {
		t.Errorf("Write wrote:\n%s\nwant:\n%s", got, want)
	}
}
