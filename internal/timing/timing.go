// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package timing records how long each phase of a test session takes.
package timing

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
)

type logKey struct{}

// Log contains nested timing information.
type Log struct {
	clk clock.Clock

	mu     sync.Mutex
	stages []*Stage
}

// NewLog creates an empty Log that reads time from clk.
func NewLog(clk clock.Clock) *Log {
	return &Log{clk: clk}
}

// NewContext returns a new context that carries l.
func NewContext(ctx context.Context, l *Log) context.Context {
	return context.WithValue(ctx, logKey{}, l)
}

// FromContext returns the Log stored in ctx, if any.
func FromContext(ctx context.Context) (*Log, bool) {
	l, ok := ctx.Value(logKey{}).(*Log)
	return l, ok
}

// Start starts a new stage named name within the Log attached to ctx. It
// returns nil if ctx carries no Log; calling End on a nil Stage is a no-op.
//
//	defer timing.Start(ctx, "engine").End()
func Start(ctx context.Context, name string) *Stage {
	l, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return l.Start(name)
}

// Start creates a named stage as a child of the innermost active stage, or
// as a top-level stage if none is active.
func (l *Log) Start(name string) *Stage {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &Stage{Name: name, StartTime: l.clk.Now(), log: l}
	if len(l.stages) == 0 || !l.stages[len(l.stages)-1].active() {
		l.stages = append(l.stages, s)
		return s
	}
	p := l.stages[len(l.stages)-1]
	for len(p.Children) > 0 && p.Children[len(p.Children)-1].active() {
		p = p.Children[len(p.Children)-1]
	}
	p.Children = append(p.Children, s)
	return s
}

// Stages returns the top-level stages recorded so far.
func (l *Log) Stages() []*Stage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Stage(nil), l.stages...)
}

// Write writes the log to w as a JSON array of stages. Each stage is an array
// of its duration in seconds, its name and optionally an array of children:
//
//	[[4.000, "session", [
//	         [0.002, "serve"],
//	         [3.998, "await"]]]]
func (l *Log) Write(w io.Writer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// bufio.Writer keeps the first error and drops later writes.
	bw := bufio.NewWriter(w)
	io.WriteString(bw, "[")
	for i, s := range l.stages {
		indent := ""
		if i > 0 {
			indent = " "
		}
		if err := s.write(bw, indent, " ", i == len(l.stages)-1); err != nil {
			return err
		}
	}
	io.WriteString(bw, "]\n")
	return bw.Flush()
}

// Stage represents a discrete unit of work that is being timed.
type Stage struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Children  []*Stage

	log *Log
}

// Elapsed returns the duration of the stage, or the time since its start if
// it has not ended yet.
func (s *Stage) Elapsed() time.Duration {
	if s.active() {
		return s.log.clk.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// End ends the stage and any children still active.
func (s *Stage) End() {
	if s == nil {
		return
	}
	s.log.mu.Lock()
	defer s.log.mu.Unlock()
	s.end(s.log.clk.Now())
}

func (s *Stage) end(now time.Time) {
	for _, c := range s.Children {
		c.end(now)
	}
	if s.active() {
		s.EndTime = now
	}
}

func (s *Stage) active() bool {
	return s.EndTime.IsZero()
}

// write writes s and its children as a JSON array. The first line is
// indented by initialIndent and the following ones by followIndent.
func (s *Stage) write(w *bufio.Writer, initialIndent, followIndent string, last bool) error {
	name, err := json.Marshal(s.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s[%0.3f, %s", initialIndent, s.Elapsed().Seconds(), name)

	if len(s.Children) > 0 {
		io.WriteString(w, ", [\n")
		ci := followIndent + strings.Repeat(" ", 8)
		for i, c := range s.Children {
			if err := c.write(w, ci, ci, i == len(s.Children)-1); err != nil {
				return err
			}
		}
		io.WriteString(w, "]")
	}

	io.WriteString(w, "]")
	if !last {
		io.WriteString(w, ",\n")
	}
	return nil
}
