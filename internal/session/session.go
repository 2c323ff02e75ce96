// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package session holds the state of a single test run shared between the
// controller and the HTTP server goroutine.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Artifact identifies the compiled test under run.
type Artifact struct {
	// Script is the path of the JavaScript loader.
	Script string
	// Binary is the path of the WebAssembly binary loaded by Script.
	Binary string
}

// Session is the state of one test run. All methods are safe for concurrent use.
type Session struct {
	id       string
	artifact Artifact
	autoExit bool

	mu       sync.Mutex
	exitCode int
	exitSet  bool
	failures int

	shutdown     chan struct{}
	shutdownOnce sync.Once

	ready     chan struct{}
	readyOnce sync.Once
	port      int    // set before ready is closed
	rootURL   string // set before ready is closed
}

// New creates a Session for artifact. If autoExit is true, an exit report
// requests shutdown of the server.
func New(artifact Artifact, autoExit bool) *Session {
	return &Session{
		id:       uuid.NewString(),
		artifact: artifact,
		autoExit: autoExit,
		shutdown: make(chan struct{}),
		ready:    make(chan struct{}),
	}
}

// ID returns a random identifier unique to the session.
func (s *Session) ID() string { return s.id }

// Artifact returns the artifact under test.
func (s *Session) Artifact() Artifact { return s.artifact }

// AutoExit reports whether an exit report ends the session.
func (s *Session) AutoExit() bool { return s.autoExit }

// SetExitCode records the exit code reported by the artifact. The last
// call wins.
func (s *Session) SetExitCode(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exitCode = code
	s.exitSet = true
}

// ExitCode returns the recorded exit code and whether one was recorded.
func (s *Session) ExitCode() (code int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode, s.exitSet
}

// RecordFailure counts a request whose servicing failed.
func (s *Session) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
}

// Failures returns the number of failed requests.
func (s *Session) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

// MaxExitStatus is the largest exit status a process can report intact.
const MaxExitStatus = 255

// FinalStatus computes the process exit status of the session. An unset
// exit code is a failure, and so is a reported success when some request
// failed during the run. A reported code outside [0, MaxExitStatus] would be
// truncated by the OS, possibly to 0, so it is also a failure.
func (s *Session) FinalStatus() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.exitSet:
		return 1
	case s.exitCode < 0 || s.exitCode > MaxExitStatus:
		return 1
	case s.exitCode == 0 && s.failures > 0:
		return 1
	default:
		return s.exitCode
	}
}

// RequestShutdown asks the server loop to stop. Calls after the first have
// no effect.
func (s *Session) RequestShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

// ShutdownRequested reports whether RequestShutdown has been called.
func (s *Session) ShutdownRequested() bool {
	select {
	case <-s.shutdown:
		return true
	default:
		return false
	}
}

// Shutdown returns a channel closed when shutdown is requested.
func (s *Session) Shutdown() <-chan struct{} { return s.shutdown }

// MarkReady publishes the bound port and root URL and signals readiness.
// Only the first call has an effect.
func (s *Session) MarkReady(port int, rootURL string) {
	s.readyOnce.Do(func() {
		s.port = port
		s.rootURL = rootURL
		close(s.ready)
	})
}

// Ready returns a channel closed once the server socket is bound.
func (s *Session) Ready() <-chan struct{} { return s.ready }

// RootURL returns the URL of the harness page. It panics if called before
// the server is ready.
func (s *Session) RootURL() string {
	s.mustBeReady()
	return s.rootURL
}

// Port returns the bound port. It panics if called before the server is ready.
func (s *Session) Port() int {
	s.mustBeReady()
	return s.port
}

func (s *Session) mustBeReady() {
	select {
	case <-s.ready:
	default:
		panic("session: server address read before ready")
	}
}
