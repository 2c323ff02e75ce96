// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package httpd implements the loopback HTTP server that hosts a test
// artifact and receives its results.
package httpd

import (
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/netutil"

	"go.chromium.org/wasmtest/internal/errors"
	"go.chromium.org/wasmtest/internal/harness"
	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/session"
)

const (
	defaultPollInterval      = time.Millisecond
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = time.Second
)

// errStopped is returned by the listener once shutdown is requested.
var errStopped = errors.New("server stopped")

// Options configures a Server.
type Options struct {
	// Port to listen on. 0 picks an ephemeral port.
	Port int
	// TestArgs are passed to the artifact through the harness page.
	TestArgs []string
	// RootDir is the directory served for unknown paths. Relative /dump and
	// /preload paths are resolved against it. Empty means the working directory.
	RootDir string
	// Favicon is served at /favicon.ico.
	Favicon []byte
	// Compress enables gzip encoding of the artifact files.
	Compress bool
	// PollInterval bounds each wait for an incoming connection.
	PollInterval time.Duration
	// ShutdownTimeout bounds the wait for an in-flight request once the
	// server stops accepting.
	ShutdownTimeout time.Duration
	// ReadHeaderTimeout drops connections that send no request headers in
	// time, such as speculative preconnects, so they do not hold the only
	// connection slot.
	ReadHeaderTimeout time.Duration
	// Fatal is called when the run cannot continue, e.g. when an artifact
	// file is missing. It is expected not to return. If nil, the error is
	// logged and the process exits with status 1.
	Fatal func(ctx context.Context, err error)
}

// Server serves the harness page, the artifact and the result endpoints for
// a session.
type Server struct {
	sess *session.Session
	gen  *harness.Generator
	opts Options
}

// New returns a Server for sess that renders pages with gen.
func New(sess *session.Session, gen *harness.Generator, opts Options) *Server {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if opts.Fatal == nil {
		opts.Fatal = func(ctx context.Context, err error) {
			logging.Error(ctx, err)
			os.Exit(1)
		}
	}
	return &Server{sess: sess, gen: gen, opts: opts}
}

// Serve binds a loopback socket, publishes the root URL to the session and
// handles requests one at a time until shutdown is requested on the session.
// Canceling ctx does not stop the server; call Session.RequestShutdown.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(s.opts.Port)))
	if err != nil {
		return errors.Wrapf(err, "failed to listen on port %d", s.opts.Port)
	}
	tcpLn := ln.(*net.TCPListener)
	addr := tcpLn.Addr().(*net.TCPAddr)
	url := RootURL(addr)
	s.sess.MarkReady(addr.Port, url)
	logging.Infof(ctx, "Serving %s at %s", s.sess.Artifact().Script, url)

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ErrorLog:          log.New(&logWriter{ctx}, "", 0),
	}
	srv.SetKeepAlivesEnabled(false)

	pl := &pollListener{TCPListener: tcpLn, sess: s.sess, interval: s.opts.PollInterval}
	// A single connection slot serializes request handling.
	ll := netutil.LimitListener(pl, 1)

	// Accept blocks while the slot is held, so close the listener on
	// shutdown instead of relying on the poll alone.
	served := make(chan struct{})
	defer close(served)
	go func() {
		select {
		case <-s.sess.Shutdown():
			ll.Close()
		case <-served:
		}
	}()

	err = srv.Serve(ll)
	if !errors.Is(err, errStopped) {
		srv.Close()
		return errors.Wrap(err, "HTTP server failed")
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logging.Warningf(ctx, "Failed to wait for in-flight requests: %v", err)
	}
	logging.Debugf(ctx, "Stopped serving at %s", url)
	return nil
}

// RootURL returns the URL of the harness page served on addr.
func RootURL(addr *net.TCPAddr) string {
	host := addr.IP.String()
	if addr.IP == nil || addr.IP.IsUnspecified() {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(addr.Port))
}

// pollListener waits at most interval per Accept attempt so that it
// notices a shutdown request promptly even if no client connects.
type pollListener struct {
	*net.TCPListener
	sess     *session.Session
	interval time.Duration
}

func (l *pollListener) Accept() (net.Conn, error) {
	for {
		if l.sess.ShutdownRequested() {
			return nil, errStopped
		}
		if err := l.SetDeadline(time.Now().Add(l.interval)); err != nil {
			return nil, err
		}
		conn, err := l.TCPListener.Accept()
		if err == nil {
			return conn, nil
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			continue
		}
		if l.sess.ShutdownRequested() {
			return nil, errStopped
		}
		return nil, err
	}
}

// logWriter forwards net/http's internal logs to the context logger.
type logWriter struct {
	ctx context.Context
}

func (w *logWriter) Write(p []byte) (int, error) {
	logging.Debug(w.ctx, strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

var _ io.Writer = (*logWriter)(nil)
