// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package httpd

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"go.chromium.org/wasmtest/fsutil"
	"go.chromium.org/wasmtest/internal/errors"
	"go.chromium.org/wasmtest/internal/harness"
	"go.chromium.org/wasmtest/internal/logging"
)

// Replies to POST requests understood by the harness page.
const (
	replyOK          = "OK"
	replyCloseWindow = "close-window"
	replyBadDump     = "Invalid query for /dump"
)

// Content types of the artifact files.
const (
	contentTypeJS   = "text/javascript"
	contentTypeWasm = "application/wasm"
	contentTypeHTML = "text/html"
)

// statusWriter records whether and how a response was started.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// ServeHTTP dispatches a request. Errors returned by handlers are logged and
// counted as request failures on the session without stopping the server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sw := &statusWriter{ResponseWriter: w}
	sw.Header().Set("Cache-Control", "no-store")

	defer func() {
		if p := recover(); p != nil {
			logging.Errorf(ctx, "Panic while handling %s %s: %v", r.Method, r.URL.Path, p)
			s.sess.RecordFailure()
			if sw.status == 0 {
				http.Error(sw, "internal error", http.StatusInternalServerError)
			}
		}
		logging.Debugf(ctx, "%s %s %d", r.Method, r.URL.RequestURI(), sw.status)
	}()

	var err error
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		err = s.get(ctx, sw, r)
	case http.MethodPost:
		err = s.post(ctx, sw, r)
	default:
		sw.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(sw, "method not allowed", http.StatusMethodNotAllowed)
	}
	if err != nil {
		logging.Errorf(ctx, "Failed to handle %s %s: %v", r.Method, r.URL.Path, err)
		s.sess.RecordFailure()
		if sw.status == 0 {
			http.Error(sw, err.Error(), http.StatusInternalServerError)
		}
	}
}

func (s *Server) get(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	art := s.sess.Artifact()
	switch r.URL.Path {
	case "/":
		return s.servePage(w, r)
	case "/" + filepath.Base(art.Script):
		return s.serveArtifact(ctx, w, r, art.Script, contentTypeJS)
	case "/" + filepath.Base(art.Binary):
		return s.serveArtifact(ctx, w, r, art.Binary, contentTypeWasm)
	case "/favicon.ico":
		http.ServeContent(w, r, "favicon.ico", time.Time{}, bytes.NewReader(s.favicon()))
		return nil
	case "/preload":
		return s.servePreload(ctx, w, r)
	default:
		http.FileServer(http.Dir(s.rootDir())).ServeHTTP(w, r)
		return nil
	}
}

func (s *Server) post(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	// Tools probe liveness with empty POSTs.
	if r.ContentLength == 0 {
		reply(w, replyOK)
		return nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read request body")
	}

	switch r.URL.Path {
	case "/dump":
		return s.handleDump(ctx, w, r, body)
	case "/console_output":
		logging.Info(ctx, string(body))
		reply(w, replyOK)
		return nil
	case "/exit":
		return s.handleExit(ctx, w, body)
	default:
		reply(w, replyOK)
		return nil
	}
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) error {
	page, err := s.gen.RenderBytes(harness.Page{
		Script:    s.sess.Artifact().Script,
		Args:      s.opts.TestArgs,
		SessionID: s.sess.ID(),
	})
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Content-Length", strconv.Itoa(len(page)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(page)
	}
	return nil
}

func (s *Server) serveArtifact(ctx context.Context, w http.ResponseWriter, r *http.Request, path, contentType string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		// A run without its artifact is meaningless.
		s.opts.Fatal(ctx, errors.Errorf("%s does not exist", path))
		http.NotFound(w, r)
		return nil
	} else if err != nil {
		return errors.Wrap(err, "failed to open artifact")
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "failed to stat artifact")
	}
	w.Header().Set("Content-Type", contentType)
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
	})
	if s.opts.Compress {
		h = gzhttp.GzipHandler(h)
	}
	h.ServeHTTP(w, r)
	return nil
}

func (s *Server) servePreload(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	file := r.URL.Query().Get("file")
	if file == "" {
		logging.Error(ctx, "Invalid query for preload")
		w.WriteHeader(http.StatusBadRequest)
		return nil
	}
	path := s.resolve(file)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Warningf(ctx, "Preload file %s does not exist", path)
		http.NotFound(w, r)
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "failed to open preload file %s", path)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "failed to stat preload file %s", path)
	}
	if fi.IsDir() {
		return errors.Errorf("preload file %s is a directory", path)
	}
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
	return nil
}

func (s *Server) handleDump(ctx context.Context, w http.ResponseWriter, r *http.Request, body []byte) error {
	file := r.URL.Query().Get("file")
	if file == "" {
		logging.Error(ctx, replyBadDump)
		reply(w, replyBadDump)
		return nil
	}
	path := s.resolve(file)
	if err := fsutil.WriteFile(path, body, 0644); err != nil {
		return err
	}
	logging.Infof(ctx, "Wrote %d bytes to %s", len(body), path)
	reply(w, replyOK)
	return nil
}

func (s *Server) handleExit(ctx context.Context, w http.ResponseWriter, body []byte) error {
	text := strings.TrimSpace(string(body))
	code, err := strconv.Atoi(text)
	if err != nil {
		return errors.Errorf("invalid exit code: expected an integer, got %q", text)
	}
	s.sess.SetExitCode(code)
	logging.Infof(ctx, "Test reported exit code %d", code)

	if !s.sess.AutoExit() {
		reply(w, replyOK)
		return nil
	}
	s.sess.RequestShutdown()
	reply(w, replyCloseWindow)
	return nil
}

func (s *Server) favicon() []byte {
	if s.opts.Favicon != nil {
		return s.opts.Favicon
	}
	b, _ := harness.Favicon("")
	return b
}

func (s *Server) rootDir() string {
	if s.opts.RootDir == "" {
		return "."
	}
	return s.opts.RootDir
}

// resolve interprets a client-supplied path relative to the root directory.
func (s *Server) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.rootDir(), p)
}

// reply writes a plain text reply. Write errors mean the peer went away,
// which is not a failure of the run.
func reply(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Length", strconv.Itoa(len(msg)))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, msg)
}
