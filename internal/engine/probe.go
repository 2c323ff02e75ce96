// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package engine

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"go.chromium.org/wasmtest/internal/errors"
	"go.chromium.org/wasmtest/internal/logging"
)

// probeTimeout bounds a single --version invocation.
const probeTimeout = 10 * time.Second

// WellKnown lists engine names looked up in PATH when none are given.
var WellKnown = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}

// Info describes an installed engine.
type Info struct {
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Family  string `json:"family"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Probe locates the engine name and asks it for its version. Failures are
// reported in Info.Error rather than returned.
func Probe(ctx context.Context, name string) *Info {
	info := &Info{Name: name, Family: DetectFamily(name).String()}
	path, err := exec.LookPath(name)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Path = path
	v, err := version(ctx, path)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Version = v
	return info
}

func version(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "--version")
	setProcessGroup(cmd)
	logging.Debugf(ctx, "Running %s --version", path)
	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrapf(err, "%s --version failed", path)
	}
	return strings.TrimSpace(string(out)), nil
}
