// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package fsutil implements common file operations.
package fsutil

import (
	"os"
	"path/filepath"

	"go.chromium.org/wasmtest/internal/errors"
)

// WriteFile writes data to path with the given mode. path is atomically
// replaced if it already exists, so readers never see a partial file.
// Missing parent directories are created.
func WriteFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create parent directory")
	}

	// Write to a temp file in the same directory so that the final rename
	// does not cross filesystems.
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".")
	if err != nil {
		return errors.Wrap(err, "failed to create tmp file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return errors.Wrap(err, "failed to write tmp file")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(err, "failed to close tmp file")
	}

	if err := os.Chmod(f.Name(), mode); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(err, "failed to change permissions of tmp file")
	}
	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(err, "failed to rename tmp file")
	}
	return nil
}
