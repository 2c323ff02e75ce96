// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/wasmtest/fsutil"
	"go.chromium.org/wasmtest/testutil"
)

func TestWriteFile(t *testing.T) {
	td := testutil.TempDir(t)
	path := filepath.Join(td, "out/nested/result.bin")
	data := []byte("0123456789")

	if err := fsutil.WriteFile(path, data, 0640); err != nil {
		t.Fatal("WriteFile failed: ", err)
	}

	files, err := testutil.ReadFiles(td)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(files, map[string]string{"out/nested/result.bin": "0123456789"}); diff != "" {
		t.Errorf("Files mismatch (-got +want):\n%s", diff)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if mode := fi.Mode().Perm(); mode != 0640 {
		t.Errorf("Mode is %v; want %v", mode, os.FileMode(0640))
	}
}

func TestWriteFileReplace(t *testing.T) {
	td := testutil.TempDir(t)
	path := filepath.Join(td, "result.txt")
	if err := testutil.WriteFiles(td, map[string]string{"result.txt": "a much longer old content"}); err != nil {
		t.Fatal(err)
	}

	if err := fsutil.WriteFile(path, []byte("new"), 0644); err != nil {
		t.Fatal("WriteFile failed: ", err)
	}

	files, err := testutil.ReadFiles(td)
	if err != nil {
		t.Fatal(err)
	}
	// No temporary files are left behind.
	if diff := cmp.Diff(files, map[string]string{"result.txt": "new"}); diff != "" {
		t.Errorf("Files mismatch (-got +want):\n%s", diff)
	}
}

func TestWriteFileParentIsFile(t *testing.T) {
	td := testutil.TempDir(t)
	if err := testutil.WriteFiles(td, map[string]string{"file": ""}); err != nil {
		t.Fatal(err)
	}
	if err := fsutil.WriteFile(filepath.Join(td, "file/child"), []byte("x"), 0644); err == nil {
		t.Error("WriteFile succeeded under a regular file")
	}
}
