// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testutil_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/wasmtest/testutil"
)

func TestWriteReadFiles(t *testing.T) {
	dir := testutil.TempDir(t)
	want := map[string]string{
		"test.js":          "import.meta.url",
		"test.wasm":        "\x00asm",
		"out/result.bin":   "0123456789",
		"data/a/b/c.txt":   "",
		"data/preload.txt": "hello",
	}
	if err := testutil.WriteFiles(dir, want); err != nil {
		t.Fatal("WriteFiles failed: ", err)
	}
	got, err := testutil.ReadFiles(dir)
	if err != nil {
		t.Fatal("ReadFiles failed: ", err)
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Files mismatch (-got +want):\n%s", diff)
	}
}
