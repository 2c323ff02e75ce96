// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package harness_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"go.chromium.org/wasmtest/internal/harness"
	"go.chromium.org/wasmtest/testutil"
)

func TestRenderModuleScript(t *testing.T) {
	dir := testutil.TempDir(t)
	if err := testutil.WriteFiles(dir, map[string]string{
		"vtkRenderingTests.js": "var dir = new URL('.', import.meta.url);\n",
	}); err != nil {
		t.Fatal(err)
	}

	gen, err := harness.NewGenerator("")
	if err != nil {
		t.Fatal("NewGenerator failed: ", err)
	}
	page, err := gen.RenderBytes(harness.Page{
		Script:    filepath.Join(dir, "vtkRenderingTests.js"),
		Args:      []string{"--headless", "--scale=2"},
		SessionID: "abc-123",
	})
	if err != nil {
		t.Fatal("Render failed: ", err)
	}

	for _, want := range []string{
		`<script type="module">`,
		`import * as artifact from '/vtkRenderingTests.js';`,
		`arguments: ['--headless','--scale=2'],`,
		`content="abc-123"`,
		`'close-window'`,
	} {
		if !bytes.Contains(page, []byte(want)) {
			t.Errorf("Page does not contain %q:\n%s", want, page)
		}
	}
	if bytes.Contains(page, []byte("navigator.gpu")) {
		t.Error("Page checks for WebGPU although the artifact does not need it")
	}
}

func TestRenderClassicWebGPUScript(t *testing.T) {
	dir := testutil.TempDir(t)
	if err := testutil.WriteFiles(dir, map[string]string{
		"TestWebGPUCompute.js": "var Module = typeof Module != 'undefined' ? Module : {};\n",
	}); err != nil {
		t.Fatal(err)
	}

	gen, err := harness.NewGenerator("")
	if err != nil {
		t.Fatal("NewGenerator failed: ", err)
	}
	page, err := gen.RenderBytes(harness.Page{Script: filepath.Join(dir, "TestWebGPUCompute.js")})
	if err != nil {
		t.Fatal("Render failed: ", err)
	}

	for _, want := range []string{
		`<script type="text/javascript" src="/TestWebGPUCompute.js"></script>`,
		`arguments: [],`,
		`navigator.gpu`,
	} {
		if !bytes.Contains(page, []byte(want)) {
			t.Errorf("Page does not contain %q:\n%s", want, page)
		}
	}
}

func TestRenderMissingScript(t *testing.T) {
	gen, err := harness.NewGenerator("")
	if err != nil {
		t.Fatal("NewGenerator failed: ", err)
	}
	if _, err := gen.RenderBytes(harness.Page{Script: filepath.Join(testutil.TempDir(t), "missing.js")}); err == nil {
		t.Error("Render succeeded for a missing script")
	}
}

func TestCustomTemplate(t *testing.T) {
	dir := testutil.TempDir(t)
	if err := testutil.WriteFiles(dir, map[string]string{
		"page.html": "{{.ScriptName}}|{{.ScriptType}}|{{.Args}}|{{.UseWebGPU}}",
		"bad.html":  "{{.ScriptName",
		"a.mjs":     "export default function() {}",
	}); err != nil {
		t.Fatal(err)
	}

	gen, err := harness.NewGenerator(filepath.Join(dir, "page.html"))
	if err != nil {
		t.Fatal("NewGenerator failed: ", err)
	}
	var b strings.Builder
	if err := gen.Render(&b, harness.Page{Script: filepath.Join(dir, "a.mjs"), Args: []string{"x"}}); err != nil {
		t.Fatal("Render failed: ", err)
	}
	if got, want := b.String(), "a.mjs|module|'x'|false"; got != want {
		t.Errorf("Render wrote %q; want %q", got, want)
	}

	if _, err := harness.NewGenerator(filepath.Join(dir, "bad.html")); err == nil {
		t.Error("NewGenerator succeeded for a malformed template")
	}
	if _, err := harness.NewGenerator(filepath.Join(dir, "missing.html")); err == nil {
		t.Error("NewGenerator succeeded for a missing template")
	}
}

func TestQuoteArgs(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{nil, ``},
		{[]string{""}, `''`},
		{[]string{"--headless", "--scale=2"}, `'--headless','--scale=2'`},
		{[]string{`it's`}, `'it\'s'`},
		{[]string{`C:\data`}, `'C:\\data'`},
		{[]string{"a\nb"}, `'a\nb'`},
		{[]string{"</script>"}, `'<\/script>'`},
	} {
		if got := harness.QuoteArgs(tc.args); got != tc.want {
			t.Errorf("QuoteArgs(%q) = %q; want %q", tc.args, got, tc.want)
		}
	}
}

func TestIsModuleScript(t *testing.T) {
	for _, tc := range []struct {
		path    string
		content string
		want    bool
	}{
		{"test.js", "var Module = {};", false},
		{"test.js", "new URL('x.wasm', import.meta.url)", true},
		{"test.mjs", "export default 1;", true},
	} {
		if got := harness.IsModuleScript(tc.path, []byte(tc.content)); got != tc.want {
			t.Errorf("IsModuleScript(%q, %q) = %v; want %v", tc.path, tc.content, got, tc.want)
		}
	}
}

func TestRequiresWebGPU(t *testing.T) {
	for path, want := range map[string]bool{
		"/build/bin/TestWebGPUCompute.js": true,
		"/build/WebGPU/TestCone.js":       false,
		"TestCone.js":                     false,
	} {
		if got := harness.RequiresWebGPU(path); got != want {
			t.Errorf("RequiresWebGPU(%q) = %v; want %v", path, got, want)
		}
	}
}

func TestFavicon(t *testing.T) {
	ico, err := harness.Favicon("")
	if err != nil {
		t.Fatal("Favicon failed: ", err)
	}
	if !bytes.HasPrefix(ico, []byte{0, 0, 1, 0}) {
		t.Errorf("Built-in icon has bad header % x", ico[:4])
	}

	dir := testutil.TempDir(t)
	if err := testutil.WriteFiles(dir, map[string]string{"my.ico": "icon"}); err != nil {
		t.Fatal(err)
	}
	if b, err := harness.Favicon(filepath.Join(dir, "my.ico")); err != nil || string(b) != "icon" {
		t.Errorf("Favicon(my.ico) = (%q, %v); want (%q, nil)", b, err, "icon")
	}
}
