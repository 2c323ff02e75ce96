// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package harness generates the HTML page that an engine loads to run a
// WebAssembly test artifact.
package harness

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"go.chromium.org/wasmtest/internal/errors"
)

var (
	//go:embed assets/index.html
	defaultTemplate string

	//go:embed assets/favicon.ico
	defaultFavicon []byte
)

const (
	// moduleMarker appears in scripts emitted as ES modules.
	moduleMarker = "import.meta.url"
	// webGPUMarker in an artifact file name means the test needs WebGPU.
	webGPUMarker = "WebGPU"
)

// Script types written to the page.
const (
	ScriptTypeClassic = "text/javascript"
	ScriptTypeModule  = "module"
)

// Page describes a single rendering of the harness page.
type Page struct {
	// Script is the path of the artifact's JavaScript loader.
	Script string
	// Args are passed to the artifact as its command line.
	Args []string
	// SessionID identifies the session serving the page.
	SessionID string
}

// pageData is the data passed to the template.
type pageData struct {
	ScriptName string
	ScriptType string
	Args       string
	UseWebGPU  bool
	SessionID  string
}

// Generator renders harness pages from a template.
//
// text/template is used rather than html/template since the argument list is
// embedded as a JavaScript literal that QuoteArgs already escapes.
type Generator struct {
	tmpl *template.Template
}

// NewGenerator loads the template at path, or the built-in template if path
// is empty.
func NewGenerator(path string) (*Generator, error) {
	src := defaultTemplate
	name := "index.html"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load harness template")
		}
		src = string(b)
		name = filepath.Base(path)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse harness template %s", name)
	}
	return &Generator{tmpl: tmpl}, nil
}

// Render writes the page for p to w. The script is read on every call so
// that a rebuilt artifact is picked up without restarting the server.
func (g *Generator) Render(w io.Writer, p Page) error {
	content, err := os.ReadFile(p.Script)
	if err != nil {
		return errors.Wrap(err, "failed to read test script")
	}
	scriptType := ScriptTypeClassic
	if IsModuleScript(p.Script, content) {
		scriptType = ScriptTypeModule
	}
	data := pageData{
		ScriptName: filepath.Base(p.Script),
		ScriptType: scriptType,
		Args:       QuoteArgs(p.Args),
		UseWebGPU:  RequiresWebGPU(p.Script),
		SessionID:  p.SessionID,
	}
	if err := g.tmpl.Execute(w, data); err != nil {
		return errors.Wrap(err, "failed to execute harness template")
	}
	return nil
}

// RenderBytes is like Render but returns the page as a byte slice.
func (g *Generator) RenderBytes(p Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Render(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsModuleScript reports whether the script at path with the given content
// must be loaded as an ES module.
func IsModuleScript(path string, content []byte) bool {
	return filepath.Ext(path) == ".mjs" || bytes.Contains(content, []byte(moduleMarker))
}

// RequiresWebGPU reports whether the artifact at path needs WebGPU.
func RequiresWebGPU(path string) bool {
	return strings.Contains(filepath.Base(path), webGPUMarker)
}

var argEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`, "</", `<\/`)

// QuoteArgs formats args as the body of a JavaScript array literal of
// single-quoted strings, e.g. '--headless','--scale=2'.
func QuoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = "'" + argEscaper.Replace(a) + "'"
	}
	return strings.Join(quoted, ",")
}

// Favicon returns the icon at path, or the built-in icon if path is empty.
func Favicon(path string) ([]byte, error) {
	if path == "" {
		return defaultFavicon, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load icon")
	}
	return b, nil
}
