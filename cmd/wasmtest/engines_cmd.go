// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/wasmtest/internal/command"
	"go.chromium.org/wasmtest/internal/engine"
	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/shutil"
)

type outputFormat int

const (
	formatText outputFormat = iota
	formatJSON
)

// enginesCmd implements subcommands.Command to describe known and installed
// engines.
type enginesCmd struct {
	format outputFormat
	probe  func(ctx context.Context, name string) *engine.Info // stubbed in tests
	stdout io.Writer
}

var _ = subcommands.Command(&enginesCmd{})

func newEnginesCmd(stdout io.Writer) *enginesCmd {
	return &enginesCmd{probe: engine.Probe, stdout: stdout}
}

func (*enginesCmd) Name() string     { return "engines" }
func (*enginesCmd) Synopsis() string { return "list engine families and probe installed engines" }
func (*enginesCmd) Usage() string {
	return `Usage: engines [flag]... [engine]...

Description:
    Prints the implicit flags passed to each engine family, then runs each
    engine with --version. Without arguments, well-known engine names are
    looked up in PATH.

Flag:
`
}

func (e *enginesCmd) SetFlags(f *flag.FlagSet) {
	ff := command.NewEnumFlag(map[string]int{
		"text": int(formatText),
		"json": int(formatJSON),
	}, func(v int) { e.format = outputFormat(v) }, "text")
	f.Var(ff, "format", fmt.Sprintf("output format (%s; default %q)", ff.QuotedValues(), ff.Default()))
}

func (e *enginesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	names := f.Args()
	if len(names) == 0 {
		names = engine.WellKnown
	}

	infos := make([]*engine.Info, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			infos[i] = e.probe(logging.SetLogPrefix(gctx, name+": "), name)
			return nil
		})
	}
	g.Wait()

	var err error
	switch e.format {
	case formatJSON:
		err = e.writeJSON(infos)
	default:
		err = e.writeText(infos)
	}
	if err != nil {
		logging.Error(ctx, "Failed to write output: ", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type familyJSON struct {
	Name        string   `json:"name"`
	Identifiers []string `json:"identifiers"`
	Flags       []string `json:"flags"`
}

func (e *enginesCmd) writeJSON(infos []*engine.Info) error {
	var out struct {
		Families []familyJSON   `json:"families"`
		Engines  []*engine.Info `json:"engines"`
	}
	for _, fam := range engine.Families() {
		ids := fam.Identifiers()
		out.Families = append(out.Families, familyJSON{
			Name:        fam.String(),
			Identifiers: ids,
			Flags:       engine.ImplicitArgs(ids[0], runtime.GOOS),
		})
	}
	out.Engines = infos
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}

func (e *enginesCmd) writeText(infos []*engine.Info) error {
	var b strings.Builder
	for _, fam := range engine.Families() {
		ids := fam.Identifiers()
		fmt.Fprintf(&b, "%s (%s): %s\n", fam, strings.Join(ids, ", "),
			shutil.EscapeSlice(engine.ImplicitArgs(ids[0], runtime.GOOS)))
	}
	b.WriteString("\n")
	for _, info := range infos {
		switch {
		case info.Error != "":
			fmt.Fprintf(&b, "%s\t%s\tunavailable: %s\n", info.Name, info.Family, info.Error)
		default:
			fmt.Fprintf(&b, "%s\t%s\t%s\n", info.Name, info.Family, info.Version)
		}
	}
	_, err := io.WriteString(e.stdout, b.String())
	return err
}
