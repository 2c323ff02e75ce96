// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package engine launches the browser that runs a test artifact.
package engine

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Family identifies a group of engines sharing a command line syntax.
type Family int

const (
	// FamilyUnknown is used for engines not listed in the family table.
	// No implicit flags are passed to them.
	FamilyUnknown Family = iota
	// FamilyChromium covers Chrome, Chromium and their derivatives.
	FamilyChromium
)

func (f Family) String() string {
	switch f {
	case FamilyChromium:
		return "chromium"
	default:
		return "unknown"
	}
}

type familyInfo struct {
	// identifiers are matched case-insensitively against the engine path.
	identifiers []string
	// flags are passed to every engine of the family.
	flags []string
	// osFlags are appended to flags on the keyed GOOS.
	osFlags map[string][]string
}

var families = map[Family]familyInfo{
	FamilyChromium: {
		identifiers: []string{"chrome", "chromium"},
		flags: []string{
			"--disable-application-cache",
			"--disable-restore-session-state",
			"--new-window",
			"--incognito",
			"--no-default-browser-check",
			"--no-first-run",
			"--enable-features=WebAssemblyExperimentalJSPI",
		},
		osFlags: map[string][]string{
			"linux": {
				"--enable-features=Vulkan",
				"--enable-unsafe-webgpu",
				"--use-angle=Vulkan",
			},
		},
	},
}

// Families returns the known engine families in a stable order.
func Families() []Family {
	fs := maps.Keys(families)
	slices.Sort(fs)
	return fs
}

// Identifiers returns the substrings that select f.
func (f Family) Identifiers() []string {
	return append([]string(nil), families[f].identifiers...)
}

// DetectFamily returns the family of the engine at path.
func DetectFamily(path string) Family {
	lower := strings.ToLower(path)
	for _, f := range Families() {
		for _, id := range families[f].identifiers {
			if strings.Contains(lower, id) {
				return f
			}
		}
	}
	return FamilyUnknown
}

// ImplicitArgs returns the flags passed to the engine at path on goos
// before any user-supplied flags.
func ImplicitArgs(path, goos string) []string {
	info, ok := families[DetectFamily(path)]
	if !ok {
		return nil
	}
	args := append(append([]string(nil), info.flags...), info.osFlags[goos]...)
	return mergeFeatures(args)
}

const enableFeatures = "--enable-features="

func isFeatureFlag(arg string) bool { return strings.HasPrefix(arg, enableFeatures) }

// appendUserArgs appends user to implicit. Features enabled by the user are
// added to the implicit --enable-features flag rather than replacing it.
func appendUserArgs(implicit, user []string) []string {
	args := append(append([]string(nil), implicit...), user...)
	if !slices.ContainsFunc(implicit, isFeatureFlag) {
		return args
	}
	return mergeFeatures(args)
}

// mergeFeatures combines every --enable-features flag in args into the
// position of the first one, since Chromium honors only the last occurrence.
func mergeFeatures(args []string) []string {
	var features []string
	first := -1
	var out []string
	for _, a := range args {
		if !isFeatureFlag(a) {
			out = append(out, a)
			continue
		}
		if first < 0 {
			first = len(out)
			out = append(out, "")
		}
		features = append(features, strings.TrimPrefix(a, enableFeatures))
	}
	if first >= 0 {
		out[first] = enableFeatures + strings.Join(features, ",")
	}
	return out
}
