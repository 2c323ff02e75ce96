// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config holds the configuration of a test session, assembled from
// command line flags and an optional YAML file.
package config

import (
	"flag"
	"path/filepath"
	"strings"
	"time"

	"go.chromium.org/wasmtest/internal/command"
	"go.chromium.org/wasmtest/internal/errors"
	"go.chromium.org/wasmtest/shutil"
)

const defaultShutdownTimeout = 10 * time.Second

// Config describes one test session.
type Config struct {
	// Script is the path of the artifact's JavaScript loader.
	Script string
	// Binary is the path of the artifact's WebAssembly binary. If not
	// given, it is derived from Script.
	Binary string
	// TestArgs are passed to the artifact.
	TestArgs []string

	// Engine is the path of the engine executable. If empty, the server
	// runs until interrupted so that an engine can be pointed at it manually.
	Engine string
	// EngineArgs are appended after the engine family's implicit flags.
	EngineArgs []string

	// Port to listen on. 0 picks an ephemeral port.
	Port int
	// AutoExit ends the session as soon as the artifact reports its exit code.
	AutoExit bool

	// Template overrides the built-in harness page template.
	Template string
	// Favicon overrides the built-in icon.
	Favicon string
	// RootDir is the directory served for unknown paths.
	RootDir string
	// Compress enables gzip encoding of artifact files.
	Compress bool

	// Timeout bounds the whole session. 0 means no limit.
	Timeout time.Duration
	// ShutdownTimeout bounds the wait for the server after an interruption.
	ShutdownTimeout time.Duration
	// TimingLog is a path to write phase timings to as JSON.
	TimingLog string
	// LogFile is a path to write a full debug log to.
	LogFile string

	configFile     string
	rawEngineArgs  string
	extraEngineArg []string
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{ShutdownTimeout: defaultShutdownTimeout}
}

// SetFlags adds flags to f that store values in c.
func (c *Config) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configFile, "config", "", "YAML file with default values for flags")
	f.StringVar(&c.Engine, "engine", "", "engine executable to open the test page with; serve only if empty")
	f.StringVar(&c.rawEngineArgs, "engineargs", "", "extra engine flags, split with shell quoting rules; --enable-features lists add to the implicit ones")
	engineFlag := command.RepeatedFlag(func(v string) error {
		c.extraEngineArg = append(c.extraEngineArg, v)
		return nil
	})
	f.Var(&engineFlag, "engineflag", "single extra engine flag; may be repeated")
	f.IntVar(&c.Port, "port", 0, "port to listen on; 0 picks a free port")
	f.IntVar(&c.Port, "p", 0, "shorthand for -port")
	f.BoolVar(&c.AutoExit, "exit", false, "stop as soon as the test reports its exit code")
	f.StringVar(&c.Binary, "binary", "", "WebAssembly binary; derived from the script path if empty")
	f.StringVar(&c.Template, "template", "", "harness page template overriding the built-in one")
	f.StringVar(&c.Favicon, "favicon", "", "icon file overriding the built-in one")
	f.StringVar(&c.RootDir, "rootdir", "", "directory served for unknown paths (default: working directory)")
	f.BoolVar(&c.Compress, "compress", false, "gzip the test script and binary")
	f.Var(command.NewDurationFlag(time.Second, &c.Timeout, 0), "timeout", "session timeout in seconds; 0 for none")
	f.Var(command.NewDurationFlag(time.Second, &c.ShutdownTimeout, defaultShutdownTimeout), "shutdowntimeout", "seconds to wait for the server to stop after an interruption")
	f.StringVar(&c.TimingLog, "timinglog", "", "file to write phase timings to")
	f.StringVar(&c.LogFile, "logfile", "", "file to write a full debug log to")
}

// Finalize completes c after f has been parsed: it reads the config file,
// takes the script and test arguments from the positional arguments, and
// derives unset values.
func (c *Config) Finalize(f *flag.FlagSet) error {
	if c.configFile != "" {
		explicit := make(map[string]bool)
		f.Visit(func(fl *flag.Flag) { explicit[fl.Name] = true })
		if explicit["p"] {
			explicit["port"] = true
		}
		if err := c.ApplyFile(c.configFile, explicit); err != nil {
			return err
		}
	}

	if f.NArg() == 0 {
		return command.NewStatusErrorf(2, "missing test script")
	}
	c.Script = f.Arg(0)
	c.TestArgs = append([]string(nil), f.Args()[1:]...)

	args, err := shutil.Split(c.rawEngineArgs)
	if err != nil {
		return errors.Wrap(err, "bad -engineargs")
	}
	c.EngineArgs = append(args, c.extraEngineArg...)

	if c.Binary == "" {
		c.Binary = BinaryPath(c.Script)
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// BinaryPath returns the WebAssembly binary path for a script path by
// replacing its .js or .mjs extension with .wasm.
func BinaryPath(script string) string {
	switch ext := filepath.Ext(script); ext {
	case ".js", ".mjs":
		return strings.TrimSuffix(script, ext) + ".wasm"
	default:
		return script + ".wasm"
	}
}
