// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"go.chromium.org/wasmtest/internal/errors"
)

// fileConfig is the schema of a config file. Pointer fields distinguish an
// absent key from a zero value.
type fileConfig struct {
	Engine          string `yaml:"engine"`
	EngineArgs      string `yaml:"engine_args"`
	Port            *int   `yaml:"port"`
	Exit            *bool  `yaml:"exit"`
	Binary          string `yaml:"binary"`
	Template        string `yaml:"template"`
	Favicon         string `yaml:"favicon"`
	RootDir         string `yaml:"root_dir"`
	Compress        *bool  `yaml:"compress"`
	Timeout         *int   `yaml:"timeout"`
	ShutdownTimeout *int   `yaml:"shutdown_timeout"`
	TimingLog       string `yaml:"timing_log"`
	LogFile         string `yaml:"log_file"`
}

// ApplyFile reads the YAML file at path and copies its values into c,
// skipping those whose flag name is in explicit. Relative paths in the file
// are resolved against the file's directory.
func (c *Config) ApplyFile(path string, explicit map[string]bool) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	var fc fileConfig
	if err := yaml.UnmarshalStrict(b, &fc); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}

	dir := filepath.Dir(path)
	setString := func(flag string, dst *string, v string, isPath bool) {
		if v == "" || explicit[flag] {
			return
		}
		if isPath && !filepath.IsAbs(v) {
			v = filepath.Join(dir, v)
		}
		*dst = v
	}
	setString("engine", &c.Engine, fc.Engine, false)
	setString("engineargs", &c.rawEngineArgs, fc.EngineArgs, false)
	setString("binary", &c.Binary, fc.Binary, true)
	setString("template", &c.Template, fc.Template, true)
	setString("favicon", &c.Favicon, fc.Favicon, true)
	setString("rootdir", &c.RootDir, fc.RootDir, true)
	setString("timinglog", &c.TimingLog, fc.TimingLog, true)
	setString("logfile", &c.LogFile, fc.LogFile, true)

	if fc.Port != nil && !explicit["port"] {
		c.Port = *fc.Port
	}
	if fc.Exit != nil && !explicit["exit"] {
		c.AutoExit = *fc.Exit
	}
	if fc.Compress != nil && !explicit["compress"] {
		c.Compress = *fc.Compress
	}
	if fc.Timeout != nil && !explicit["timeout"] {
		if *fc.Timeout < 0 {
			return errors.Errorf("%s: timeout must be non-negative", path)
		}
		c.Timeout = time.Duration(*fc.Timeout) * time.Second
	}
	if fc.ShutdownTimeout != nil && !explicit["shutdowntimeout"] {
		if *fc.ShutdownTimeout < 0 {
			return errors.Errorf("%s: shutdown_timeout must be non-negative", path)
		}
		c.ShutdownTimeout = time.Duration(*fc.ShutdownTimeout) * time.Second
	}
	return nil
}
