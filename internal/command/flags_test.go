// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command_test

import (
	"flag"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/wasmtest/internal/command"
)

func TestDurationFlag(t *testing.T) {
	for _, tc := range []struct {
		units   time.Duration // units for flag
		args    []string      // args to parse
		def     time.Duration // default value for flag
		want    time.Duration // expected value
		wantErr bool
	}{
		{time.Second, []string{}, 0, 0, false},
		{time.Second, []string{}, 10 * time.Second, 10 * time.Second, false},
		{time.Second, []string{"-flag=5"}, 0, 5 * time.Second, false},
		{time.Minute, []string{"-flag=2"}, 0, 2 * time.Minute, false},
		{time.Millisecond, []string{"-flag=200"}, 0, 200 * time.Millisecond, false},
		{time.Second, []string{"-flag=-1"}, 3 * time.Second, 3 * time.Second, true},
		{time.Second, []string{"-flag=abc"}, 3 * time.Second, 3 * time.Second, true},
	} {
		var d time.Duration
		fs := flag.NewFlagSet("", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fs.Var(command.NewDurationFlag(tc.units, &d, tc.def), "flag", "usage")

		err := fs.Parse(tc.args)
		if err != nil && !tc.wantErr {
			t.Errorf("%v produced error: %v", tc.args, err)
		} else if err == nil && tc.wantErr {
			t.Errorf("%v didn't produce expected error", tc.args)
		}
		if d != tc.want {
			t.Errorf("%v resulted in %v; want %v", tc.args, d, tc.want)
		}
	}
}

func ExampleDurationFlag() {
	var dest time.Duration
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.Var(command.NewDurationFlag(time.Second, &dest, 10*time.Second), "shutdowntimeout", "usage")

	flags.Parse([]string{})
	fmt.Println("no flag:", dest)

	flags.Parse([]string{"-shutdowntimeout=3"})
	fmt.Println("flag:", dest)

	// Output:
	// no flag: 10s
	// flag: 3s
}

func TestEnumFlag(t *testing.T) {
	type format int
	const (
		formatText format = iota
		formatJSON
	)

	for _, tc := range []struct {
		args    []string
		want    format
		wantErr bool
	}{
		{[]string{}, formatText, false},
		{[]string{"-format=text"}, formatText, false},
		{[]string{"-format=json"}, formatJSON, false},
		{[]string{"-format=yaml"}, formatText, true},
		{[]string{"-format"}, formatText, true},
	} {
		valid := map[string]int{"text": int(formatText), "json": int(formatJSON)}
		val := format(-1)
		fs := flag.NewFlagSet("", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fs.Var(command.NewEnumFlag(valid, func(v int) { val = format(v) }, "text"), "format", "usage")

		if err := fs.Parse(tc.args); err != nil && !tc.wantErr {
			t.Errorf("%v produced error: %v", tc.args, err)
		} else if err == nil && tc.wantErr {
			t.Errorf("%v didn't produce expected error", tc.args)
		} else if val != tc.want {
			t.Errorf("%v resulted in %v; want %v", tc.args, val, tc.want)
		}
	}
}

func TestEnumFlagQuotedValues(t *testing.T) {
	f := command.NewEnumFlag(map[string]int{"text": 0, "json": 1}, func(int) {}, "text")
	if got, want := f.QuotedValues(), `"json", "text"`; got != want {
		t.Errorf("QuotedValues() = %q; want %q", got, want)
	}
	if got := f.Default(); got != "text" {
		t.Errorf("Default() = %q; want %q", got, "text")
	}
}

func TestRepeatedFlag(t *testing.T) {
	var got []string
	rf := command.RepeatedFlag(func(v string) error {
		got = append(got, v)
		return nil
	})
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&rf, "engineflag", "usage")

	if err := fs.Parse([]string{"-engineflag=--headless", "-engineflag=--mute-audio"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, []string{"--headless", "--mute-audio"}); diff != "" {
		t.Errorf("Values mismatch (-got +want):\n%s", diff)
	}
}
