// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !unix

package engine

import "os/exec"

// setProcessGroup keeps the default of killing only the engine process.
func setProcessGroup(cmd *exec.Cmd) {}
