// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !unix

package office

import (
	"os/exec"
	"time"
)

func configureProcessGroup(cmd *exec.Cmd) {
	cmd.WaitDelay = 5 * time.Second
}
