// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build unix

package office

import (
	"os/exec"
	"syscall"
	"time"
)

// configureProcessGroup starts the tool in its own process group so that
// cancellation kills helper processes soffice forks, not just the parent.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second
}
