package proc

import (
	"context"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Control abstracts liveness checks and signal delivery so lifecycle logic
// can be exercised in tests without real child processes.
type Control interface {
	// Alive reports whether the process still exists.
	Alive(pid int) bool
	// Terminate requests a graceful stop of the process group, falling back
	// to the single pid when group signaling fails.
	Terminate(pid int)
	// Kill forcibly stops the process group, falling back to the single pid.
	Kill(pid int)
}

// SysControl is the real implementation backed by OS signals.
type SysControl struct{}

func (SysControl) Alive(pid int) bool {
	exists, err := process.PidExists(int32(pid))
	return err == nil && exists
}

func (SysControl) Terminate(pid int) {
	signalGroup(pid, syscall.SIGTERM)
}

func (SysControl) Kill(pid int) {
	signalGroup(pid, syscall.SIGKILL)
}

// signalGroup signals the whole process group so shell wrappers and their
// children stop together. Delivery failures are deliberately ignored: the
// process may already be gone, which the caller's exit polling observes.
func signalGroup(pid int, sig syscall.Signal) {
	if pgid, err := syscall.Getpgid(pid); err == nil {
		if syscall.Kill(-pgid, sig) == nil {
			return
		}
	}
	_ = syscall.Kill(pid, sig)
}

// WaitExit polls until the process is gone or the timeout elapses. Returns
// true when the process exited within the window.
func WaitExit(ctx context.Context, ctl Control, pid int, timeout, poll time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !ctl.Alive(pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(poll):
		}
	}
}
