// Package procstat reads the run state of client processes.
package procstat

import (
	"errors"
	"fmt"

	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"
)

// ProcRoot is the procfs mount point.
var ProcRoot = procfs.DefaultMountPoint

// State returns the single-letter scheduler state of pid from
// /proc/<pid>/stat ('R', 'S', 'T', 't', 'Z', ...).
func State(pid int) (byte, error) {
	if pid <= 0 {
		return 0, fmt.Errorf("invalid pid %d", pid)
	}
	fs, err := procfs.NewFS(ProcRoot)
	if err != nil {
		return 0, err
	}
	proc, err := fs.Proc(pid)
	if err != nil {
		return 0, err
	}
	stat, err := proc.Stat()
	if err != nil {
		return 0, fmt.Errorf("pid %d: %w", pid, err)
	}
	if stat.State == "" {
		return 0, fmt.Errorf("pid %d: empty state", pid)
	}
	return stat.State[0], nil
}

// Alive reports whether pid names an existing process.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// Stopped reports whether pid exists and is stopped by a signal or a
// tracer. Processes whose state cannot be read are treated as running.
func Stopped(pid int) bool {
	if !Alive(pid) {
		return false
	}
	state, err := State(pid)
	if err != nil {
		return false
	}
	return state == 'T' || state == 't'
}
