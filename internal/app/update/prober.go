package update

import (
	"os"
	"syscall"
)

// ProcessProber probes whether a PID is alive on the local host. The
// default implementation uses a no-signal (signal 0) probe: sending
// signal 0 fails with ESRCH if the process does not exist.
type ProcessProber interface {
	IsAlive(pid int) bool
}

type osProber struct{}

func NewOSProber() ProcessProber { return osProber{} }

func (osProber) IsAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil
}
