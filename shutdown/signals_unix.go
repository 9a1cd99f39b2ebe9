//go:build !windows

package shutdown

import (
	"os"
	"syscall"
)

var terminateSignals = []os.Signal{syscall.SIGTERM, syscall.SIGHUP}
