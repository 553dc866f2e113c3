//go:build !windows

package main

import (
	"os"
	"syscall"
)

// terminationSignals are the signals that request a graceful shutdown.
// Process managers such as systemd and Kubernetes send SIGTERM.
var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
