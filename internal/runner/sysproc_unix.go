//go:build !windows

package runner

import "syscall"

// detachAttr places the child in its own session so the supervisor
// exiting does not take it down implicitly.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
