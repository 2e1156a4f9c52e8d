//go:build windows

package runner

import "syscall"

const detachedProcess = 0x00000008

// detachAttr places the child in its own process group, detached from
// the supervisor's console.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
	}
}
