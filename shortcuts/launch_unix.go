//go:build unix

package shortcuts

import "syscall"

// detached starts the program in a new session.
func detached() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
