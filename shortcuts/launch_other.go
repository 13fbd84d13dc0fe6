//go:build !unix

package shortcuts

import "syscall"

func detached() *syscall.SysProcAttr {
	return nil
}
