// Package logger routes the standard logger to stderr and a log file and
// records panics from background goroutines.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// FileName is the log file created inside the state directory.
const FileName = "aeonium-menu.log"

var (
	mu      sync.Mutex
	baseDir string
	logFile *os.File
	verbose atomic.Bool
)

// Init sends log output to stderr and dir/FileName. dir is created if
// needed.
func Init(dir string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	baseDir = dir
	logFile = f

	log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	logSystemInfo()
	return nil
}

// Close flushes and closes the log file (call on exit)
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	f := logFile
	logFile = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SetVerbose turns Debugf output on or off.
func SetVerbose(on bool) {
	verbose.Store(on)
}

// Debugf logs only in verbose mode.
func Debugf(format string, args ...any) {
	if verbose.Load() {
		log.Printf("[debug] "+format, args...)
	}
}

// CatchPanic logs a recovered panic with its stack and writes a crash file.
// Use with defer.
func CatchPanic() {
	if r := recover(); r != nil {
		recordPanic(r)
	}
}

func recordPanic(r any) {
	stack := debug.Stack()
	log.Printf("PANIC: %v\n\nSTACK:\n%s", r, stack)
	if err := WriteCrashFile(fmt.Sprint(r), stack); err != nil {
		log.Printf("error writing crash file: %v", err)
	}
}

// GoSafe runs fn in a goroutine guarded by CatchPanic. done, if not nil,
// receives fn's error, or an error describing the panic.
func GoSafe(fn func() error, done chan<- error) {
	go func() {
		var err error
		defer func() {
			if done != nil {
				done <- err
			}
		}()
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
				recordPanic(r)
			}
		}()
		err = fn()
	}()
}

// WriteCrashFile stores reason and stack with some host metadata in a
// crashes directory next to the log file.
func WriteCrashFile(reason string, stack []byte) error {
	mu.Lock()
	dir := baseDir
	mu.Unlock()
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "aeonium-menu")
	}

	crashDir := filepath.Join(dir, "crashes")
	if err := os.MkdirAll(crashDir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405.000"))
	f, err := os.OpenFile(filepath.Join(crashDir, name), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	host, _ := os.Hostname()
	_, err = fmt.Fprintf(f, "Time: %s\nUser: %s\nHost: %s\nPID: %d\nOS: %s %s\nGo: %s\n\nReason: %s\n\nStack:\n%s\n",
		time.Now().Format(time.RFC3339), username, host, os.Getpid(), runtime.GOOS, runtime.GOARCH, runtime.Version(), reason, stack)
	return err
}

func logSystemInfo() {
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	host, _ := os.Hostname()
	log.Printf("SYSINFO user=%s host=%s pid=%d go=%s os=%s arch=%s",
		username, host, os.Getpid(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
