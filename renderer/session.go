package renderer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/micha/aeonium-menu/monitor"
)

// BinaryName is the renderer executable looked up next to ours and on PATH.
const BinaryName = "aeonium-renderer"

var (
	ErrWrite    = errors.New("renderer write failed")
	ErrNotFound = errors.New("renderer binary not found")
)

type Options struct {
	// Path is the renderer executable.
	Path string
	// LogPath receives the renderer's stdout and stderr. Its new lines are
	// relayed into our log. Empty means inherit our stderr.
	LogPath string
}

// Session is one running renderer and the pipe to its stdin. Both exist for
// exactly as long as the Session does.
type Session struct {
	ID string

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	w       *bufio.Writer
	logFile *os.File
	relay   *monitor.Monitor

	waitOnce sync.Once
	waitErr  error
}

// Spawn starts the renderer with args and returns once the process is
// running.
func Spawn(ctx context.Context, opts Options, args []string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// not CommandContext: on shutdown the renderer gets QUIT, not SIGKILL
	cmd := exec.Command(opts.Path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get renderer stdin: %w", err)
	}

	s := &Session{
		ID:    uuid.NewString(),
		cmd:   cmd,
		stdin: stdin,
		w:     bufio.NewWriter(stdin),
	}

	if opts.LogPath != "" {
		if err := s.openLog(opts.LogPath); err != nil {
			stdin.Close()
			return nil, err
		}
	} else {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		s.closeLog()
		return nil, fmt.Errorf("failed to start %s: %w", opts.Path, err)
	}

	log.Printf("%s started %s (pid %d, %d segments)", s.tag(), opts.Path, cmd.Process.Pid, len(args)-1)
	return s, nil
}

func (s *Session) openLog(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open renderer log: %w", err)
	}
	s.logFile = f
	s.cmd.Stdout = f
	s.cmd.Stderr = f

	var from int64
	if info, err := f.Stat(); err == nil {
		from = info.Size()
	}
	mon, err := monitor.NewMonitor(path, from)
	if err != nil {
		// output still lands in the file
		log.Printf("%s log relay disabled: %v", s.tag(), err)
		return nil
	}
	mon.Relay(s.tag())
	s.relay = mon
	return nil
}

func (s *Session) closeLog() {
	if s.relay != nil {
		s.relay.Drain()
		s.relay = nil
	}
	if s.logFile != nil {
		s.logFile.Close()
		s.logFile = nil
	}
}

func (s *Session) tag() string {
	return "[renderer " + s.ID[:8] + "]"
}

// Highlight tells the renderer which segment to draw highlighted.
func (s *Session) Highlight(idx int) error {
	return s.send(FormatHighlight(idx))
}

// Quit asks the renderer to close its window and exit.
func (s *Session) Quit() error {
	return s.send(FormatQuit())
}

func (s *Session) send(line string) error {
	if _, err := s.w.WriteString(line); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Wait closes the renderer's stdin and reaps it. Safe to call more than
// once; later calls return the first result.
func (s *Session) Wait() error {
	s.waitOnce.Do(func() {
		s.stdin.Close()
		s.waitErr = s.cmd.Wait()
		log.Printf("%s exited: %s", s.tag(), s.cmd.ProcessState)
		s.closeLog()
	})
	return s.waitErr
}

// Kill terminates the renderer without waiting for it.
func (s *Session) Kill() error {
	if s.cmd.Process == nil {
		return nil
	}
	if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill renderer: %w", err)
	}
	return nil
}

// FindBinary resolves the renderer executable: the configured path if set,
// otherwise BinaryName next to the running executable, then on PATH.
func FindBinary(configured string) (string, error) {
	if configured != "" {
		path, err := exec.LookPath(configured)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return path, nil
	}

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), BinaryName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return candidate, nil
		}
	}

	path, err := exec.LookPath(BinaryName)
	if err != nil {
		return "", fmt.Errorf("%w: install %s or set \"renderer\" in the config", ErrNotFound, BinaryName)
	}
	return path, nil
}
