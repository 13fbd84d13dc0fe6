// Package setup checks that the machine can run the menu and offers to fix
// what it can.
package setup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/micha/aeonium-menu/renderer"
	"github.com/micha/aeonium-menu/shortcuts"
)

var ErrNotReady = errors.New("environment not ready")

type Options struct {
	// ConfigDir holds the shortcuts directory.
	ConfigDir string
	// Renderer is the configured renderer path, possibly empty.
	Renderer string
	// InputDir defaults to /dev/input.
	InputDir string
	// Out receives the report; defaults to stdout.
	Out io.Writer
}

// EnsureEnvironment checks input device access, the renderer binary and
// the shortcuts directory. It asks before changing anything.
func EnsureEnvironment(scanner *bufio.Scanner, opts Options) error {
	if opts.InputDir == "" {
		opts.InputDir = "/dev/input"
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	c := &checker{scanner: scanner, Options: opts}

	var problems []string
	if err := c.inputAccess(); err != nil {
		problems = append(problems, err.Error())
	}
	if err := c.rendererBinary(); err != nil {
		problems = append(problems, err.Error())
	}
	if err := c.shortcutsDir(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrNotReady, strings.Join(problems, "; "))
	}
	fmt.Fprintln(c.Out, "✔ Everything looks good.")
	return nil
}

type checker struct {
	Options
	scanner *bufio.Scanner
	// run executes a fix command; replaced in tests.
	run func(name string, args ...string) error
}

func (c *checker) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// confirm asks a [Y/n] question. An empty answer means yes, EOF means no.
func (c *checker) confirm(question string) bool {
	c.printf("%s [Y/n]: ", question)
	if !c.scanner.Scan() {
		c.printf("\n")
		return false
	}
	input := strings.ToLower(strings.TrimSpace(c.scanner.Text()))
	return input == "" || input == "y" || input == "yes"
}

func (c *checker) exec(name string, args ...string) error {
	if c.run != nil {
		return c.run(name, args...)
	}
	c.printf("Running: %s %s\n", name, strings.Join(args, " "))
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}

func (c *checker) inputAccess() error {
	c.printf("Checking input device access...\n")
	paths, err := filepath.Glob(filepath.Join(c.InputDir, "event*"))
	if err != nil || len(paths) == 0 {
		return fmt.Errorf("no input devices in %s", c.InputDir)
	}

	readable := 0
	for _, p := range paths {
		if unix.Access(p, unix.R_OK) == nil {
			readable++
		}
	}
	if readable > 0 {
		c.printf("✔ %d of %d input devices are readable.\n", readable, len(paths))
		return nil
	}

	c.printf("None of the %d input devices in %s are readable by this user.\n", len(paths), c.InputDir)
	c.printf("Members of the 'input' group can read them.\n")
	u, err := user.Current()
	if err != nil {
		return fmt.Errorf("input devices not readable")
	}
	if !c.confirm(fmt.Sprintf("Add %s to the 'input' group with sudo?", u.Username)) {
		return fmt.Errorf("input devices not readable")
	}
	if err := c.exec("sudo", "usermod", "-aG", "input", u.Username); err != nil {
		return fmt.Errorf("usermod failed: %w", err)
	}
	c.printf("✔ Added. Log out and back in for the group change to apply.\n")
	return nil
}

func (c *checker) rendererBinary() error {
	c.printf("Checking renderer...\n")
	path, err := renderer.FindBinary(c.Renderer)
	if err != nil {
		c.printf("The renderer '%s' was not found next to this program or on PATH.\n", renderer.BinaryName)
		c.printf("Build it and install it to a directory on PATH, or set \"renderer\" in the config.\n")
		return err
	}
	c.printf("✔ Renderer found: %s\n", path)
	return nil
}

const exampleShortcut = `[Desktop Entry]
Type=Application
Name=Terminal
Exec=xterm
Icon=utilities-terminal
`

func (c *checker) shortcutsDir() error {
	dir := filepath.Join(c.ConfigDir, shortcuts.DirName)
	c.printf("Checking shortcuts in %s...\n", dir)

	matches, _ := filepath.Glob(filepath.Join(dir, "*.desktop"))
	if len(matches) > 0 {
		c.printf("✔ %d shortcut descriptors found.\n", len(matches))
		return nil
	}

	c.printf("No .desktop files found. Each one becomes a menu segment.\n")
	if !c.confirm("Create the directory with an example shortcut?") {
		return fmt.Errorf("no shortcuts in %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, "terminal.desktop")
	if err := os.WriteFile(path, []byte(exampleShortcut), 0o644); err != nil {
		return err
	}
	c.printf("✔ Wrote %s. Copy more from /usr/share/applications.\n", path)
	return nil
}
