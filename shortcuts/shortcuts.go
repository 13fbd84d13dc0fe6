// Package shortcuts loads the menu's launchable items from freedesktop
// .desktop descriptors and starts them.
package shortcuts

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/micha/aeonium-menu/logger"
)

// DirName is the subdirectory of the config directory holding descriptors.
const DirName = "shortcuts"

var (
	ErrNoShortcutsDir  = errors.New("shortcuts directory not found")
	ErrDescriptorParse = errors.New("invalid shortcut descriptor")
	ErrNoShortcuts     = errors.New("no usable shortcuts")
	ErrLaunch          = errors.New("failed to launch shortcut")

	errHidden = errors.New("hidden")
)

// Shortcut is one launchable item. Icon is a file path, or empty when the
// renderer should draw its default.
type Shortcut struct {
	Name    string
	Program string
	Args    []string
	Icon    string
	Source  string
}

func (s Shortcut) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, filepath.Base(s.Source))
}

// Launch starts the program detached from us with its stdio on the null
// device. The child is reaped in the background.
func (s Shortcut) Launch() error {
	cmd := exec.Command(s.Program, s.Args...)
	cmd.SysProcAttr = detached()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrLaunch, s.Name, err)
	}
	log.Printf("[shortcuts] launched %s: %s (pid %d)", s.Name, strings.Join(cmd.Args, " "), cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debugf("[shortcuts] %s exited: %v", s.Name, err)
		}
	}()
	return nil
}

// List is the ordered set of shortcuts shown in the menu, one per segment.
type List []Shortcut

func (l List) Len() int          { return len(l) }
func (l List) Name(i int) string { return l[i].Name }

func (l List) Icon(i int) (string, bool) {
	return l[i].Icon, l[i].Icon != ""
}

func (l List) Launch(i int) error {
	return l[i].Launch()
}

// Load reads every *.desktop file in configDir/shortcuts in lexical order.
// A descriptor that fails to parse is logged and skipped.
func Load(configDir string) (List, error) {
	return load(filepath.Join(configDir, DirName), userLocale(), iconDirs())
}

func load(dir string, locale language.Tag, icons []string) (List, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoShortcutsDir, dir)
		}
		return nil, fmt.Errorf("failed to read shortcuts directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".desktop") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no .desktop files in %s", ErrNoShortcuts, dir)
	}

	var list List
	for _, path := range paths {
		s, err := parse(path, locale, icons)
		switch {
		case errors.Is(err, errHidden):
			logger.Debugf("[shortcuts] %s is hidden, skipping", path)
		case err != nil:
			log.Printf("[shortcuts] warning: %v", err)
		default:
			list = append(list, s)
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoShortcuts, dir)
	}
	return list, nil
}

func parse(path string, locale language.Tag, icons []string) (Shortcut, error) {
	e, err := readEntry(path)
	if err != nil {
		return Shortcut{}, fmt.Errorf("%w %s: %w", ErrDescriptorParse, path, err)
	}
	if e.hidden {
		return Shortcut{}, errHidden
	}
	if e.kind != "" && e.kind != "Application" {
		return Shortcut{}, fmt.Errorf("%w %s: Type is %q, not Application", ErrDescriptorParse, path, e.kind)
	}
	if e.name == "" {
		return Shortcut{}, fmt.Errorf("%w %s: no Name", ErrDescriptorParse, path)
	}
	if e.exec == "" {
		return Shortcut{}, fmt.Errorf("%w %s: no Exec", ErrDescriptorParse, path)
	}
	argv, err := splitExec(e.exec)
	if err != nil {
		return Shortcut{}, fmt.Errorf("%w %s: %w", ErrDescriptorParse, path, err)
	}

	s := Shortcut{
		Name:    e.displayName(locale),
		Program: argv[0],
		Args:    argv[1:],
		Source:  path,
	}

	switch {
	case !e.hasIcon || e.icon == "":
		log.Printf("[shortcuts] warning: no Icon in %s, using default", path)
	default:
		if icon, ok := resolveIcon(e.icon, icons); ok {
			s.Icon = icon
		} else {
			log.Printf("[shortcuts] warning: icon %q for %s not found, using default", e.icon, path)
		}
	}
	return s, nil
}
