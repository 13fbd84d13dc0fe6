// Package renderer talks to the external radial-menu renderer: it starts
// the process and feeds it newline-delimited commands on stdin.
package renderer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultIcon is passed in place of an icon path the renderer should draw
// with its built-in glyph.
const DefaultIcon = "default"

var (
	ErrMalformedCommand = errors.New("malformed renderer command")
	ErrUnknownCommand   = errors.New("unknown renderer command")
)

// Verb identifies a renderer command.
type Verb int

const (
	VerbHighlight Verb = iota
	VerbQuit
)

func (v Verb) String() string {
	switch v {
	case VerbHighlight:
		return "HIGHLIGHT"
	case VerbQuit:
		return "QUIT"
	}
	return fmt.Sprintf("Verb(%d)", int(v))
}

// Command is one parsed protocol line. Index is only set for HIGHLIGHT.
type Command struct {
	Verb  Verb
	Index int
}

func FormatHighlight(idx int) string {
	return fmt.Sprintf("HIGHLIGHT %d\n", idx)
}

func FormatQuit() string {
	return "QUIT\n"
}

// ParseCommand is the renderer-side reading of a line. Surrounding
// whitespace is ignored and the verb is case-insensitive.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrMalformedCommand)
	}

	switch strings.ToUpper(fields[0]) {
	case "QUIT":
		if len(fields) != 1 {
			return Command{}, fmt.Errorf("%w: QUIT takes no argument", ErrMalformedCommand)
		}
		return Command{Verb: VerbQuit}, nil
	case "HIGHLIGHT":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("%w: HIGHLIGHT needs one index", ErrMalformedCommand)
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil || idx < 0 {
			return Command{}, fmt.Errorf("%w: bad index %q", ErrMalformedCommand, fields[1])
		}
		return Command{Verb: VerbHighlight, Index: idx}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
}

// Args builds the renderer's argument vector: the segment count followed
// by one icon per segment, DefaultIcon where none is known.
func Args(segments int, icons []string) []string {
	args := make([]string, 0, segments+1)
	args = append(args, strconv.Itoa(segments))
	for i := 0; i < segments; i++ {
		icon := ""
		if i < len(icons) {
			icon = icons[i]
		}
		if icon == "" {
			icon = DefaultIcon
		}
		args = append(args, icon)
	}
	return args
}
