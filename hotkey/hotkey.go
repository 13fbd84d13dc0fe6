// Package hotkey provides global chord and scroll detection on top of the
// Linux evdev input stream.
package hotkey

import (
	"context"
	"errors"
	"iter"
	"time"
)

var (
	// ErrSeatAssignment is returned when the source cannot bind to a seat,
	// usually because the process may not open any input device node.
	ErrSeatAssignment = errors.New("seat assignment failed")
	// ErrDispatch reports an I/O failure while draining device events.
	ErrDispatch = errors.New("input dispatch failed")
	// ErrChannelDisconnected is returned when nobody receives events anymore.
	ErrChannelDisconnected = errors.New("event channel disconnected")
)

// RawKind tells what a RawEvent carries.
type RawKind int

const (
	RawKey RawKind = iota + 1
	RawScroll
)

// RawEvent is a decoded device event, before chord detection.
type RawEvent struct {
	Kind RawKind
	// Code is the raw evdev key code for RawKey events.
	Code uint16
	// Pressed is true for a press transition, false for a release.
	Pressed bool
	// Scroll is the vertical scroll amount; positive scrolls down.
	Scroll float64
}

// KeyEvent builds a RawKey event.
func KeyEvent(code KeyCode, pressed bool) RawEvent {
	return RawEvent{Kind: RawKey, Code: uint16(code), Pressed: pressed}
}

// ScrollEvent builds a RawScroll event.
func ScrollEvent(value float64) RawEvent {
	return RawEvent{Kind: RawScroll, Scroll: value}
}

// Source abstracts the raw input stream of one seat.
//
// AssignSeat must be called once before the first PollBlock or Dispatch.
// Events yields what the last Dispatch collected; every event is yielded
// once, so iterating again without a Dispatch in between yields nothing.
type Source interface {
	AssignSeat(seat string) error
	Dispatch() error
	// PollBlock waits until events are pending or timeout elapses. A
	// negative timeout waits until ctx is done.
	PollBlock(ctx context.Context, timeout time.Duration) error
	Events() iter.Seq[RawEvent]
	Close() error
}

// EventKind identifies an application event.
type EventKind int

const (
	MenuUp EventKind = iota + 1
	MenuDown
	Scroll
)

func (k EventKind) String() string {
	switch k {
	case MenuUp:
		return "MenuUp"
	case MenuDown:
		return "MenuDown"
	case Scroll:
		return "Scroll"
	}
	return "Unknown"
}

// Event is an application event sent from the listener to the menu.
type Event struct {
	Kind EventKind
	// Delta is -1 or +1 for Scroll events.
	Delta int
}

// Binding is the chord configuration: all Modifiers held plus Up or Down
// freshly pressed. Modifiers also gate scrolling.
type Binding struct {
	Modifiers []KeyCode
	Up        KeyCode
	Down      KeyCode
}

// DefaultBinding is Ctrl+Shift+F10 for up and Ctrl+Shift+F9 for down.
func DefaultBinding() Binding {
	return Binding{
		Modifiers: []KeyCode{KeyLeftCtrl, KeyLeftShift},
		Up:        KeyF10,
		Down:      KeyF9,
	}
}
