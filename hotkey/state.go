package hotkey

import "fmt"

// State tracks held keys across listener cycles, plus the press edges and
// scroll delta of the current cycle. It is owned by the listener goroutine.
type State struct {
	pressed     map[KeyCode]struct{}
	justPressed map[KeyCode]struct{}
	wheelDelta  int
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		pressed:     make(map[KeyCode]struct{}),
		justPressed: make(map[KeyCode]struct{}),
	}
}

// Update dispatches src and folds its pending events into the state.
// Edges and the scroll delta from the previous cycle are cleared first.
func (s *State) Update(src Source) error {
	if err := src.Dispatch(); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	s.wheelDelta = 0
	clear(s.justPressed)

	for ev := range src.Events() {
		s.apply(ev)
	}
	return nil
}

func (s *State) apply(ev RawEvent) {
	switch ev.Kind {
	case RawKey:
		key, ok := DecodeKeyCode(ev.Code)
		if !ok {
			return
		}
		if ev.Pressed {
			if _, held := s.pressed[key]; !held {
				s.justPressed[key] = struct{}{}
			}
			s.pressed[key] = struct{}{}
		} else {
			delete(s.pressed, key)
		}
	case RawScroll:
		// last scroll event of the cycle wins
		s.wheelDelta = sign(ev.Scroll)
	}
}

// Held reports whether key is currently down.
func (s *State) Held(key KeyCode) bool {
	_, ok := s.pressed[key]
	return ok
}

// HeldKeys returns the currently held keys in no particular order.
func (s *State) HeldKeys() []KeyCode {
	keys := make([]KeyCode, 0, len(s.pressed))
	for k := range s.pressed {
		keys = append(keys, k)
	}
	return keys
}

// JustPressed reports whether key went down during the current cycle.
func (s *State) JustPressed(key KeyCode) bool {
	_, ok := s.justPressed[key]
	return ok
}

func (s *State) allHeld(keys []KeyCode) bool {
	for _, k := range keys {
		if !s.Held(k) {
			return false
		}
	}
	return true
}

// ChordTriggered is true when every modifier is held and main was pressed
// during this cycle. Holding the chord does not fire again.
func (s *State) ChordTriggered(modifiers []KeyCode, main KeyCode) bool {
	return s.allHeld(modifiers) && s.JustPressed(main)
}

// ScrollWithModifiers returns the cycle's scroll delta if every modifier
// is held, 0 otherwise.
func (s *State) ScrollWithModifiers(modifiers []KeyCode) int {
	if !s.allHeld(modifiers) {
		return 0
	}
	return s.wheelDelta
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
