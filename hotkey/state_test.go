package hotkey

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cycle(t *testing.T, s *State, src *MemorySource, events ...RawEvent) {
	t.Helper()
	src.Push(events...)
	require.NoError(t, s.Update(src))
}

func heldSorted(s *State) []KeyCode {
	keys := s.HeldKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func TestPressedKeysTrackHeldSet(t *testing.T) {
	s := NewState()
	src := NewMemorySource()

	cycle(t, s, src, KeyEvent(KeyLeftCtrl, true), KeyEvent(KeyA, true))
	assert.Equal(t, []KeyCode{KeyLeftCtrl, KeyA}, heldSorted(s))

	cycle(t, s, src, KeyEvent(KeyA, false), KeyEvent(KeyLeftShift, true))
	assert.Equal(t, []KeyCode{KeyLeftCtrl, KeyLeftShift}, heldSorted(s))

	cycle(t, s, src, KeyEvent(KeyLeftCtrl, false), KeyEvent(KeyLeftShift, false))
	assert.Empty(t, s.HeldKeys())
}

func TestJustPressedIsEdgeOnly(t *testing.T) {
	s := NewState()
	src := NewMemorySource()

	cycle(t, s, src, KeyEvent(KeyF9, true))
	assert.True(t, s.JustPressed(KeyF9))

	// autorepeat style second press while held is not an edge
	cycle(t, s, src, KeyEvent(KeyF9, true))
	assert.False(t, s.JustPressed(KeyF9))
	assert.True(t, s.Held(KeyF9))

	// an empty cycle clears the edge set
	cycle(t, s, src)
	assert.False(t, s.JustPressed(KeyF9))
}

func TestReleaseDoesNotTouchJustPressed(t *testing.T) {
	s := NewState()
	src := NewMemorySource()

	cycle(t, s, src, KeyEvent(KeyF10, true), KeyEvent(KeyF10, false))
	assert.True(t, s.JustPressed(KeyF10))
	assert.False(t, s.Held(KeyF10))
}

func TestUnknownKeyCodesAreIgnored(t *testing.T) {
	s := NewState()
	src := NewMemorySource()

	cycle(t, s, src, RawEvent{Kind: RawKey, Code: 0x2ff, Pressed: true})
	assert.Empty(t, s.HeldKeys())
}

func TestChordTriggered(t *testing.T) {
	mods := []KeyCode{KeyLeftCtrl, KeyLeftShift}

	tests := []struct {
		name   string
		events []RawEvent
		want   bool
	}{
		{"all modifiers and fresh main key", []RawEvent{KeyEvent(KeyLeftCtrl, true), KeyEvent(KeyLeftShift, true), KeyEvent(KeyF9, true)}, true},
		{"missing modifier", []RawEvent{KeyEvent(KeyLeftCtrl, true), KeyEvent(KeyF9, true)}, false},
		{"no main key", []RawEvent{KeyEvent(KeyLeftCtrl, true), KeyEvent(KeyLeftShift, true)}, false},
		{"modifier released in same cycle", []RawEvent{KeyEvent(KeyLeftCtrl, true), KeyEvent(KeyLeftShift, true), KeyEvent(KeyLeftShift, false), KeyEvent(KeyF9, true)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			src := NewMemorySource()
			cycle(t, s, src, tt.events...)
			assert.Equal(t, tt.want, s.ChordTriggered(mods, KeyF9))
		})
	}
}

func TestChordDoesNotRepeatWhileHeld(t *testing.T) {
	mods := []KeyCode{KeyLeftCtrl}
	s := NewState()
	src := NewMemorySource()

	cycle(t, s, src, KeyEvent(KeyLeftCtrl, true), KeyEvent(KeyF10, true))
	assert.True(t, s.ChordTriggered(mods, KeyF10))

	cycle(t, s, src)
	assert.False(t, s.ChordTriggered(mods, KeyF10))

	cycle(t, s, src, KeyEvent(KeyF10, false))
	cycle(t, s, src, KeyEvent(KeyF10, true))
	assert.True(t, s.ChordTriggered(mods, KeyF10))
}

func TestScrollWithModifiers(t *testing.T) {
	mods := []KeyCode{KeyLeftCtrl, KeyLeftShift}
	s := NewState()
	src := NewMemorySource()

	cycle(t, s, src, ScrollEvent(3.5))
	assert.Equal(t, 0, s.ScrollWithModifiers(mods))
	assert.Equal(t, 1, s.ScrollWithModifiers(nil))

	cycle(t, s, src, KeyEvent(KeyLeftCtrl, true), KeyEvent(KeyLeftShift, true), ScrollEvent(-0.2))
	assert.Equal(t, -1, s.ScrollWithModifiers(mods))

	// delta is cycle scoped
	cycle(t, s, src)
	assert.Equal(t, 0, s.ScrollWithModifiers(mods))
}

func TestLastScrollInCycleWins(t *testing.T) {
	s := NewState()
	src := NewMemorySource()

	cycle(t, s, src, ScrollEvent(1), ScrollEvent(-1), ScrollEvent(2))
	assert.Equal(t, 1, s.ScrollWithModifiers(nil))

	cycle(t, s, src, ScrollEvent(1), ScrollEvent(0))
	assert.Equal(t, 0, s.ScrollWithModifiers(nil))
}

func TestUpdateWrapsDispatchError(t *testing.T) {
	s := NewState()
	src := NewMemorySource()
	src.Fail(errors.New("device unplugged"))

	err := s.Update(src)
	require.ErrorIs(t, err, ErrDispatch)
	assert.Contains(t, err.Error(), "device unplugged")
}
