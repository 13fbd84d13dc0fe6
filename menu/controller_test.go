package menu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micha/aeonium-menu/hotkey"
)

type fakeCatalog struct {
	icons     []string
	launched  []int
	launchErr error
}

func newCatalog(n int) *fakeCatalog {
	return &fakeCatalog{icons: make([]string, n)}
}

func (f *fakeCatalog) Len() int          { return len(f.icons) }
func (f *fakeCatalog) Name(i int) string { return fmt.Sprintf("item%d", i) }
func (f *fakeCatalog) Icon(i int) (string, bool) {
	return f.icons[i], f.icons[i] != ""
}
func (f *fakeCatalog) Launch(i int) error {
	f.launched = append(f.launched, i)
	return f.launchErr
}

type fakeSession struct {
	mu       sync.Mutex
	lines    []string
	writeErr error
	waited   bool
	killed   bool
}

func (s *fakeSession) write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.lines = append(s.lines, line)
	return nil
}

func (s *fakeSession) Highlight(idx int) error { return s.write(fmt.Sprintf("HIGHLIGHT %d\n", idx)) }
func (s *fakeSession) Quit() error             { return s.write("QUIT\n") }
func (s *fakeSession) Wait() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waited = true
	return nil
}
func (s *fakeSession) Kill() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.killed = true
	return nil
}

func (s *fakeSession) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

type harness struct {
	ctrl    *Controller
	catalog *fakeCatalog
	spawned [][]string
	session *fakeSession
	now     time.Time
}

func newHarness(t *testing.T, segments int) *harness {
	t.Helper()
	h := &harness{catalog: newCatalog(segments), now: time.Unix(1700000000, 0)}
	spawn := func(args []string) (Session, error) {
		h.spawned = append(h.spawned, args)
		h.session = &fakeSession{}
		return h.session, nil
	}
	ctrl, err := NewController(h.catalog, spawn, Options{
		IdleTimeout: time.Second,
		Now:         func() time.Time { return h.now },
	})
	require.NoError(t, err)
	h.ctrl = ctrl
	return h
}

func (h *harness) send(t *testing.T, ev hotkey.Event) {
	t.Helper()
	require.NoError(t, h.ctrl.HandleEvent(ev))
}

func (h *harness) highlight(t *testing.T) int {
	t.Helper()
	idx, ok := h.ctrl.Highlight()
	require.True(t, ok, "controller should be active")
	return idx
}

var (
	up   = hotkey.Event{Kind: hotkey.MenuUp}
	down = hotkey.Event{Kind: hotkey.MenuDown}
)

func scroll(d int) hotkey.Event { return hotkey.Event{Kind: hotkey.Scroll, Delta: d} }

func TestNewControllerRejectsEmptyCatalog(t *testing.T) {
	_, err := NewController(newCatalog(0), nil, Options{})
	assert.ErrorIs(t, err, ErrNoSegments)
}

func TestOpenWithDownStartsAtFirstSegment(t *testing.T) {
	h := newHarness(t, 5)
	h.catalog.icons[1] = "/usr/share/icons/firefox.png"

	h.send(t, down)

	assert.Equal(t, 0, h.highlight(t))
	require.Len(t, h.spawned, 1)
	assert.Equal(t, []string{"5", "default", "/usr/share/icons/firefox.png", "default", "default", "default"}, h.spawned[0])
	assert.Equal(t, []string{"HIGHLIGHT 0\n"}, h.session.Lines())
}

func TestOpeningHighlight(t *testing.T) {
	tests := []struct {
		name string
		ev   hotkey.Event
		want int
	}{
		{"up", up, 4},
		{"down", down, 0},
		{"negative scroll", scroll(-1), 4},
		{"positive scroll", scroll(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 5)
			h.send(t, tt.ev)
			assert.Equal(t, tt.want, h.highlight(t))
		})
	}
}

func TestUpAdvancesHighlight(t *testing.T) {
	h := newHarness(t, 5)
	h.send(t, down)
	h.send(t, up)

	assert.Equal(t, 1, h.highlight(t))
	assert.Equal(t, []string{"HIGHLIGHT 0\n", "HIGHLIGHT 1\n"}, h.session.Lines())
	assert.Len(t, h.spawned, 1, "an active menu must not spawn again")
}

func TestDownWrapsBackward(t *testing.T) {
	h := newHarness(t, 3)
	h.send(t, down)
	h.send(t, down)
	assert.Equal(t, 2, h.highlight(t))
}

func TestScrollDirection(t *testing.T) {
	h := newHarness(t, 4)
	h.send(t, down)
	h.send(t, scroll(1))
	assert.Equal(t, 1, h.highlight(t))
	h.send(t, scroll(-1))
	h.send(t, scroll(-1))
	assert.Equal(t, 3, h.highlight(t))
}

func TestStepsAreInverse(t *testing.T) {
	for segments := 1; segments <= 7; segments++ {
		c := &Controller{segments: segments}
		for idx := 0; idx < segments; idx++ {
			next := c.step(idx, 1)
			prev := c.step(idx, -1)
			assert.True(t, next >= 0 && next < segments)
			assert.True(t, prev >= 0 && prev < segments)
			assert.Equal(t, idx, c.step(next, -1))
			assert.Equal(t, idx, c.step(prev, 1))
		}
	}
}

func TestZeroScrollIsNoop(t *testing.T) {
	h := newHarness(t, 5)

	h.send(t, scroll(0))
	assert.False(t, h.ctrl.Active())
	assert.Empty(t, h.spawned)

	h.send(t, down)
	h.now = h.now.Add(800 * time.Millisecond)
	h.send(t, scroll(0))
	assert.Equal(t, 0, h.highlight(t))
	assert.Equal(t, []string{"HIGHLIGHT 0\n"}, h.session.Lines())

	// timer was not reset by the zero scroll
	h.now = h.now.Add(300 * time.Millisecond)
	require.NoError(t, h.ctrl.Tick())
	assert.False(t, h.ctrl.Active())
}

func TestIdleTimeoutLaunchesHighlightedItem(t *testing.T) {
	h := newHarness(t, 5)
	h.send(t, down)
	h.send(t, up)
	h.send(t, up)
	session := h.session

	h.now = h.now.Add(time.Second)
	require.NoError(t, h.ctrl.Tick())
	assert.True(t, h.ctrl.Active(), "exactly the timeout is not past it")

	h.now = h.now.Add(time.Millisecond)
	require.NoError(t, h.ctrl.Tick())

	assert.False(t, h.ctrl.Active())
	assert.Equal(t, []int{2}, h.catalog.launched)
	assert.Equal(t, "QUIT\n", session.Lines()[len(session.Lines())-1])
	assert.True(t, session.waited)

	// next event opens a fresh session
	h.send(t, up)
	assert.Len(t, h.spawned, 2)
	assert.Equal(t, 4, h.highlight(t))
}

func TestIdleTimerMeasuredFromLastChange(t *testing.T) {
	h := newHarness(t, 5)
	h.send(t, down)

	h.now = h.now.Add(900 * time.Millisecond)
	h.send(t, up)
	h.now = h.now.Add(900 * time.Millisecond)
	require.NoError(t, h.ctrl.Tick())
	assert.True(t, h.ctrl.Active())

	h.now = h.now.Add(200 * time.Millisecond)
	require.NoError(t, h.ctrl.Tick())
	assert.False(t, h.ctrl.Active())
	assert.Equal(t, []int{1}, h.catalog.launched)
}

func TestLaunchFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, 2)
	h.catalog.launchErr = errors.New("exec: \"nope\": executable file not found in $PATH")
	var notified []string
	h.ctrl.opts.Notify = func(title, msg string) { notified = append(notified, title+": "+msg) }

	h.send(t, down)
	h.now = h.now.Add(2 * time.Second)
	require.NoError(t, h.ctrl.Tick())

	assert.False(t, h.ctrl.Active())
	require.Len(t, notified, 1)
	assert.Contains(t, notified[0], "item0")
}

func TestSpawnFailureIsFatal(t *testing.T) {
	ctrl, err := NewController(newCatalog(3), func([]string) (Session, error) {
		return nil, errors.New("fork/exec /usr/bin/aeonium-renderer: no such file or directory")
	}, Options{})
	require.NoError(t, err)

	err = ctrl.HandleEvent(up)
	assert.ErrorIs(t, err, ErrRendererSpawn)
	assert.False(t, ctrl.Active())
}

func TestWriteFailureIsFatal(t *testing.T) {
	h := newHarness(t, 3)
	h.send(t, down)
	h.session.writeErr = errors.New("write |1: broken pipe")

	err := h.ctrl.HandleEvent(up)
	assert.ErrorIs(t, err, ErrRendererWrite)
}

func TestRunReportsDisconnectedListener(t *testing.T) {
	h := newHarness(t, 3)
	h.ctrl.opts.CheckInterval = 5 * time.Millisecond
	events := make(chan hotkey.Event, 1)
	events <- down
	close(events)

	err := h.ctrl.Run(context.Background(), events)
	assert.ErrorIs(t, err, ErrChannelDisconnected)
	assert.True(t, h.session.killed, "renderer must not outlive the controller")
	assert.False(t, h.ctrl.Active())
}

func TestRunShutsDownOnCancel(t *testing.T) {
	h := newHarness(t, 3)
	h.ctrl.opts.CheckInterval = 5 * time.Millisecond
	events := make(chan hotkey.Event)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.ctrl.Run(ctx, events) }()

	events <- up
	// unbuffered: the second send returns only after the first was handled
	events <- hotkey.Event{Kind: hotkey.Scroll}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, []string{"HIGHLIGHT 2\n", "QUIT\n"}, h.session.Lines())
	assert.Empty(t, h.catalog.launched, "shutdown must not launch")
}

func TestRunLaunchesAfterIdle(t *testing.T) {
	catalog := newCatalog(3)
	var session *fakeSession
	ctrl, err := NewController(catalog, func([]string) (Session, error) {
		session = &fakeSession{}
		return session, nil
	}, Options{IdleTimeout: 30 * time.Millisecond, CheckInterval: 5 * time.Millisecond})
	require.NoError(t, err)

	events := make(chan hotkey.Event)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx, events) }()

	events <- down
	events <- up
	time.Sleep(150 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int{1}, catalog.launched)
	assert.Equal(t, []string{"HIGHLIGHT 0\n", "HIGHLIGHT 1\n", "QUIT\n"}, session.Lines())
}
