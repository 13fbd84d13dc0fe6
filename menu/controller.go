// Package menu drives the radial menu: it owns the renderer session, the
// highlighted segment and the idle timer, and launches the highlighted
// item once input goes quiet.
package menu

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/micha/aeonium-menu/hotkey"
	"github.com/micha/aeonium-menu/renderer"
)

const (
	// DefaultIdleTimeout is how long the menu stays up without input.
	DefaultIdleTimeout = time.Second
	// DefaultCheckInterval bounds how late an idle timeout is noticed.
	DefaultCheckInterval = 100 * time.Millisecond
)

var (
	ErrNoSegments          = errors.New("no menu segments")
	ErrRendererSpawn       = errors.New("failed to start renderer")
	ErrRendererWrite       = errors.New("failed to write to renderer")
	ErrChannelDisconnected = errors.New("input listener disconnected")
)

// Catalog is the ordered list of launchable items, one per segment.
type Catalog interface {
	Len() int
	Name(i int) string
	Icon(i int) (string, bool)
	Launch(i int) error
}

// Session is a running renderer together with its input stream.
type Session interface {
	Highlight(idx int) error
	Quit() error
	Wait() error
	Kill() error
}

// SpawnFunc starts a renderer with the given arguments.
type SpawnFunc func(args []string) (Session, error)

// Notifier receives user-facing failure messages.
type Notifier func(title, message string)

// Options tune the controller. Zero values select the defaults.
type Options struct {
	IdleTimeout   time.Duration
	CheckInterval time.Duration
	Now           func() time.Time
	Notify        Notifier
}

// Controller is the menu state machine. It is Idle while session is nil
// and Active otherwise; highlight and idleStart are only meaningful while
// Active.
type Controller struct {
	catalog  Catalog
	spawn    SpawnFunc
	segments int
	opts     Options

	session   Session
	highlight int
	idleStart time.Time
}

// NewController builds a controller for catalog. The segment count is
// fixed from here on.
func NewController(catalog Catalog, spawn SpawnFunc, opts Options) (*Controller, error) {
	segments := catalog.Len()
	if segments <= 0 {
		return nil, ErrNoSegments
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.CheckInterval > opts.IdleTimeout {
		opts.CheckInterval = opts.IdleTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		catalog:  catalog,
		spawn:    spawn,
		segments: segments,
		opts:     opts,
	}, nil
}

// Active reports whether a renderer session is running.
func (c *Controller) Active() bool {
	return c.session != nil
}

// Highlight returns the highlighted segment; ok is false while Idle.
func (c *Controller) Highlight() (idx int, ok bool) {
	if c.session == nil {
		return 0, false
	}
	return c.highlight, true
}

// Run consumes events until ctx is done or the channel is closed. A
// closed channel means the listener died and is reported as
// ErrChannelDisconnected. Renderer failures are returned as well.
func (c *Controller) Run(ctx context.Context, events <-chan hotkey.Event) error {
	ticker := time.NewTicker(c.opts.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Shutdown()
			return nil

		case ev, ok := <-events:
			if !ok {
				// the listener also closes the channel when ctx ends
				if ctx.Err() != nil {
					c.Shutdown()
					return nil
				}
				c.abort()
				return ErrChannelDisconnected
			}
			if err := c.HandleEvent(ev); err != nil {
				c.abort()
				return err
			}

		case <-ticker.C:
			if err := c.Tick(); err != nil {
				c.abort()
				return err
			}
		}
	}
}

// HandleEvent applies one input event and, if a segment is highlighted
// afterwards, sends it to the renderer before returning.
func (c *Controller) HandleEvent(ev hotkey.Event) error {
	step := direction(ev)
	if step == 0 {
		return nil
	}

	if c.session == nil {
		if err := c.open(); err != nil {
			return err
		}
		c.highlight = c.initial(ev)
		log.Printf("[menu] opened by %s, highlight %d", ev.Kind, c.highlight)
	} else {
		c.highlight = c.step(c.highlight, step)
	}
	c.idleStart = c.opts.Now()

	if err := c.session.Highlight(c.highlight); err != nil {
		return fmt.Errorf("%w: %w", ErrRendererWrite, err)
	}
	return nil
}

// direction maps an event to +1 (up), -1 (down) or 0 (nothing to do).
func direction(ev hotkey.Event) int {
	switch ev.Kind {
	case hotkey.MenuUp:
		return 1
	case hotkey.MenuDown:
		return -1
	case hotkey.Scroll:
		switch {
		case ev.Delta > 0:
			return 1
		case ev.Delta < 0:
			return -1
		}
	}
	return 0
}

// initial is the segment highlighted when ev opens the menu. Up and a
// negative scroll start at the last segment, down and a positive scroll at
// the first.
func (c *Controller) initial(ev hotkey.Event) int {
	if ev.Kind == hotkey.MenuUp || (ev.Kind == hotkey.Scroll && ev.Delta < 0) {
		return c.segments - 1
	}
	return 0
}

func (c *Controller) step(idx, dir int) int {
	if dir > 0 {
		return (idx + 1) % c.segments
	}
	return (idx + c.segments - 1) % c.segments
}

func (c *Controller) open() error {
	icons := make([]string, c.segments)
	for i := range icons {
		if icon, ok := c.catalog.Icon(i); ok {
			icons[i] = icon
		}
	}

	session, err := c.spawn(renderer.Args(c.segments, icons))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRendererSpawn, err)
	}
	c.session = session
	return nil
}

// Tick closes the menu and launches the highlighted item once the idle
// timeout has passed since the last highlight change.
func (c *Controller) Tick() error {
	if c.session == nil {
		return nil
	}
	if c.opts.Now().Sub(c.idleStart) <= c.opts.IdleTimeout {
		return nil
	}

	idx := c.highlight
	if err := c.session.Quit(); err != nil {
		return fmt.Errorf("%w: %w", ErrRendererWrite, err)
	}

	name := c.catalog.Name(idx)
	log.Printf("[menu] idle, launching %q (segment %d)", name, idx)
	if err := c.catalog.Launch(idx); err != nil {
		log.Printf("[menu] launch of %q failed: %v", name, err)
		if c.opts.Notify != nil {
			c.opts.Notify("Launch failed", fmt.Sprintf("%s: %v", name, err))
		}
	}

	c.close()
	return nil
}

// close waits for the renderer and returns to Idle.
func (c *Controller) close() {
	if err := c.session.Wait(); err != nil {
		log.Printf("[menu] renderer exit: %v", err)
	}
	c.session = nil
	c.highlight = 0
	c.idleStart = time.Time{}
}

// Shutdown asks a running renderer to quit without launching anything.
func (c *Controller) Shutdown() {
	if c.session == nil {
		return
	}
	if err := c.session.Quit(); err != nil {
		log.Printf("[menu] renderer did not take QUIT: %v", err)
		c.session.Kill()
	}
	c.close()
}

// abort tears the renderer down on a fatal path so it does not outlive us.
func (c *Controller) abort() {
	if c.session == nil {
		return
	}
	c.session.Kill()
	c.close()
}
