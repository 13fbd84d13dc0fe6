package hotkey

import (
	"context"
	"fmt"
	"log"
)

// Listener watches a Source for the configured chords and modifier-gated
// scrolling and sends the resulting events on a channel.
type Listener struct {
	source  Source
	binding Binding
	events  chan Event
}

// NewListener creates a listener for an already seat-assigned source.
func NewListener(source Source, binding Binding) *Listener {
	return &Listener{
		source:  source,
		binding: binding,
		events:  make(chan Event, 64),
	}
}

// Events returns the channel events are delivered on. It is closed when
// Start returns, so a receiver can tell the listener is gone.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Start runs the poll/dispatch/detect loop. It blocks until the context is
// cancelled or the source fails. Call this in a goroutine, once.
func (l *Listener) Start(ctx context.Context) error {
	defer close(l.events)

	state := NewState()
	log.Printf("[input] listening for %s", l.binding)

	for {
		if err := l.source.PollBlock(ctx, -1); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %w", ErrChannelDisconnected, ctx.Err())
			}
			return fmt.Errorf("poll input: %w", err)
		}

		if err := state.Update(l.source); err != nil {
			return err
		}

		if state.ChordTriggered(l.binding.Modifiers, l.binding.Up) {
			if err := l.send(ctx, Event{Kind: MenuUp}); err != nil {
				return err
			}
		}
		if state.ChordTriggered(l.binding.Modifiers, l.binding.Down) {
			if err := l.send(ctx, Event{Kind: MenuDown}); err != nil {
				return err
			}
		}
		if delta := state.ScrollWithModifiers(l.binding.Modifiers); delta != 0 {
			if err := l.send(ctx, Event{Kind: Scroll, Delta: delta}); err != nil {
				return fmt.Errorf("send scroll %d: %w", delta, err)
			}
		}
	}
}

// send blocks until the event is taken; events are never dropped.
func (l *Listener) send(ctx context.Context, ev Event) error {
	select {
	case l.events <- ev:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %s not delivered", ErrChannelDisconnected, ev.Kind)
	}
}

func (b Binding) String() string {
	mods := ""
	for _, m := range b.Modifiers {
		mods += m.String() + "+"
	}
	return fmt.Sprintf("up=%s%s down=%s%s", mods, b.Up, mods, b.Down)
}
