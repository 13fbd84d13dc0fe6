//go:build !linux

package hotkey

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"time"
)

var errUnsupported = fmt.Errorf("raw input capture is not supported on %s", runtime.GOOS)

type unsupportedSource struct{}

// NewSeatSource returns a source whose seat assignment always fails.
func NewSeatSource() Source {
	return unsupportedSource{}
}

func (unsupportedSource) AssignSeat(string) error {
	return fmt.Errorf("%w: %w", ErrSeatAssignment, errUnsupported)
}

func (unsupportedSource) Dispatch() error { return errUnsupported }

func (unsupportedSource) PollBlock(ctx context.Context, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

func (unsupportedSource) Events() iter.Seq[RawEvent] {
	return func(func(RawEvent) bool) {}
}

func (unsupportedSource) Close() error { return nil }

// DeviceInfo describes an input device node for diagnostics.
type DeviceInfo struct {
	Path  string
	Name  string
	Seat  string
	Keys  bool
	Wheel bool
	Err   error
}

// ListDevices is not available on this platform.
func ListDevices() ([]DeviceInfo, error) {
	return nil, errUnsupported
}
