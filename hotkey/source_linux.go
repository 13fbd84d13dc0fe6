//go:build linux

package hotkey

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

const (
	defaultInputDir = "/dev/input"
	defaultUdevDir  = "/run/udev/data"
	defaultSeat     = "seat0"

	keyRelease = 0
	keyPress   = 1
	keyRepeat  = 2
)

// DeviceOpener opens and releases device nodes that need elevated or
// seat-granted access.
type DeviceOpener interface {
	OpenRestricted(path string, flags int) (*evdev.InputDevice, error)
	CloseRestricted(dev *evdev.InputDevice) error
}

// RestrictedOpener opens device nodes directly. The process needs read
// access to /dev/input/event*, e.g. through the 'input' group.
type RestrictedOpener struct{}

func (RestrictedOpener) OpenRestricted(path string, flags int) (*evdev.InputDevice, error) {
	return evdev.OpenWithFlags(path, flags)
}

func (RestrictedOpener) CloseRestricted(dev *evdev.InputDevice) error {
	return dev.Close()
}

type device struct {
	path string
	name string
	dev  *evdev.InputDevice
	held map[uint16]struct{}
}

type readResult struct {
	path string
	ev   evdev.InputEvent
	err  error
}

// SeatSource reads every keyboard and wheel device that belongs to one
// seat. Devices plugged in later are picked up through a watch on the
// input directory.
type SeatSource struct {
	opener   DeviceOpener
	inputDir string
	udevDir  string

	mu      sync.Mutex
	seat    string
	devices map[string]*device
	pending []RawEvent

	incoming chan readResult
	hotplug  chan string
	stash    []readResult
	added    []string

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// NewSeatSource returns a SeatSource reading /dev/input with direct access.
func NewSeatSource() Source {
	return NewSeatSourceWith(RestrictedOpener{}, defaultInputDir, defaultUdevDir)
}

// NewSeatSourceWith allows a custom opener and directories.
func NewSeatSourceWith(opener DeviceOpener, inputDir, udevDir string) *SeatSource {
	return &SeatSource{
		opener:   opener,
		inputDir: inputDir,
		udevDir:  udevDir,
		devices:  make(map[string]*device),
		incoming: make(chan readResult, 256),
		hotplug:  make(chan string, 16),
		done:     make(chan struct{}),
	}
}

func (s *SeatSource) AssignSeat(seat string) error {
	s.mu.Lock()
	if s.seat != "" {
		s.mu.Unlock()
		return fmt.Errorf("%w: already assigned to %s", ErrSeatAssignment, s.seat)
	}
	s.seat = seat
	s.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(s.inputDir, "event*"))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSeatAssignment, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: no input devices found in %s", ErrSeatAssignment, s.inputDir)
	}

	var denied int
	for _, path := range paths {
		if err := s.open(path); err != nil {
			if errors.Is(err, os.ErrPermission) {
				denied++
			}
			log.Printf("[input] skipping %s: %v", path, err)
		}
	}

	s.mu.Lock()
	opened := len(s.devices)
	s.mu.Unlock()

	if opened == 0 {
		if denied > 0 {
			return fmt.Errorf("%w: could not open any input devices on %s. Run as root or add your user to the 'input' group: sudo usermod -aG input $USER", ErrSeatAssignment, seat)
		}
		return fmt.Errorf("%w: no keyboard or wheel devices on %s", ErrSeatAssignment, seat)
	}
	log.Printf("[input] monitoring %d device(s) on %s", opened, seat)

	s.watch()
	return nil
}

var errNotRelevant = errors.New("no key or wheel capability")

func (s *SeatSource) open(path string) error {
	s.mu.Lock()
	_, known := s.devices[path]
	seat := s.seat
	s.mu.Unlock()
	if known {
		return nil
	}

	devSeat, err := seatOf(path, s.udevDir)
	if err != nil {
		return err
	}
	if devSeat != seat {
		return fmt.Errorf("belongs to %s", devSeat)
	}

	dev, err := s.opener.OpenRestricted(path, unix.O_RDONLY|unix.O_CLOEXEC)
	if err != nil {
		return err
	}
	if !relevant(dev) {
		s.opener.CloseRestricted(dev)
		return errNotRelevant
	}

	name, _ := dev.Name()
	d := &device{path: path, name: name, dev: dev, held: make(map[uint16]struct{})}

	s.mu.Lock()
	s.devices[path] = d
	s.mu.Unlock()

	go s.read(d)
	log.Printf("[input] opened %s (%s)", path, name)
	return nil
}

func relevant(dev *evdev.InputDevice) bool {
	if len(dev.CapableEvents(evdev.EV_KEY)) > 0 {
		return true
	}
	for _, c := range dev.CapableEvents(evdev.EV_REL) {
		if c == evdev.REL_WHEEL {
			return true
		}
	}
	return false
}

func (s *SeatSource) read(d *device) {
	for {
		ev, err := d.dev.ReadOne()
		if err != nil {
			select {
			case s.incoming <- readResult{path: d.path, err: err}:
			case <-s.done:
			}
			return
		}
		select {
		case s.incoming <- readResult{path: d.path, ev: *ev}:
		case <-s.done:
			return
		}
	}
}

// watch follows device creation in the input directory. Without it the
// source keeps working with the devices it already has.
func (s *SeatSource) watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[input] hotplug disabled: %v", err)
		return
	}
	if err := watcher.Add(s.inputDir); err != nil {
		log.Printf("[input] hotplug disabled: failed to watch %s: %v", s.inputDir, err)
		watcher.Close()
		return
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case <-s.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(event.Name), "event") {
					continue
				}
				// udev fixes permissions after creation, so retry on chmod
				if event.Op&(fsnotify.Create|fsnotify.Chmod) != 0 {
					select {
					case s.hotplug <- event.Name:
					case <-s.done:
						return
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[input] watcher error: %v", err)
			}
		}
	}()
}

func (s *SeatSource) PollBlock(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(s.stash) > 0 || len(s.added) > 0 {
		return nil
	}

	var expired <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-s.incoming:
		s.stash = append(s.stash, r)
	case path := <-s.hotplug:
		s.added = append(s.added, path)
	case <-expired:
	}
	return nil
}

func (s *SeatSource) Dispatch() error {
	for {
		select {
		case r := <-s.incoming:
			s.stash = append(s.stash, r)
			continue
		case path := <-s.hotplug:
			s.added = append(s.added, path)
			continue
		default:
		}
		break
	}

	for _, path := range s.added {
		if err := s.open(path); err != nil && !errors.Is(err, errNotRelevant) {
			log.Printf("[input] new device %s not opened: %v", path, err)
		}
	}
	s.added = s.added[:0]

	stash := s.stash
	s.stash = nil
	for i, r := range stash {
		if r.err != nil {
			if unplugged(r.err) {
				s.remove(r.path)
				continue
			}
			s.stash = stash[i+1:]
			return fmt.Errorf("read %s: %w", r.path, r.err)
		}
		s.decode(r)
	}
	return nil
}

func unplugged(err error) bool {
	return errors.Is(err, syscall.ENODEV) || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed)
}

func (s *SeatSource) decode(r readResult) {
	s.mu.Lock()
	d, ok := s.devices[r.path]
	s.mu.Unlock()
	if !ok {
		return
	}

	switch r.ev.Type {
	case evdev.EV_KEY:
		code := uint16(r.ev.Code)
		switch r.ev.Value {
		case keyPress:
			d.held[code] = struct{}{}
			s.pending = append(s.pending, RawEvent{Kind: RawKey, Code: code, Pressed: true})
		case keyRelease:
			delete(d.held, code)
			s.pending = append(s.pending, RawEvent{Kind: RawKey, Code: code})
		case keyRepeat:
		}
	case evdev.EV_REL:
		if r.ev.Code == evdev.REL_WHEEL && r.ev.Value != 0 {
			// kernel wheel-up is positive; report positive as scrolling down
			s.pending = append(s.pending, ScrollEvent(-float64(r.ev.Value)))
		}
	}
}

// remove drops an unplugged device and releases the keys it still held.
func (s *SeatSource) remove(path string) {
	s.mu.Lock()
	d, ok := s.devices[path]
	delete(s.devices, path)
	s.mu.Unlock()
	if !ok {
		return
	}

	for code := range d.held {
		s.pending = append(s.pending, RawEvent{Kind: RawKey, Code: code})
	}
	s.opener.CloseRestricted(d.dev)
	log.Printf("[input] removed %s (%s)", path, d.name)
}

func (s *SeatSource) Events() iter.Seq[RawEvent] {
	return func(yield func(RawEvent) bool) {
		for len(s.pending) > 0 {
			ev := s.pending[0]
			s.pending = s.pending[1:]
			if !yield(ev) {
				return
			}
		}
	}
}

func (s *SeatSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.watcher != nil {
			s.watcher.Close()
		}
		s.mu.Lock()
		for path, d := range s.devices {
			s.opener.CloseRestricted(d.dev)
			delete(s.devices, path)
		}
		s.mu.Unlock()
	})
	return nil
}

// seatOf reads the udev ID_SEAT property of a device node. Devices without
// the property belong to seat0.
func seatOf(path, udevDir string) (string, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return "", err
	}
	if st.Mode&unix.S_IFMT != unix.S_IFCHR {
		return "", fmt.Errorf("%s is not a character device", path)
	}

	dev := uint64(st.Rdev)
	data := filepath.Join(udevDir, fmt.Sprintf("c%d:%d", unix.Major(dev), unix.Minor(dev)))
	f, err := os.Open(data)
	if err != nil {
		return defaultSeat, nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if seat, ok := strings.CutPrefix(scanner.Text(), "E:ID_SEAT="); ok && seat != "" {
			return seat, nil
		}
	}
	return defaultSeat, nil
}

// DeviceInfo describes an input device node for diagnostics.
type DeviceInfo struct {
	Path  string
	Name  string
	Seat  string
	Keys  bool
	Wheel bool
	Err   error
}

// ListDevices inspects every input device node without keeping it open.
func ListDevices() ([]DeviceInfo, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	infos := make([]DeviceInfo, 0, len(paths))
	for _, p := range paths {
		info := DeviceInfo{Path: p.Path, Name: p.Name}
		info.Seat, info.Err = seatOf(p.Path, defaultUdevDir)
		if info.Err == nil {
			var dev *evdev.InputDevice
			dev, info.Err = evdev.OpenWithFlags(p.Path, unix.O_RDONLY|unix.O_CLOEXEC)
			if info.Err == nil {
				info.Keys = len(dev.CapableEvents(evdev.EV_KEY)) > 0
				for _, c := range dev.CapableEvents(evdev.EV_REL) {
					if c == evdev.REL_WHEEL {
						info.Wheel = true
					}
				}
				dev.Close()
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}
