// Package notify shows desktop notifications for failures the user would
// otherwise only see in the log.
package notify

import (
	"log"
	"os"
	"sync"

	"github.com/gen2brain/beeep"
)

const appName = "Aeonium Menu"

var (
	mu      sync.Mutex
	enabled = true
	send    = func(title, message string) error {
		return beeep.Notify(title, message, "")
	}
)

func init() {
	beeep.AppName = appName
}

// SetEnabled turns notifications on or off.
func SetEnabled(on bool) {
	mu.Lock()
	enabled = on
	mu.Unlock()
}

// Error shows a notification. Delivery failures are only logged.
func Error(title, message string) {
	mu.Lock()
	on, fn := enabled, send
	mu.Unlock()
	if !on {
		return
	}
	if err := fn(title, message); err != nil {
		log.Printf("[notify] could not show %q: %v", title, err)
	}
}

// HasDisplay reports whether an X11 or Wayland session is reachable.
func HasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// DisableIfHeadless turns notifications off when there is no display to
// show them on, and reports whether it did.
func DisableIfHeadless() bool {
	if HasDisplay() {
		return false
	}
	SetEnabled(false)
	return true
}
