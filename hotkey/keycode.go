package hotkey

import (
	"fmt"
	"strings"
)

// KeyCode is a Linux evdev KEY_* scan code. Values are independent of
// keyboard layout and locale.
type KeyCode uint16

// Key codes (Linux evdev KEY_* constants)
const (
	KeyReserved   KeyCode = 0
	KeyEsc        KeyCode = 1
	Key1          KeyCode = 2
	Key2          KeyCode = 3
	Key3          KeyCode = 4
	Key4          KeyCode = 5
	Key5          KeyCode = 6
	Key6          KeyCode = 7
	Key7          KeyCode = 8
	Key8          KeyCode = 9
	Key9          KeyCode = 10
	Key0          KeyCode = 11
	KeyMinus      KeyCode = 12
	KeyEqual      KeyCode = 13
	KeyBackspace  KeyCode = 14
	KeyTab        KeyCode = 15
	KeyQ          KeyCode = 16
	KeyW          KeyCode = 17
	KeyE          KeyCode = 18
	KeyR          KeyCode = 19
	KeyT          KeyCode = 20
	KeyY          KeyCode = 21
	KeyU          KeyCode = 22
	KeyI          KeyCode = 23
	KeyO          KeyCode = 24
	KeyP          KeyCode = 25
	KeyLeftBrace  KeyCode = 26
	KeyRightBrace KeyCode = 27
	KeyEnter      KeyCode = 28
	KeyLeftCtrl   KeyCode = 29
	KeyA          KeyCode = 30
	KeyS          KeyCode = 31
	KeyD          KeyCode = 32
	KeyF          KeyCode = 33
	KeyG          KeyCode = 34
	KeyH          KeyCode = 35
	KeyJ          KeyCode = 36
	KeyK          KeyCode = 37
	KeyL          KeyCode = 38
	KeySemicolon  KeyCode = 39
	KeyApostrophe KeyCode = 40
	KeyGrave      KeyCode = 41
	KeyLeftShift  KeyCode = 42
	KeyBackslash  KeyCode = 43
	KeyZ          KeyCode = 44
	KeyX          KeyCode = 45
	KeyC          KeyCode = 46
	KeyV          KeyCode = 47
	KeyB          KeyCode = 48
	KeyN          KeyCode = 49
	KeyM          KeyCode = 50
	KeyComma      KeyCode = 51
	KeyDot        KeyCode = 52
	KeySlash      KeyCode = 53
	KeyRightShift KeyCode = 54
	KeyKPAsterisk KeyCode = 55
	KeyLeftAlt    KeyCode = 56
	KeySpace      KeyCode = 57
	KeyCapsLock   KeyCode = 58
	KeyF1         KeyCode = 59
	KeyF2         KeyCode = 60
	KeyF3         KeyCode = 61
	KeyF4         KeyCode = 62
	KeyF5         KeyCode = 63
	KeyF6         KeyCode = 64
	KeyF7         KeyCode = 65
	KeyF8         KeyCode = 66
	KeyF9         KeyCode = 67
	KeyF10        KeyCode = 68
	KeyNumLock    KeyCode = 69
	KeyScrollLock KeyCode = 70
	KeyKP7        KeyCode = 71
	KeyKP8        KeyCode = 72
	KeyKP9        KeyCode = 73
	KeyKPMinus    KeyCode = 74
	KeyKP4        KeyCode = 75
	KeyKP5        KeyCode = 76
	KeyKP6        KeyCode = 77
	KeyKPPlus     KeyCode = 78
	KeyKP1        KeyCode = 79
	KeyKP2        KeyCode = 80
	KeyKP3        KeyCode = 81
	KeyKP0        KeyCode = 82
	KeyKPDot      KeyCode = 83
	KeyF11        KeyCode = 87
	KeyF12        KeyCode = 88
	KeyRightCtrl  KeyCode = 97
	KeyRightAlt   KeyCode = 100
	KeyLeftMeta   KeyCode = 125
	KeyRightMeta  KeyCode = 126
	KeyF13        KeyCode = 183
	KeyF14        KeyCode = 184
	KeyF15        KeyCode = 185
	KeyF16        KeyCode = 186
	KeyF17        KeyCode = 187
	KeyF18        KeyCode = 188
	KeyF19        KeyCode = 189
	KeyF20        KeyCode = 190
	KeyF21        KeyCode = 191
	KeyF22        KeyCode = 192
	KeyF23        KeyCode = 193
	KeyF24        KeyCode = 194
)

var keyNames = map[KeyCode]string{
	KeyReserved: "KEY_RESERVED", KeyEsc: "KEY_ESC",
	Key1: "KEY_1", Key2: "KEY_2", Key3: "KEY_3", Key4: "KEY_4", Key5: "KEY_5",
	Key6: "KEY_6", Key7: "KEY_7", Key8: "KEY_8", Key9: "KEY_9", Key0: "KEY_0",
	KeyMinus: "KEY_MINUS", KeyEqual: "KEY_EQUAL", KeyBackspace: "KEY_BACKSPACE", KeyTab: "KEY_TAB",
	KeyQ: "KEY_Q", KeyW: "KEY_W", KeyE: "KEY_E", KeyR: "KEY_R", KeyT: "KEY_T",
	KeyY: "KEY_Y", KeyU: "KEY_U", KeyI: "KEY_I", KeyO: "KEY_O", KeyP: "KEY_P",
	KeyLeftBrace: "KEY_LEFTBRACE", KeyRightBrace: "KEY_RIGHTBRACE", KeyEnter: "KEY_ENTER",
	KeyLeftCtrl: "KEY_LEFTCTRL",
	KeyA: "KEY_A", KeyS: "KEY_S", KeyD: "KEY_D", KeyF: "KEY_F", KeyG: "KEY_G",
	KeyH: "KEY_H", KeyJ: "KEY_J", KeyK: "KEY_K", KeyL: "KEY_L",
	KeySemicolon: "KEY_SEMICOLON", KeyApostrophe: "KEY_APOSTROPHE", KeyGrave: "KEY_GRAVE",
	KeyLeftShift: "KEY_LEFTSHIFT", KeyBackslash: "KEY_BACKSLASH",
	KeyZ: "KEY_Z", KeyX: "KEY_X", KeyC: "KEY_C", KeyV: "KEY_V", KeyB: "KEY_B",
	KeyN: "KEY_N", KeyM: "KEY_M",
	KeyComma: "KEY_COMMA", KeyDot: "KEY_DOT", KeySlash: "KEY_SLASH",
	KeyRightShift: "KEY_RIGHTSHIFT", KeyKPAsterisk: "KEY_KPASTERISK", KeyLeftAlt: "KEY_LEFTALT",
	KeySpace: "KEY_SPACE", KeyCapsLock: "KEY_CAPSLOCK",
	KeyF1: "KEY_F1", KeyF2: "KEY_F2", KeyF3: "KEY_F3", KeyF4: "KEY_F4", KeyF5: "KEY_F5",
	KeyF6: "KEY_F6", KeyF7: "KEY_F7", KeyF8: "KEY_F8", KeyF9: "KEY_F9", KeyF10: "KEY_F10",
	KeyNumLock: "KEY_NUMLOCK", KeyScrollLock: "KEY_SCROLLLOCK",
	KeyKP7: "KEY_KP7", KeyKP8: "KEY_KP8", KeyKP9: "KEY_KP9", KeyKPMinus: "KEY_KPMINUS",
	KeyKP4: "KEY_KP4", KeyKP5: "KEY_KP5", KeyKP6: "KEY_KP6", KeyKPPlus: "KEY_KPPLUS",
	KeyKP1: "KEY_KP1", KeyKP2: "KEY_KP2", KeyKP3: "KEY_KP3", KeyKP0: "KEY_KP0", KeyKPDot: "KEY_KPDOT",
	KeyF11: "KEY_F11", KeyF12: "KEY_F12",
	KeyRightCtrl: "KEY_RIGHTCTRL", KeyRightAlt: "KEY_RIGHTALT",
	KeyLeftMeta: "KEY_LEFTMETA", KeyRightMeta: "KEY_RIGHTMETA",
	KeyF13: "KEY_F13", KeyF14: "KEY_F14", KeyF15: "KEY_F15", KeyF16: "KEY_F16",
	KeyF17: "KEY_F17", KeyF18: "KEY_F18", KeyF19: "KEY_F19", KeyF20: "KEY_F20",
	KeyF21: "KEY_F21", KeyF22: "KEY_F22", KeyF23: "KEY_F23", KeyF24: "KEY_F24",
}

var keysByName = func() map[string]KeyCode {
	m := make(map[string]KeyCode, len(keyNames))
	for code, name := range keyNames {
		m[name] = code
	}
	return m
}()

func (k KeyCode) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KEY_%d", uint16(k))
}

// DecodeKeyCode maps a raw evdev code to a known KeyCode. Unknown codes
// report false so callers can drop them.
func DecodeKeyCode(raw uint16) (KeyCode, bool) {
	k := KeyCode(raw)
	_, ok := keyNames[k]
	return k, ok
}

// ParseKeyCode accepts "KEY_F9", "F9" or "f9".
func ParseKeyCode(name string) (KeyCode, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return 0, fmt.Errorf("empty key name")
	}
	if !strings.HasPrefix(n, "KEY_") {
		n = "KEY_" + n
	}
	if code, ok := keysByName[n]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}
