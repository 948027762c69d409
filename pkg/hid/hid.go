package hid

import (
	"strings"

	"github.com/holoplot/go-evdev"
)

type KeyModifier uint8

// Bit layout follows the X11 modifier masks.
const (
	Shift    KeyModifier = 0x01
	CapsLock KeyModifier = 0x02
	Ctrl     KeyModifier = 0x04
	Alt      KeyModifier = 0x08
	NumLock  KeyModifier = 0x10
	Level3   KeyModifier = 0x20
	Super    KeyModifier = 0x40
	Meta     KeyModifier = 0x80
)

// AutoReleaseMods are dropped from the held mask after every ordinary key release.
var AutoReleaseMods = [...]KeyModifier{Shift, Ctrl, Alt, Super, Meta}

type VirtualKey = evdev.EvCode

const KeyInsert VirtualKey = evdev.KEY_INSERT

var modifierNames = map[string]KeyModifier{
	"shift": Shift,
	"ctrl":  Ctrl,
	"alt":   Alt,
	"super": Super,
	"meta":  Meta,

	"level3": Level3,
	"altgr":  Level3,
}

// ParseAltModifier maps the alt_modifier config value to a modifier bit.
// Unknown values and "none" yield 0.
func ParseAltModifier(name string) KeyModifier {
	return modifierNames[strings.ToLower(strings.TrimSpace(name))]
}

func (m KeyModifier) String() string {
	if m == 0 {
		return "none"
	}

	names := []struct {
		bit  KeyModifier
		name string
	}{
		{Shift, "shift"}, {CapsLock, "caps"}, {Ctrl, "ctrl"}, {Alt, "alt"},
		{NumLock, "num"}, {Level3, "level3"}, {Super, "super"}, {Meta, "meta"},
	}

	var parts []string
	for _, n := range names {
		if m&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}
