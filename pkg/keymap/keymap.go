package keymap

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/holoplot/go-evdev"
)

var ErrInvalidLayout = errors.New("invalid layout")

var validName = regexp.MustCompile(`^[a-zA-Z0-9_()+-]*$`)

// Keymap identifies an xkb layout and variant, e.g. "de" + "nodeadkeys".
type Keymap struct {
	Layout  string
	Variant string
}

func FromLayoutVariant(layout, variant string) (Keymap, error) {
	if layout == "" {
		return Keymap{}, fmt.Errorf("empty layout name: %w", ErrInvalidLayout)
	}
	if !validName.MatchString(layout) || !validName.MatchString(variant) {
		return Keymap{}, fmt.Errorf("layout %q variant %q: %w", layout, variant, ErrInvalidLayout)
	}

	return Keymap{Layout: layout, Variant: variant}, nil
}

// Name returns the layout name, "" when the keymap has none.
func (k Keymap) Name() string {
	return k.Layout
}

func (k Keymap) String() string {
	if k.Variant == "" {
		return k.Layout
	}
	return k.Layout + "-" + k.Variant
}

// HasAltGr reports whether any key of the layout carries a third shift level.
func (k Keymap) HasAltGr() bool {
	for _, lv := range symbolsFor(k.Layout) {
		if lv[LevelAltGr] != "" {
			return true
		}
	}
	return false
}

// Label returns the symbol produced by code at the given shift level.
// A nil keymap resolves against the base "us" table.
func (k *Keymap) Label(code evdev.EvCode, level Level) string {
	layout := ""
	if k != nil {
		layout = k.Layout
	}

	lv, ok := symbolsFor(layout)[code]
	if !ok {
		return ""
	}
	return lv[level]
}
