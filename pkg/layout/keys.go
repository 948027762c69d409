package layout

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"codeberg.org/miketth/vrboard/pkg/hid"
	"codeberg.org/miketth/vrboard/pkg/keymap"
	"github.com/holoplot/go-evdev"
)

type KeyCapType int

const (
	Special KeyCapType = iota
	Letter
	LetterAltGr
	Symbol
	SymbolAltGr
)

func (t KeyCapType) String() string {
	switch t {
	case Letter:
		return "letter"
	case LetterAltGr:
		return "letter-altgr"
	case Symbol:
		return "symbol"
	case SymbolAltGr:
		return "symbol-altgr"
	}
	return "special"
}

type SlotKind int

const (
	SlotSpacer SlotKind = iota
	SlotKey
	SlotModifier
	SlotMacro
	SlotExec
)

// KeyData is the resolved face of a key slot.
type KeyData struct {
	Label   []string
	CapType KeyCapType
}

type MacroVerb struct {
	Key   hid.VirtualKey
	Press bool
}

var keyAliases = map[string]string{
	"ESCAPE": "KEY_ESC",
	"RETURN": "KEY_ENTER",
	"INTL":   "KEY_102ND",
	"DEL":    "KEY_DELETE",
	"PRINT":  "KEY_SYSRQ",

	// modifier slot names, so macros can use them too
	"LSHIFT": "KEY_LEFTSHIFT",
	"RSHIFT": "KEY_RIGHTSHIFT",
	"LCTRL":  "KEY_LEFTCTRL",
	"RCTRL":  "KEY_RIGHTCTRL",
	"LALT":   "KEY_LEFTALT",
	"RALT":   "KEY_RIGHTALT",
	"LSUPER": "KEY_LEFTMETA",
	"RSUPER": "KEY_RIGHTMETA",
	"META":   "KEY_LEFTMETA",
}

var modifierSlots = map[string]hid.KeyModifier{
	"LShift":   hid.Shift,
	"RShift":   hid.Shift,
	"LCtrl":    hid.Ctrl,
	"RCtrl":    hid.Ctrl,
	"LAlt":     hid.Alt,
	"RAlt":     hid.Level3,
	"LSuper":   hid.Super,
	"RSuper":   hid.Super,
	"Meta":     hid.Meta,
	"CapsLock": hid.CapsLock,
	"NumLock":  hid.NumLock,
}

func isSpacer(name string) bool {
	return name == "" || strings.HasPrefix(name, "~")
}

// VirtualKey resolves a slot name such as "Q", "Return" or "F1" to its key code.
func VirtualKey(name string) (hid.VirtualKey, bool) {
	upper := strings.ToUpper(name)
	if alias, ok := keyAliases[upper]; ok {
		upper = alias
	} else {
		upper = "KEY_" + upper
	}

	code, ok := evdev.KEYFromString[upper]
	return code, ok
}

func ModifierFor(name string) (hid.KeyModifier, bool) {
	m, ok := modifierSlots[name]
	return m, ok
}

func (l *Layout) Name(col, row int) string {
	return l.MainLayout[row][col]
}

func (l *Layout) Kind(col, row int) SlotKind {
	name := l.Name(col, row)
	switch {
	case isSpacer(name):
		return SlotSpacer
	case l.Macros[name] != nil:
		return SlotMacro
	}

	if _, ok := l.ExecCommands[name]; ok {
		return SlotExec
	}
	if _, ok := modifierSlots[name]; ok {
		return SlotModifier
	}
	return SlotKey
}

func (l *Layout) Macro(name string) ([]MacroVerb, error) {
	return parseMacro(l.Macros[name])
}

func parseMacro(verbs []string) ([]MacroVerb, error) {
	out := make([]MacroVerb, 0, len(verbs))
	for _, verb := range verbs {
		fields := strings.Fields(verb)
		if len(fields) != 2 {
			return nil, fmt.Errorf("verb %q: %w", verb, ErrInvalidLayout)
		}

		vk, ok := VirtualKey(fields[0])
		if !ok {
			return nil, fmt.Errorf("unknown key %q: %w", fields[0], ErrInvalidLayout)
		}

		switch strings.ToUpper(fields[1]) {
		case "DOWN":
			out = append(out, MacroVerb{Key: vk, Press: true})
		case "UP":
			out = append(out, MacroVerb{Key: vk, Press: false})
		default:
			return nil, fmt.Errorf("verb %q: expected DOWN or UP: %w", verb, ErrInvalidLayout)
		}
	}
	return out, nil
}

// GetKeyData resolves the label and cap type of a slot for the given keymap.
// Spacers return false.
func (l *Layout) GetKeyData(km *keymap.Keymap, hasAltGr bool, col, row int) (KeyData, bool) {
	name := l.Name(col, row)
	if isSpacer(name) {
		return KeyData{}, false
	}

	if labels, ok := l.Labels[name]; ok {
		return KeyData{Label: labels, CapType: Special}, true
	}

	if l.Kind(col, row) != SlotKey {
		return KeyData{Label: []string{name}, CapType: Special}, true
	}

	vk, ok := VirtualKey(name)
	if !ok {
		return KeyData{Label: []string{name}, CapType: Special}, true
	}

	plain := km.Label(vk, keymap.LevelPlain)
	if plain == "" {
		return KeyData{Label: []string{name}, CapType: Special}, true
	}

	var altgr string
	if hasAltGr {
		altgr = km.Label(vk, keymap.LevelAltGr)
	}

	if r, size := utf8.DecodeRuneInString(plain); size == len(plain) && unicode.IsLetter(r) {
		if altgr != "" {
			return KeyData{Label: []string{strings.ToUpper(plain), altgr}, CapType: LetterAltGr}, true
		}
		return KeyData{Label: []string{strings.ToUpper(plain)}, CapType: Letter}, true
	}

	labels := []string{plain}
	if shift := km.Label(vk, keymap.LevelShift); shift != "" {
		labels = append(labels, shift)
	}
	if altgr != "" {
		return KeyData{Label: append(labels, altgr), CapType: SymbolAltGr}, true
	}
	return KeyData{Label: labels, CapType: Symbol}, true
}
