package keyboard

import (
	"image/color"

	"codeberg.org/miketth/vrboard/pkg/hid"
	"codeberg.org/miketth/vrboard/pkg/layout"
)

// KeyButtonData is implemented by exactly KeyButton, ModifierButton,
// MacroButton and ExecButton.
type KeyButtonData interface {
	isKeyButtonData()
}

type KeyButton struct {
	VK      hid.VirtualKey
	pressed bool
}

type ModifierButton struct {
	Modifier hid.KeyModifier
	sticky   bool
}

type MacroButton struct {
	Verbs []layout.MacroVerb
}

type ExecButton struct {
	Program        string
	Args           []string
	ReleaseProgram string
	ReleaseArgs    []string
}

func (*KeyButton) isKeyButtonData()      {}
func (*ModifierButton) isKeyButtonData() {}
func (*MacroButton) isKeyButtonData()    {}
func (*ExecButton) isKeyButtonData()     {}

func (b *KeyButton) Pressed() bool     { return b.pressed }
func (b *ModifierButton) Sticky() bool { return b.sticky }

// KeyState is one rendered key: its behaviour, face and draw flags.
type KeyState struct {
	Button  KeyButtonData
	Label   []string
	CapType layout.KeyCapType

	Color           color.RGBA
	Color2          color.RGBA
	BaseBorderColor color.RGBA
	CurBorderColor  color.RGBA
	Border          float32

	// Drawn marks keys that should render highlighted, e.g. held modifiers.
	Drawn bool

	X, Y, W, H float32
}

func (k *KeyState) label() string {
	if len(k.Label) == 0 {
		return ""
	}
	return k.Label[0]
}

func (k *KeyState) contains(x, y float32) bool {
	return x >= k.X && x < k.X+k.W && y >= k.Y && y < k.Y+k.H
}

// KeyView is what a Renderer draws for one key.
type KeyView struct {
	Label   []string `json:"label"`
	X       float32  `json:"x"`
	Y       float32  `json:"y"`
	W       float32  `json:"w"`
	H       float32  `json:"h"`
	Color   string   `json:"color"`
	Border  string   `json:"border"`
	Pressed bool     `json:"pressed"`
}

// Frame is one full redraw of a panel.
type Frame struct {
	Keys  []KeyView `json:"keys"`
	Clock string    `json:"clock"`
}
