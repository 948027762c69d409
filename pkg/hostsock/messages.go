package hostsock

import (
	"codeberg.org/miketth/vrboard/pkg/keyboard"
)

// Event is one line sent by the host, e.g.
//
//	{"type":"pointer","pointer":0,"u":0.48,"v":0.58,"button":"left","pressed":true}
type Event struct {
	Type    string  `json:"type"`
	Pointer int     `json:"pointer"`
	U       float32 `json:"u"`
	V       float32 `json:"v"`
	Button  string  `json:"button,omitempty"`
	Pressed bool    `json:"pressed,omitempty"`
	Delta   float32 `json:"delta,omitempty"`
}

type outMessage struct {
	Type  string             `json:"type"`
	Keys  []keyboard.KeyView `json:"keys,omitempty"`
	Clock string             `json:"clock,omitempty"`
}

// Target receives decoded host events.
type Target interface {
	OnPointer(hit keyboard.PointerHit, pressed bool)
	OnHover(hit keyboard.PointerHit) bool
	OnScroll(hit keyboard.PointerHit, delta float32)
	OnLeft(pointer int)
	Pause()
	Resume()
}

func (e Event) hit() keyboard.PointerHit {
	button := keyboard.ButtonLeft
	switch e.Button {
	case "right":
		button = keyboard.ButtonRight
	case "middle":
		button = keyboard.ButtonMiddle
	}

	return keyboard.PointerHit{Pointer: e.Pointer, U: e.U, V: e.V, Button: button}
}

// Apply hands the event to t. It reports false for unknown event types.
func (e Event) Apply(t Target) bool {
	switch e.Type {
	case "pointer":
		t.OnPointer(e.hit(), e.Pressed)
	case "hover":
		t.OnHover(e.hit())
	case "scroll":
		t.OnScroll(e.hit(), e.Delta)
	case "left":
		t.OnLeft(e.Pointer)
	case "pause":
		t.Pause()
	case "resume":
		t.Resume()
	default:
		return false
	}
	return true
}
