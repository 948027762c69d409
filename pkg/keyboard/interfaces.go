package keyboard

import (
	"context"

	"codeberg.org/miketth/vrboard/pkg/hid"
	"codeberg.org/miketth/vrboard/pkg/keymap"
)

type IMESource interface {
	SchemeName(ctx context.Context) (string, error)
}

type SystemSource interface {
	Keymap(ctx context.Context, wayland bool) (keymap.Keymap, error)
}

// LayoutValidator reports whether the xkb registry knows a layout/variant pair.
type LayoutValidator interface {
	HasLayout(layout, variant string) bool
}

type Router interface {
	SendKey(vk hid.VirtualKey, pressed bool)
	SetModifiers(mods hid.KeyModifier)
	KeymapChanged(km keymap.Keymap)
}

type Clipboard interface {
	SetPrimary(text string) error
}

type Feedback interface {
	Play(sample string)
}

// Host is the overlay runtime owning the keyboard window.
type Host interface {
	KeyboardChanged()
}

type Process interface {
	Exited() bool
}

type Spawner interface {
	Spawn(program string, args []string) (Process, error)
}

type Renderer interface {
	RenderFrame(frame Frame) error
}

type KeymapStore interface {
	GetActiveKeymap(session string) (keymap.Keymap, bool, error)
	SetActiveKeymap(session string, km keymap.Keymap) error
}
