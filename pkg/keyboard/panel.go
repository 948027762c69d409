package keyboard

import (
	"fmt"
	"image/color"
	"sort"
	"time"

	"codeberg.org/miketth/vrboard/pkg/keymap"
	"codeberg.org/miketth/vrboard/pkg/layout"
)

type ShouldRender int

const (
	ShouldRenderUnable ShouldRender = iota
	ShouldRenderCan
	ShouldRenderShould
)

// PointerHit is a pointer position in overlay coordinates, 0..1 on both axes.
type PointerHit struct {
	Pointer int
	U       float32
	V       float32
	Button  MouseButton
}

// Transform maps overlay coordinates to layout units.
type Transform struct {
	ScaleX float32
	ScaleY float32
}

var (
	colorKey     = color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}
	colorSpecial = color.RGBA{R: 0x31, G: 0x32, B: 0x44, A: 0xff}
	colorActive  = color.RGBA{R: 0x89, G: 0xb4, B: 0xfa, A: 0xff}
	colorBorder  = color.RGBA{R: 0x45, G: 0x47, B: 0x5a, A: 0xff}
	colorHover   = color.RGBA{R: 0xcd, G: 0xd6, B: 0xf4, A: 0xff}
)

type grab struct {
	key   *KeyState
	swipe bool
}

// Panel is the interactive keyboard for one layout.
type Panel struct {
	layout *layout.Layout
	state  *State
	keys   []*KeyState

	grabs   map[int]*grab
	hovered map[int]*KeyState

	drawnClock string

	initialized bool
	dirty       bool
	paused      bool
}

func NewPanel(l *layout.Layout, km *keymap.Keymap, state *State) (*Panel, error) {
	p := &Panel{
		layout:  l,
		state:   state,
		grabs:   make(map[int]*grab),
		hovered: make(map[int]*KeyState),
	}

	hasAltGr := km != nil && km.HasAltGr()

	var y float32
	for row := range l.MainLayout {
		var x float32
		for col := range l.MainLayout[row] {
			w := l.Width(col, row)
			if l.Kind(col, row) != layout.SlotSpacer {
				key, err := buildKey(l, km, hasAltGr, col, row)
				if err != nil {
					return nil, err
				}
				key.X, key.Y, key.W, key.H = x, y, w, l.RowHeight
				p.keys = append(p.keys, key)
			}
			x += w
		}
		y += l.RowHeight
	}

	return p, nil
}

func buildKey(l *layout.Layout, km *keymap.Keymap, hasAltGr bool, col, row int) (*KeyState, error) {
	name := l.Name(col, row)
	data, _ := l.GetKeyData(km, hasAltGr, col, row)

	key := &KeyState{
		Label:           data.Label,
		CapType:         data.CapType,
		Color:           colorKey,
		Color2:          colorActive,
		BaseBorderColor: colorBorder,
		CurBorderColor:  colorBorder,
		Border:          2,
	}
	if data.CapType == layout.Special {
		key.Color = colorSpecial
	}

	switch l.Kind(col, row) {
	case layout.SlotKey:
		vk, ok := layout.VirtualKey(name)
		if !ok {
			return nil, fmt.Errorf("unknown key %q at row %d column %d: %w", name, row, col, layout.ErrInvalidLayout)
		}
		key.Button = &KeyButton{VK: vk}

	case layout.SlotModifier:
		m, _ := layout.ModifierFor(name)
		key.Button = &ModifierButton{Modifier: m}

	case layout.SlotMacro:
		verbs, err := l.Macro(name)
		if err != nil {
			return nil, fmt.Errorf("macro %q: %w", name, err)
		}
		key.Button = &MacroButton{Verbs: verbs}

	case layout.SlotExec:
		cmd := l.ExecCommands[name]
		exec := &ExecButton{Program: cmd.Press[0], Args: cmd.Press[1:]}
		if len(cmd.Release) > 0 {
			exec.ReleaseProgram = cmd.Release[0]
			exec.ReleaseArgs = cmd.Release[1:]
		}
		key.Button = exec

	default:
		return nil, fmt.Errorf("slot %q at row %d column %d is not a key", name, row, col)
	}

	return key, nil
}

func (p *Panel) State() *State {
	return p.state
}

func (p *Panel) Keys() []*KeyState {
	return p.keys
}

func (p *Panel) Initialized() bool {
	return p.initialized
}

func (p *Panel) Init() error {
	if len(p.keys) == 0 {
		return fmt.Errorf("panel has no keys: %w", layout.ErrInvalidLayout)
	}
	p.initialized = true
	p.dirty = true
	return nil
}

func (p *Panel) MarkDirty() {
	p.dirty = true
}

func (p *Panel) ShouldRender() ShouldRender {
	if !p.initialized {
		return ShouldRenderUnable
	}
	if p.dirty || p.ClockText(p.state.env.now()) != p.drawnClock {
		return ShouldRenderShould
	}
	for _, key := range p.keys {
		if p.highlighted(key) != key.Drawn {
			return ShouldRenderShould
		}
	}
	return ShouldRenderCan
}

func (p *Panel) Render(r Renderer) error {
	views := make([]KeyView, 0, len(p.keys))
	for _, key := range p.keys {
		key.Drawn = p.highlighted(key)
		key.CurBorderColor = key.BaseBorderColor
		if p.isHovered(key) {
			key.CurBorderColor = colorHover
		}

		fill := key.Color
		if key.Drawn {
			fill = key.Color2
		}

		views = append(views, KeyView{
			Label:   key.Label,
			X:       key.X,
			Y:       key.Y,
			W:       key.W,
			H:       key.H,
			Color:   hexColor(fill),
			Border:  hexColor(key.CurBorderColor),
			Pressed: key.Drawn,
		})
	}

	clock := p.ClockText(p.state.env.now())
	if err := r.RenderFrame(Frame{Keys: views, Clock: clock}); err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	p.drawnClock = clock
	p.dirty = false
	return nil
}

// highlighted reports whether key should be drawn in its active color.
func (p *Panel) highlighted(key *KeyState) bool {
	switch b := key.Button.(type) {
	case *KeyButton:
		for _, g := range p.grabs {
			if g.key == key {
				return true
			}
		}
		return b.pressed
	case *ModifierButton:
		return p.state.Modifiers&b.Modifier != 0
	case *MacroButton, *ExecButton:
		for _, g := range p.grabs {
			if g.key == key {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("unhandled key button %T", b))
	}
}

func (p *Panel) isHovered(key *KeyState) bool {
	for _, k := range p.hovered {
		if k == key {
			return true
		}
	}
	return false
}

// Pause lets go of every held key so nothing stays down while hidden.
func (p *Panel) Pause() {
	p.paused = true
	p.ReleaseAll()
	clear(p.hovered)
}

// ReleaseAll ends every grab as if its pointer had been lifted. A swipe in
// progress is dropped without typing anything.
func (p *Panel) ReleaseAll() {
	pointers := make([]int, 0, len(p.grabs))
	for pointer := range p.grabs {
		pointers = append(pointers, pointer)
	}
	sort.Ints(pointers)

	for _, pointer := range pointers {
		g := p.grabs[pointer]
		delete(p.grabs, pointer)
		if g.swipe {
			p.state.abortSwipe()
			continue
		}
		p.state.Release(g.key)
	}
	p.dirty = true
}

func (p *Panel) Resume() {
	p.paused = false
	p.dirty = true
}

func (p *Panel) OnPointer(hit PointerHit, pressed bool) {
	if p.paused {
		return
	}

	if pressed {
		key := p.keyAt(hit)
		if key == nil {
			return
		}
		p.grabs[hit.Pointer] = &grab{key: key, swipe: p.state.swipeKey(key)}
		p.state.Press(key, hit.Button)
		p.dirty = true
		return
	}

	g, ok := p.grabs[hit.Pointer]
	if !ok {
		return
	}
	delete(p.grabs, hit.Pointer)
	p.state.Release(g.key)
	p.dirty = true
}

// OnHover tracks the key under a pointer and extends a held swipe onto it.
// It reports whether the pointer is over a key.
func (p *Panel) OnHover(hit PointerHit) bool {
	if p.paused {
		return false
	}

	key := p.keyAt(hit)

	if g, ok := p.grabs[hit.Pointer]; ok && g.swipe && key != nil && key != g.key {
		if p.state.Enter(key) {
			g.key = key
			p.dirty = true
		}
	}

	if p.hovered[hit.Pointer] != key {
		if key == nil {
			delete(p.hovered, hit.Pointer)
		} else {
			p.hovered[hit.Pointer] = key
		}
		p.dirty = true
	}

	return key != nil
}

// OnScroll is accepted but has no effect; keys do not scroll.
func (p *Panel) OnScroll(hit PointerHit, delta float32) {}

// OnLeft releases whatever the pointer held when it left the panel.
func (p *Panel) OnLeft(pointer int) {
	if g, ok := p.grabs[pointer]; ok {
		delete(p.grabs, pointer)
		p.state.Release(g.key)
	}
	delete(p.hovered, pointer)
	p.dirty = true
}

func (p *Panel) InteractionTransform() Transform {
	return Transform{ScaleX: p.layout.RowSize, ScaleY: p.layout.Height()}
}

// ClockText formats t for the panel's clock, honouring the 12 hour setting.
func (p *Panel) ClockText(t time.Time) string {
	if p.state.Clock12h {
		return t.Format("3:04 PM")
	}
	return t.Format("15:04")
}

func (p *Panel) keyAt(hit PointerHit) *KeyState {
	tr := p.InteractionTransform()
	x, y := hit.U*tr.ScaleX, hit.V*tr.ScaleY
	for _, key := range p.keys {
		if key.contains(x, y) {
			return key
		}
	}
	return nil
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
