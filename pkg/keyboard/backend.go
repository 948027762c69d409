package keyboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/miketth/vrboard/pkg/hid"
	"codeberg.org/miketth/vrboard/pkg/keymap"
	"codeberg.org/miketth/vrboard/pkg/layout"
	"codeberg.org/miketth/vrboard/pkg/slotmap"
	"codeberg.org/miketth/vrboard/pkg/swipe"
	"go.uber.org/zap"
)

var ErrNoDefaultKeymap = errors.New("no default_keymap set")

type Options struct {
	Layout       *layout.Layout
	Resolver     *Resolver
	SwipeFactory swipe.Factory
	Env          *Env
	Host         Host
	Signal       *ChangeSignal

	// Store remembers the last applied keymap per session; may be nil.
	Store   KeymapStore
	Session string

	AltModifier   hid.KeyModifier
	Clock12h      bool
	DefaultKeymap string

	Log *zap.SugaredLogger
}

// Backend owns one panel per layout name and routes host calls to the active one.
type Backend struct {
	panels    slotmap.SlotMap[*Panel]
	layoutIDs map[string]slotmap.Key
	active    slotmap.Key
	defaults  PersistedState

	layout   *layout.Layout
	resolver *Resolver
	factory  swipe.Factory
	env      *Env
	host     Host
	signal   *ChangeSignal
	store    KeymapStore
	session  string
	log      *zap.SugaredLogger
}

func NewBackend(ctx context.Context, opts Options) (*Backend, error) {
	b := &Backend{
		layoutIDs: make(map[string]slotmap.Key),
		defaults: PersistedState{
			AltModifier: opts.AltModifier,
			Clock12h:    opts.Clock12h,
		},
		layout:   opts.Layout,
		resolver: opts.Resolver,
		factory:  opts.SwipeFactory,
		env:      opts.Env,
		host:     opts.Host,
		signal:   opts.Signal,
		store:    opts.Store,
		session:  opts.Session,
		log:      opts.Log,
	}

	var maybeKeymap *keymap.Keymap
	km, err := b.initialKeymap(ctx, opts.DefaultKeymap)
	if err != nil {
		b.log.Warnw("no keymap available, using base labels", "error", err)
	} else {
		maybeKeymap = &km
		b.env.Router.KeymapChanged(km)
	}

	if !b.layout.AutoLabelsEnabled() {
		maybeKeymap = nil
	}

	b.active, err = b.addKeymap(maybeKeymap, b.defaults)
	if err != nil {
		return nil, fmt.Errorf("create keyboard panel: %w", err)
	}

	return b, nil
}

func (b *Backend) initialKeymap(ctx context.Context, defaultKeymap string) (keymap.Keymap, error) {
	km, err := b.resolver.Resolve(ctx)
	if err == nil {
		b.remember(km)
		return km, nil
	}
	b.log.Warnw("resolve keymap", "error", err)

	if b.store != nil {
		stored, ok, err := b.store.GetActiveKeymap(b.session)
		switch {
		case err != nil:
			b.log.Warnw("load last keymap", "error", err)
		case ok:
			b.log.Infow("using last known keymap", "keymap", stored.String())
			return stored, nil
		}
	}

	if defaultKeymap == "" {
		return keymap.Keymap{}, ErrNoDefaultKeymap
	}

	layoutName, variant, _ := strings.Cut(defaultKeymap, "-")
	km, err = keymap.FromLayoutVariant(layoutName, variant)
	if err != nil {
		return keymap.Keymap{}, fmt.Errorf("invalid value for default_keymap: %w", err)
	}
	return km, nil
}

// addKeymap builds a panel for km starting from persisted and registers it
// under the layout name.
func (b *Backend) addKeymap(km *keymap.Keymap, persisted PersistedState) (slotmap.Key, error) {
	state := NewState(persisted, b.env, newSwipeEngine(b.factory, km, b.layout, b.log))

	panel, err := NewPanel(b.layout, km, state)
	if err != nil {
		return slotmap.Key{}, err
	}

	id := b.panels.Insert(panel)
	if km != nil && km.Name() != "" {
		b.layoutIDs[km.Name()] = id
	} else {
		b.log.Error("xkb keymap without a layout")
	}

	return id, nil
}

// SwitchKeymap makes the panel for km active, building it on first use.
// It reports whether the active panel changed.
func (b *Backend) SwitchKeymap(km keymap.Keymap) (bool, error) {
	if !b.layout.AutoLabelsEnabled() {
		return false, nil
	}

	name := km.Name()
	if name == "" {
		b.log.Error("xkb keymap without a layout")
		return false, nil
	}

	id, found := b.layoutIDs[name]
	if found && id == b.active {
		return false, nil
	}

	// keys held on the outgoing panel would never see their release
	b.panel().ReleaseAll()
	persisted := b.panel().State().Detach()

	if found {
		panel, _ := b.panels.Get(id)
		panel.state = NewState(persisted, b.env, newSwipeEngine(b.factory, &km, b.layout, b.log))
	} else {
		var err error
		id, err = b.addKeymap(&km, persisted)
		if err != nil {
			b.panel().State().PersistedState = persisted
			return false, fmt.Errorf("add keymap %s: %w", km, err)
		}
	}

	b.active = id
	b.log.Infow("switched keyboard layout", "keymap", km.String(), "panels", b.panels.Len())
	b.host.KeyboardChanged()
	return true, nil
}

func (b *Backend) autoSwitch(ctx context.Context) (bool, error) {
	km, err := b.resolver.Resolve(ctx)
	if err != nil {
		return false, err
	}

	b.env.Router.KeymapChanged(km)
	b.remember(km)
	return b.SwitchKeymap(km)
}

func (b *Backend) remember(km keymap.Keymap) {
	if b.store == nil {
		return
	}
	if err := b.store.SetActiveKeymap(b.session, km); err != nil {
		b.log.Warnw("store keymap", "keymap", km.String(), "error", err)
	}
}

func (b *Backend) panel() *Panel {
	panel, ok := b.panels.Get(b.active)
	if !ok {
		panic("active keyboard layout has no panel")
	}
	return panel
}

// ActivePanel returns the panel currently receiving input.
func (b *Backend) ActivePanel() *Panel {
	return b.panel()
}

func (b *Backend) Init() error {
	return b.panel().Init()
}

// ShouldRender applies pending layout changes, then asks the active panel.
func (b *Backend) ShouldRender(ctx context.Context) (ShouldRender, error) {
	for b.signal.Take() {
		switched, err := b.autoSwitch(ctx)
		if err != nil {
			b.log.Warnw("switch keymap", "error", err)
		}
		if !switched {
			continue
		}

		panel := b.panel()
		if !panel.Initialized() {
			if err := panel.Init(); err != nil {
				return ShouldRenderUnable, fmt.Errorf("init panel: %w", err)
			}
		}
		panel.MarkDirty()

		if panel.ShouldRender() == ShouldRenderUnable {
			return ShouldRenderUnable, nil
		}
		return ShouldRenderShould, nil
	}

	return b.panel().ShouldRender(), nil
}

func (b *Backend) Render(r Renderer) error {
	return b.panel().Render(r)
}

// Pause releases held keys and drops all modifiers so nothing stays stuck while hidden.
func (b *Backend) Pause() {
	panel := b.panel()
	panel.Pause()
	panel.State().ClearModifiers()
}

func (b *Backend) Resume() {
	b.panel().Resume()
}

func (b *Backend) OnPointer(hit PointerHit, pressed bool) {
	panel := b.panel()
	panel.OnPointer(hit, pressed)
	panel.MarkDirty()
}

func (b *Backend) OnHover(hit PointerHit) bool {
	return b.panel().OnHover(hit)
}

func (b *Backend) OnScroll(hit PointerHit, delta float32) {
	b.panel().OnScroll(hit, delta)
}

func (b *Backend) OnLeft(pointer int) {
	b.panel().OnLeft(pointer)
}

func (b *Backend) InteractionTransform() Transform {
	return b.panel().InteractionTransform()
}
