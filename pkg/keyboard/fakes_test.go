package keyboard

import (
	"context"
	"testing"
	"time"

	"codeberg.org/miketth/vrboard/pkg/hid"
	"codeberg.org/miketth/vrboard/pkg/keymap"
	"codeberg.org/miketth/vrboard/pkg/layout"
	"codeberg.org/miketth/vrboard/pkg/swipe"
	"go.uber.org/zap/zaptest"
)

type routed struct {
	key     bool
	vk      hid.VirtualKey
	pressed bool
	mods    hid.KeyModifier
}

func keyEvent(vk hid.VirtualKey, pressed bool) routed {
	return routed{key: true, vk: vk, pressed: pressed}
}

func modsEvent(mods hid.KeyModifier) routed {
	return routed{mods: mods}
}

type fakeRouter struct {
	events  []routed
	keymaps []keymap.Keymap
}

func (r *fakeRouter) SendKey(vk hid.VirtualKey, pressed bool) {
	r.events = append(r.events, keyEvent(vk, pressed))
}

func (r *fakeRouter) SetModifiers(mods hid.KeyModifier) {
	r.events = append(r.events, modsEvent(mods))
}

func (r *fakeRouter) KeymapChanged(km keymap.Keymap) {
	r.keymaps = append(r.keymaps, km)
}

type fakeClipboard struct {
	texts []string
	err   error
}

func (c *fakeClipboard) SetPrimary(text string) error {
	if c.err != nil {
		return c.err
	}
	c.texts = append(c.texts, text)
	return nil
}

type fakeFeedback struct {
	played []string
}

func (f *fakeFeedback) Play(sample string) {
	f.played = append(f.played, sample)
}

type fakeProcess struct {
	program string
	exited  bool
}

func (p *fakeProcess) Exited() bool { return p.exited }

type fakeSpawner struct {
	spawned []*fakeProcess
	err     error
}

func (s *fakeSpawner) Spawn(program string, args []string) (Process, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := &fakeProcess{program: program}
	s.spawned = append(s.spawned, p)
	return p, nil
}

type predictCall struct {
	path    string
	context string
	topN    int
}

type fakeEngine struct {
	calls       []predictCall
	predictions []swipe.Prediction
}

func (e *fakeEngine) Predict(path string, context string, topN int) []swipe.Prediction {
	e.calls = append(e.calls, predictCall{path: path, context: context, topN: topN})
	return e.predictions
}

type fakeHost struct {
	changed int
}

func (h *fakeHost) KeyboardChanged() { h.changed++ }

type fakeRenderer struct {
	frames [][]KeyView
	clocks []string
}

func (r *fakeRenderer) RenderFrame(frame Frame) error {
	r.frames = append(r.frames, frame.Keys)
	r.clocks = append(r.clocks, frame.Clock)
	return nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

type fakeIME struct {
	scheme string
	err    error
}

func (f *fakeIME) SchemeName(context.Context) (string, error) {
	return f.scheme, f.err
}

type fakeSystem struct {
	km      keymap.Keymap
	err     error
	calls   int
	wayland []bool
}

func (f *fakeSystem) Keymap(_ context.Context, wayland bool) (keymap.Keymap, error) {
	f.calls++
	f.wayland = append(f.wayland, wayland)
	return f.km, f.err
}

type fakeValidator map[string]bool

func (v fakeValidator) HasLayout(layout, variant string) bool {
	return v[layout+"-"+variant]
}

type fakeStore struct {
	keymaps map[string]keymap.Keymap
	err     error
}

func (s *fakeStore) GetActiveKeymap(session string) (keymap.Keymap, bool, error) {
	if s.err != nil {
		return keymap.Keymap{}, false, s.err
	}
	km, ok := s.keymaps[session]
	return km, ok, nil
}

func (s *fakeStore) SetActiveKeymap(session string, km keymap.Keymap) error {
	if s.keymaps == nil {
		s.keymaps = make(map[string]keymap.Keymap)
	}
	s.keymaps[session] = km
	return nil
}

type testEnv struct {
	*Env
	clock    *fakeClock
	router   *fakeRouter
	clip     *fakeClipboard
	feedback *fakeFeedback
	spawner  *fakeSpawner
}

func newTestEnv(t *testing.T) *testEnv {
	te := &testEnv{
		clock:    &fakeClock{t: time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC)},
		router:   &fakeRouter{},
		clip:     &fakeClipboard{},
		feedback: &fakeFeedback{},
		spawner:  &fakeSpawner{},
	}
	te.Env = &Env{
		Router:    te.router,
		Clipboard: te.clip,
		Feedback:  te.feedback,
		Spawner:   te.spawner,
		Log:       zaptest.NewLogger(t).Sugar(),
		Now:       te.clock.Now,
	}
	return te
}

func letterKey(t *testing.T, label string) *KeyState {
	vk, ok := layout.VirtualKey(label)
	if !ok {
		t.Fatalf("no key for %q", label)
	}
	return &KeyState{
		Button:  &KeyButton{VK: vk},
		Label:   []string{label},
		CapType: layout.Letter,
	}
}

func defaultLayout(t *testing.T) *layout.Layout {
	l, err := layout.Load("")
	if err != nil {
		t.Fatalf("load layout: %v", err)
	}
	return l
}
