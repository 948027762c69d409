package keyboard

import (
	"errors"
	"testing"

	"codeberg.org/miketth/vrboard/pkg/hid"
	"codeberg.org/miketth/vrboard/pkg/layout"
	"codeberg.org/miketth/vrboard/pkg/swipe"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStickyModifier(t *testing.T) {
	te := newTestEnv(t)
	s := NewState(PersistedState{}, te.Env, nil)
	shift := &KeyState{Button: &ModifierButton{Modifier: hid.Shift}}

	s.Press(shift, ButtonLeft)
	assert.True(t, shift.Button.(*ModifierButton).Sticky())
	assert.Equal(t, hid.Shift, s.Modifiers)

	assert.False(t, s.Release(shift))
	assert.Equal(t, hid.Shift, s.Modifiers)

	s.Press(shift, ButtonLeft)
	assert.False(t, shift.Button.(*ModifierButton).Sticky())

	assert.True(t, s.Release(shift))
	assert.Equal(t, hid.KeyModifier(0), s.Modifiers)

	assert.Equal(t, []routed{
		modsEvent(hid.Shift),
		modsEvent(hid.Shift),
		modsEvent(0),
	}, te.router.events)
	assert.Len(t, te.feedback.played, 2)
}

func TestOrdinaryKeyReleaseDropsAutoReleaseMods(t *testing.T) {
	te := newTestEnv(t)
	all := hid.Shift | hid.Ctrl | hid.Alt | hid.Super | hid.Meta | hid.CapsLock | hid.Level3
	s := NewState(PersistedState{Modifiers: all}, te.Env, nil)
	key := &KeyState{Button: &KeyButton{VK: evdev.KEY_1}, Label: []string{"1"}, CapType: layout.Symbol}

	s.Press(key, ButtonLeft)
	assert.True(t, key.Button.(*KeyButton).Pressed())

	assert.True(t, s.Release(key))
	assert.False(t, key.Button.(*KeyButton).Pressed())
	assert.Equal(t, hid.CapsLock|hid.Level3, s.Modifiers)

	assert.Equal(t, []routed{
		modsEvent(all),
		keyEvent(evdev.KEY_1, true),
		keyEvent(evdev.KEY_1, false),
		modsEvent(hid.CapsLock | hid.Level3),
	}, te.router.events)
}

func TestPointerButtonModifiers(t *testing.T) {
	te := newTestEnv(t)
	s := NewState(PersistedState{AltModifier: hid.Ctrl}, te.Env, nil)
	key := &KeyState{Button: &KeyButton{VK: evdev.KEY_DOT}, Label: []string{"."}, CapType: layout.Symbol}

	s.Press(key, ButtonRight)
	assert.Equal(t, hid.Shift, s.Modifiers)
	s.Release(key)

	s.Press(key, ButtonMiddle)
	assert.Equal(t, hid.Ctrl, s.Modifiers)
	s.Release(key)
	assert.Equal(t, hid.KeyModifier(0), s.Modifiers)
}

func TestLettersWithoutEngineAreOrdinaryKeys(t *testing.T) {
	te := newTestEnv(t)
	s := NewState(PersistedState{}, te.Env, nil)
	h := letterKey(t, "H")

	s.Press(h, ButtonLeft)
	s.Release(h)

	assert.Equal(t, []routed{
		modsEvent(0),
		keyEvent(evdev.KEY_H, true),
		keyEvent(evdev.KEY_H, false),
		modsEvent(0),
	}, te.router.events)
}

func TestSwipeHey(t *testing.T) {
	te := newTestEnv(t)
	engine := &fakeEngine{predictions: []swipe.Prediction{{Word: "hey", Score: 0.9}, {Word: "hex", Score: 0.2}}}
	s := NewState(PersistedState{Modifiers: hid.CapsLock}, te.Env, engine)
	h, e, y := letterKey(t, "H"), letterKey(t, "E"), letterKey(t, "Y")

	s.Press(h, ButtonLeft)
	assert.Equal(t, "h", s.swipeInput)
	assert.False(t, s.swiping)

	assert.True(t, s.Enter(e))
	assert.True(t, s.swiping)
	assert.Equal(t, "he", s.swipeInput)

	assert.True(t, s.Enter(y))
	assert.Equal(t, "hey", s.swipeInput)

	assert.True(t, s.Release(y))
	require.Len(t, engine.calls, 1)
	assert.Equal(t, predictCall{path: "hey", context: "", topN: 5}, engine.calls[0])
	assert.Empty(t, s.swipeInput)
	assert.Equal(t, []string{"hey "}, te.clip.texts)
	assert.Equal(t, "hey", s.lastSwipedWord)

	assert.Equal(t, []routed{
		modsEvent(hid.Shift),
		keyEvent(hid.KeyInsert, true),
		keyEvent(hid.KeyInsert, false),
		modsEvent(hid.CapsLock),
	}, te.router.events)
	assert.Empty(t, te.feedback.played)

	// The next swipe gets the previous word as context.
	s.Press(h, ButtonLeft)
	s.Enter(e)
	s.Release(e)
	require.Len(t, engine.calls, 2)
	assert.Equal(t, "he", engine.calls[1].path)
	assert.Equal(t, "hey", engine.calls[1].context)
}

func TestSwipeTap(t *testing.T) {
	te := newTestEnv(t)
	engine := &fakeEngine{}
	s := NewState(PersistedState{}, te.Env, engine)
	h := letterKey(t, "H")

	s.Press(h, ButtonLeft)
	assert.Empty(t, te.router.events)

	assert.True(t, s.Release(h))
	assert.Empty(t, engine.calls)
	assert.Equal(t, []routed{
		keyEvent(evdev.KEY_H, true),
		keyEvent(evdev.KEY_H, false),
	}, te.router.events)
	assert.Equal(t, []string{SampleKeyClick}, te.feedback.played)
}

func TestSwipeReenteringFirstLetterDoesNotStartSwipe(t *testing.T) {
	te := newTestEnv(t)
	s := NewState(PersistedState{}, te.Env, &fakeEngine{})
	h := letterKey(t, "H")

	s.Press(h, ButtonLeft)
	s.Enter(h)
	assert.False(t, s.swiping)
	assert.Equal(t, "h", s.swipeInput)
}

func TestSwipeWithoutPredictions(t *testing.T) {
	te := newTestEnv(t)
	s := NewState(PersistedState{}, te.Env, &fakeEngine{})
	h, i := letterKey(t, "H"), letterKey(t, "I")

	s.Press(h, ButtonLeft)
	s.Enter(i)
	s.Release(i)

	assert.Empty(t, te.clip.texts)
	assert.Empty(t, te.router.events)
	assert.Empty(t, s.swipeInput)
}

func TestSwipeClipboardFailureSkipsPaste(t *testing.T) {
	te := newTestEnv(t)
	te.clip.err = errors.New("no wl-copy")
	s := NewState(PersistedState{}, te.Env, &fakeEngine{predictions: []swipe.Prediction{{Word: "hi"}}})
	h, i := letterKey(t, "H"), letterKey(t, "I")

	s.Press(h, ButtonLeft)
	s.Enter(i)
	s.Release(i)

	assert.Empty(t, te.router.events)
	assert.Empty(t, s.lastSwipedWord)
}

func TestEnterIgnoresNonLetters(t *testing.T) {
	te := newTestEnv(t)
	s := NewState(PersistedState{}, te.Env, &fakeEngine{})

	assert.False(t, s.Enter(&KeyState{Button: &ModifierButton{Modifier: hid.Ctrl}}))
	assert.False(t, s.Enter(&KeyState{Button: &KeyButton{VK: evdev.KEY_1}, CapType: layout.Symbol}))
	assert.False(t, s.Enter(&KeyState{Button: &MacroButton{}}))
}

func TestMacro(t *testing.T) {
	te := newTestEnv(t)
	s := NewState(PersistedState{}, te.Env, nil)
	key := &KeyState{Button: &MacroButton{Verbs: []layout.MacroVerb{
		{Key: evdev.KEY_LEFTCTRL, Press: true},
		{Key: evdev.KEY_V, Press: true},
		{Key: evdev.KEY_V, Press: false},
		{Key: evdev.KEY_LEFTCTRL, Press: false},
	}}}

	s.Press(key, ButtonLeft)
	assert.True(t, s.Release(key))

	assert.Equal(t, []routed{
		keyEvent(evdev.KEY_LEFTCTRL, true),
		keyEvent(evdev.KEY_V, true),
		keyEvent(evdev.KEY_V, false),
		keyEvent(evdev.KEY_LEFTCTRL, false),
	}, te.router.events)
	assert.Len(t, te.feedback.played, 1)
}

func TestExecReapsBeforeSpawningRelease(t *testing.T) {
	te := newTestEnv(t)
	s := NewState(PersistedState{}, te.Env, nil)
	key := &KeyState{Button: &ExecButton{
		Program:        "record",
		Args:           []string{"--start"},
		ReleaseProgram: "stop-record",
	}}

	s.Press(key, ButtonLeft)
	require.Len(t, s.Processes, 1)
	te.spawner.spawned[0].exited = true

	assert.True(t, s.Release(key))
	require.Len(t, s.Processes, 1)
	assert.Equal(t, "stop-record", s.Processes[0].(*fakeProcess).program)
	assert.Len(t, te.spawner.spawned, 2)
	assert.Len(t, te.feedback.played, 1)
}

func TestExecKeepsRunningProcesses(t *testing.T) {
	te := newTestEnv(t)
	s := NewState(PersistedState{}, te.Env, nil)
	key := &KeyState{Button: &ExecButton{Program: "notify-send"}}

	s.Press(key, ButtonLeft)
	s.Release(key)
	s.Press(key, ButtonLeft)
	assert.Len(t, s.Processes, 2)
}

func TestExecSpawnFailureIsSwallowed(t *testing.T) {
	te := newTestEnv(t)
	te.spawner.err = errors.New("not found")
	s := NewState(PersistedState{}, te.Env, nil)
	key := &KeyState{Button: &ExecButton{Program: "missing"}}

	s.Press(key, ButtonLeft)
	assert.Empty(t, s.Processes)
	assert.Len(t, te.feedback.played, 1)
}

func TestDetachMovesPersistedFields(t *testing.T) {
	te := newTestEnv(t)
	proc := &fakeProcess{program: "x"}
	s := NewState(PersistedState{
		Modifiers:   hid.Ctrl,
		AltModifier: hid.Meta,
		Processes:   []Process{proc},
		Clock12h:    true,
	}, te.Env, &fakeEngine{})
	s.swipeInput = "abc"
	s.lastSwipedWord = "abc"

	next := NewState(s.Detach(), te.Env, nil)
	assert.Equal(t, hid.Ctrl, next.Modifiers)
	assert.Equal(t, hid.Meta, next.AltModifier)
	assert.Equal(t, []Process{proc}, next.Processes)
	assert.True(t, next.Clock12h)
	assert.Empty(t, next.swipeInput)
	assert.Empty(t, next.lastSwipedWord)
	assert.False(t, next.SwipeEnabled())
	assert.Nil(t, s.Processes)
}

func TestClearModifiers(t *testing.T) {
	te := newTestEnv(t)
	s := NewState(PersistedState{Modifiers: hid.Shift | hid.Super}, te.Env, nil)

	s.ClearModifiers()
	assert.Equal(t, hid.KeyModifier(0), s.Modifiers)
	assert.Equal(t, []routed{modsEvent(0)}, te.router.events)
}
