package keyboard

import (
	"fmt"
	"strings"
	"time"

	"codeberg.org/miketth/vrboard/pkg/hid"
	"codeberg.org/miketth/vrboard/pkg/layout"
	"codeberg.org/miketth/vrboard/pkg/swipe"
	"go.uber.org/zap"
)

const (
	SampleKeyClick  = "key_click"
	predictionCount = 5
)

type MouseButton int

const (
	ButtonLeft MouseButton = iota
	ButtonRight
	ButtonMiddle
)

// PersistedState is the part of a State that follows the user across layout switches.
type PersistedState struct {
	Modifiers   hid.KeyModifier
	AltModifier hid.KeyModifier
	Processes   []Process
	Clock12h    bool
}

// Env holds the collaborators shared by the states of every layout.
type Env struct {
	Router    Router
	Clipboard Clipboard
	Feedback  Feedback
	Spawner   Spawner
	Log       *zap.SugaredLogger

	// Now defaults to time.Now.
	Now func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// State is the interaction state of one layout panel.
type State struct {
	PersistedState

	env *Env

	swipeEngine      swipe.Engine
	swipeInput       string
	lastPressedLabel string
	swiping          bool
	lastSwipedWord   string
}

// NewState starts a state from the persisted fields; swipe tracking starts empty.
// engine may be nil, which disables swipe typing.
func NewState(p PersistedState, env *Env, engine swipe.Engine) *State {
	return &State{
		PersistedState: p,
		env:            env,
		swipeEngine:    engine,
	}
}

// Detach returns the persisted fields for the next state. Tracked processes
// move with them.
func (s *State) Detach() PersistedState {
	p := s.PersistedState
	s.Processes = nil
	return p
}

func (s *State) SwipeEnabled() bool {
	return s.swipeEngine != nil
}

func (s *State) swipeKey(key *KeyState) bool {
	return s.swipeEngine != nil && key.CapType == layout.Letter
}

func (s *State) Press(key *KeyState, button MouseButton) {
	s.swiping = false

	switch b := key.Button.(type) {
	case *KeyButton:
		if s.swipeKey(key) {
			label := key.label()
			s.lastPressedLabel = label
			s.swipeInput = strings.ToLower(label)
			return
		}

		switch button {
		case ButtonRight:
			s.Modifiers |= hid.Shift
		case ButtonMiddle:
			s.Modifiers |= s.AltModifier
		}
		s.env.Router.SetModifiers(s.Modifiers)
		s.env.Router.SendKey(b.VK, true)
		b.pressed = true
		s.playKeyClick()

	case *ModifierButton:
		b.sticky = s.Modifiers&b.Modifier == 0
		s.Modifiers |= b.Modifier
		s.env.Router.SetModifiers(s.Modifiers)
		s.playKeyClick()

	case *MacroButton:
		for _, verb := range b.Verbs {
			s.env.Router.SendKey(verb.Key, verb.Press)
		}
		s.playKeyClick()

	case *ExecButton:
		s.reapProcesses()
		s.spawn(b.Program, b.Args)
		s.playKeyClick()

	default:
		panic(fmt.Sprintf("unhandled key button %T", b))
	}
}

// Enter handles a held pointer sliding onto key. It reports whether the key
// was taken into the swipe path.
func (s *State) Enter(key *KeyState) bool {
	switch key.Button.(type) {
	case *KeyButton:
		if !s.swipeKey(key) {
			return false
		}

		label := key.label()
		if label != s.lastPressedLabel {
			s.swiping = true
		}
		if s.swiping {
			s.swipeInput += strings.ToLower(label)
		}
		s.lastPressedLabel = label
		return true

	case *ModifierButton, *MacroButton, *ExecButton:
		return false

	default:
		panic(fmt.Sprintf("unhandled key button %T", key.Button))
	}
}

// Release handles touch-up on key. It returns false when the key stays
// held, which only happens for sticky modifiers.
func (s *State) Release(key *KeyState) bool {
	switch b := key.Button.(type) {
	case *KeyButton:
		if s.swipeKey(key) {
			if s.swiping {
				if s.swipeInput != "" {
					s.finishSwipe()
				}
			} else {
				// released on the key it went down on
				s.env.Router.SendKey(b.VK, true)
				s.env.Router.SendKey(b.VK, false)
				b.pressed = false
				s.playKeyClick()
			}
			return true
		}

		b.pressed = false
		for _, m := range hid.AutoReleaseMods {
			s.Modifiers &^= m
		}
		s.env.Router.SendKey(b.VK, false)
		s.env.Router.SetModifiers(s.Modifiers)
		return true

	case *ModifierButton:
		if b.sticky {
			return false
		}
		s.Modifiers &^= b.Modifier
		s.env.Router.SetModifiers(s.Modifiers)
		return true

	case *MacroButton:
		return true

	case *ExecButton:
		s.reapProcesses()
		if b.ReleaseProgram != "" {
			s.spawn(b.ReleaseProgram, b.ReleaseArgs)
		}
		return true

	default:
		panic(fmt.Sprintf("unhandled key button %T", b))
	}
}

func (s *State) abortSwipe() {
	s.swipeInput = ""
	s.swiping = false
	s.lastPressedLabel = ""
}

// ClearModifiers drops every held modifier and routes the empty mask.
func (s *State) ClearModifiers() {
	s.Modifiers = 0
	s.env.Router.SetModifiers(0)
}

func (s *State) finishSwipe() {
	path := s.swipeInput
	predictions := s.swipeEngine.Predict(path, s.lastSwipedWord, predictionCount)
	s.swipeInput = ""

	s.env.Log.Debugw("swipe finished", "path", path, "predictions", predictions)
	if len(predictions) == 0 {
		s.env.Log.Infow("no word predicted for swipe", "path", path)
		return
	}

	word := predictions[0].Word
	if err := s.env.Clipboard.SetPrimary(word + " "); err != nil {
		s.env.Log.Errorw("copy prediction to primary selection", "word", word, "error", err)
		return
	}

	// Shift+Insert pastes the primary selection.
	s.env.Router.SetModifiers(hid.Shift)
	s.env.Router.SendKey(hid.KeyInsert, true)
	s.env.Router.SendKey(hid.KeyInsert, false)
	s.env.Router.SetModifiers(s.Modifiers)

	s.lastSwipedWord = word
}

func (s *State) reapProcesses() {
	live := s.Processes[:0]
	for _, p := range s.Processes {
		if !p.Exited() {
			live = append(live, p)
		}
	}
	s.Processes = live
}

func (s *State) spawn(program string, args []string) {
	p, err := s.env.Spawner.Spawn(program, args)
	if err != nil {
		s.env.Log.Warnw("spawn process", "program", program, "error", err)
		return
	}
	s.Processes = append(s.Processes, p)
}

func (s *State) playKeyClick() {
	s.env.Feedback.Play(SampleKeyClick)
}
