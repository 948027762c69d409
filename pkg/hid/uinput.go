package hid

import (
	"fmt"
	"strings"
	"syscall"
	"time"

	"codeberg.org/miketth/vrboard/pkg/keymap"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

// modifierKeys is the key pressed on the virtual device to assert each modifier bit.
var modifierKeys = []struct {
	bit    KeyModifier
	key    evdev.EvCode
	toggle bool
}{
	{Shift, evdev.KEY_LEFTSHIFT, false},
	{CapsLock, evdev.KEY_CAPSLOCK, true},
	{Ctrl, evdev.KEY_LEFTCTRL, false},
	{Alt, evdev.KEY_LEFTALT, false},
	{NumLock, evdev.KEY_NUMLOCK, true},
	{Level3, evdev.KEY_RIGHTALT, false},
	{Super, evdev.KEY_LEFTMETA, false},
	{Meta, evdev.KEY_RIGHTMETA, false},
}

type eventWriter interface {
	WriteOne(event *evdev.InputEvent) error
	Close() error
}

// UinputRouter injects key events through a virtual uinput keyboard.
type UinputRouter struct {
	dev  eventWriter
	mods KeyModifier
	log  *zap.SugaredLogger
}

func NewUinputRouter(name string, log *zap.SugaredLogger) (*UinputRouter, error) {
	keys := make([]evdev.EvCode, 0, len(evdev.KEYFromString))
	for keyName, code := range evdev.KEYFromString {
		if strings.HasPrefix(keyName, "KEY_") && code < evdev.KEY_MAX {
			keys = append(keys, code)
		}
	}

	dev, err := evdev.CreateDevice(
		name,
		evdev.InputID{
			BusType: 0x03,
			Vendor:  0x4711,
			Product: 0x0817,
			Version: 1,
		},
		map[evdev.EvType][]evdev.EvCode{
			evdev.EV_KEY: keys,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create uinput device: %w", err)
	}

	return &UinputRouter{dev: dev, log: log}, nil
}

func (r *UinputRouter) Close() error {
	return r.dev.Close()
}

func (r *UinputRouter) SendKey(vk VirtualKey, pressed bool) {
	if err := r.emit(vk, pressed); err != nil {
		r.log.Warnw("send key", "key", evdev.CodeName(evdev.EV_KEY, vk), "pressed", pressed, "error", err)
	}
}

func (r *UinputRouter) SetModifiers(mods KeyModifier) {
	changed := r.mods ^ mods
	for _, m := range modifierKeys {
		if changed&m.bit == 0 {
			continue
		}

		var err error
		if m.toggle {
			err = r.tap(m.key)
		} else {
			err = r.emit(m.key, mods&m.bit != 0)
		}
		if err != nil {
			r.log.Warnw("set modifiers", "modifier", m.bit, "error", err)
		}
	}
	r.mods = mods
}

func (r *UinputRouter) KeymapChanged(km keymap.Keymap) {
	// The compositor interprets the virtual device with its own keymap; only record it.
	r.log.Debugw("keymap changed", "keymap", km.String())
}

func (r *UinputRouter) tap(code evdev.EvCode) error {
	if err := r.emit(code, true); err != nil {
		return err
	}
	return r.emit(code, false)
}

func (r *UinputRouter) emit(code evdev.EvCode, pressed bool) error {
	evTime := syscall.NsecToTimeval(time.Now().UnixNano())

	var value int32
	if pressed {
		value = 1
	}

	if err := r.dev.WriteOne(&evdev.InputEvent{
		Time:  evTime,
		Type:  evdev.EV_KEY,
		Code:  code,
		Value: value,
	}); err != nil {
		return fmt.Errorf("write key event: %w", err)
	}

	if err := r.dev.WriteOne(&evdev.InputEvent{
		Time:  evTime,
		Type:  evdev.EV_SYN,
		Code:  evdev.SYN_REPORT,
		Value: 0,
	}); err != nil {
		return fmt.Errorf("write sync event: %w", err)
	}

	return nil
}
