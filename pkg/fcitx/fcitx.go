package fcitx

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	busName        = "org.fcitx.Fcitx5"
	controllerPath = "/controller"
	controllerIfc  = "org.fcitx.Fcitx.Controller1"
)

type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Source reports the active fcitx5 input method, e.g. "keyboard-de" or "mozc".
type Source struct {
	controller caller
}

func NewSource() (*Source, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	return &Source{controller: conn.Object(busName, controllerPath)}, nil
}

func (s *Source) SchemeName(ctx context.Context) (string, error) {
	var name string
	err := s.controller.CallWithContext(ctx, controllerIfc+".CurrentInputMethod", 0).Store(&name)
	if err != nil {
		return "", fmt.Errorf("get current input method: %w", err)
	}
	return name, nil
}
