package locale1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/miketth/vrboard/pkg/keymap"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	busName       = "org.freedesktop.locale1"
	objectPath    = "/org/freedesktop/locale1"
	localeIfc     = "org.freedesktop.locale1"
	propertiesIfc = "org.freedesktop.DBus.Properties"
)

var ErrNoLayout = errors.New("locale1 has no X11 layout configured")

type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Source reads the system-wide X11 keymap from systemd-localed.
type Source struct {
	conn   *dbus.Conn
	locale caller
}

func NewSource() (*Source, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	return &Source{conn: conn, locale: conn.Object(busName, objectPath)}, nil
}

func (s *Source) Keymap(ctx context.Context) (keymap.Keymap, error) {
	layouts, err := s.property(ctx, "X11Layout")
	if err != nil {
		return keymap.Keymap{}, err
	}
	variants, err := s.property(ctx, "X11Variant")
	if err != nil {
		return keymap.Keymap{}, err
	}

	return parseKeymap(layouts, variants)
}

func (s *Source) property(ctx context.Context, name string) (string, error) {
	var value dbus.Variant
	err := s.locale.CallWithContext(ctx, propertiesIfc+".Get", 0, localeIfc, name).Store(&value)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", name, err)
	}

	str, ok := value.Value().(string)
	if !ok {
		return "", fmt.Errorf("%s has type %s, expected string", name, value.Signature())
	}
	return str, nil
}

// parseKeymap takes the first entry of comma separated layout and variant lists.
func parseKeymap(layouts, variants string) (keymap.Keymap, error) {
	layout, _, _ := strings.Cut(layouts, ",")
	variant, _, _ := strings.Cut(variants, ",")
	layout = strings.TrimSpace(layout)
	if layout == "" {
		return keymap.Keymap{}, ErrNoLayout
	}

	return keymap.FromLayoutVariant(layout, strings.TrimSpace(variant))
}

type Raiser interface {
	Raise()
}

// Watch raises signal whenever the X11 layout or variant changes, until ctx ends.
func (s *Source) Watch(ctx context.Context, signal Raiser, log *zap.SugaredLogger) error {
	err := s.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(propertiesIfc),
		dbus.WithMatchMember("PropertiesChanged"),
	)
	if err != nil {
		return fmt.Errorf("add match: %w", err)
	}

	signals := make(chan *dbus.Signal, 8)
	s.conn.Signal(signals)
	defer s.conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return fmt.Errorf("system bus closed")
			}
			if changesKeymap(sig) {
				log.Debugw("system keymap changed", "path", sig.Path)
				signal.Raise()
			}
		}
	}
}

func changesKeymap(sig *dbus.Signal) bool {
	if sig == nil || sig.Path != objectPath || sig.Name != propertiesIfc+".PropertiesChanged" {
		return false
	}
	if len(sig.Body) < 3 {
		return false
	}
	if ifc, _ := sig.Body[0].(string); ifc != localeIfc {
		return false
	}

	isKeymapProp := func(name string) bool {
		return name == "X11Layout" || name == "X11Variant"
	}

	if changed, ok := sig.Body[1].(map[string]dbus.Variant); ok {
		for name := range changed {
			if isKeymapProp(name) {
				return true
			}
		}
	}
	if invalidated, ok := sig.Body[2].([]string); ok {
		for _, name := range invalidated {
			if isKeymapProp(name) {
				return true
			}
		}
	}
	return false
}

func (s *Source) Close() error {
	return s.conn.Close()
}
