package systemkeymap

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/miketth/vrboard/pkg/keymap"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrNoSource = errors.New("no keymap source available for this session")

// CompositorSource reports the keymap a Wayland compositor has active.
type CompositorSource interface {
	ActiveKeymap(ctx context.Context) (keymap.Keymap, error)
}

// X11Source reports the keymap configured on the X server.
type X11Source interface {
	Keymap() (keymap.Keymap, error)
}

// LocaleSource reports the system-wide keymap.
type LocaleSource interface {
	Keymap(ctx context.Context) (keymap.Keymap, error)
}

// Resolver asks the session's own source first and systemd-localed after it.
// Any of the sources may be nil.
type Resolver struct {
	Compositor CompositorSource
	X11        X11Source
	Locale     LocaleSource
	Log        *zap.SugaredLogger
}

func (r *Resolver) Keymap(ctx context.Context, wayland bool) (keymap.Keymap, error) {
	var err error

	switch {
	case wayland && r.Compositor != nil:
		km, cerr := r.Compositor.ActiveKeymap(ctx)
		if cerr == nil {
			return km, nil
		}
		r.Log.Debugw("compositor keymap unavailable", "error", cerr)
		err = multierr.Append(err, fmt.Errorf("compositor: %w", cerr))
	case !wayland && r.X11 != nil:
		km, xerr := r.X11.Keymap()
		if xerr == nil {
			return km, nil
		}
		r.Log.Debugw("x11 keymap unavailable", "error", xerr)
		err = multierr.Append(err, fmt.Errorf("x11: %w", xerr))
	}

	if r.Locale != nil {
		km, lerr := r.Locale.Keymap(ctx)
		if lerr == nil {
			return km, nil
		}
		err = multierr.Append(err, fmt.Errorf("locale1: %w", lerr))
	}

	if err == nil {
		return keymap.Keymap{}, ErrNoSource
	}
	return keymap.Keymap{}, err
}
