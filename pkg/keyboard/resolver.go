package keyboard

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"codeberg.org/miketth/vrboard/pkg/keymap"
	"go.uber.org/zap"
)

var ErrUnknownLayout = errors.New("layout not in xkb registry")

var imeKeyboardScheme = regexp.MustCompile(`^keyboard-([^-]+)(?:-([^-]+))?$`)

// systemLayoutAliases are IME schemes that type on top of the system layout.
var systemLayoutAliases = []string{"mozc", "pinyin", "hangul", "sayura", "unikey"}

// Resolver picks the keymap that should be active: the IME's keyboard scheme
// when it names one, the system keymap otherwise.
type Resolver struct {
	ime       IMESource
	system    SystemSource
	validator LayoutValidator
	wayland   bool
	log       *zap.SugaredLogger
}

// NewResolver creates a resolver. ime and validator may be nil.
func NewResolver(ime IMESource, system SystemSource, validator LayoutValidator, wayland bool, log *zap.SugaredLogger) *Resolver {
	return &Resolver{
		ime:       ime,
		system:    system,
		validator: validator,
		wayland:   wayland,
		log:       log,
	}
}

func (r *Resolver) Resolve(ctx context.Context) (keymap.Keymap, error) {
	if r.ime == nil {
		return r.systemKeymap(ctx)
	}

	scheme, err := r.ime.SchemeName(ctx)
	if err != nil {
		r.log.Infow("could not get keymap via IME, falling back to system keymap", "error", err)
		return r.systemKeymap(ctx)
	}

	if m := imeKeyboardScheme.FindStringSubmatch(scheme); m != nil {
		km, err := r.fromLayoutVariant(m[1], m[2])
		if err != nil {
			return keymap.Keymap{}, fmt.Errorf("layout/variant is invalid: %w", err)
		}
		return km, nil
	}

	if slices.Contains(systemLayoutAliases, scheme) {
		r.log.Debugf("%s is an IME, switching to system layout", scheme)
	} else {
		r.log.Warnf("unknown layout or IME %q, using system layout", scheme)
	}
	return r.systemKeymap(ctx)
}

func (r *Resolver) systemKeymap(ctx context.Context) (keymap.Keymap, error) {
	km, err := r.system.Keymap(ctx, r.wayland)
	if err != nil {
		return keymap.Keymap{}, fmt.Errorf("get system keymap: %w", err)
	}
	return km, nil
}

func (r *Resolver) fromLayoutVariant(layout, variant string) (keymap.Keymap, error) {
	km, err := keymap.FromLayoutVariant(layout, variant)
	if err != nil {
		return keymap.Keymap{}, err
	}

	if r.validator != nil && !r.validator.HasLayout(layout, variant) {
		return keymap.Keymap{}, fmt.Errorf("%s: %w", km, ErrUnknownLayout)
	}
	return km, nil
}
