package x11

import (
	"errors"
	"fmt"
	"strings"

	"codeberg.org/miketth/vrboard/pkg/keymap"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"
)

const rulesNamesAtom = "_XKB_RULES_NAMES"

var ErrNoRulesNames = errors.New("root window has no " + rulesNamesAtom)

// Source reads the keymap the X server was configured with.
type Source struct {
	xu *xgbutil.XUtil
}

func NewSource() (*Source, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	return &Source{xu: xu}, nil
}

func (s *Source) Keymap() (keymap.Keymap, error) {
	names, err := xprop.PropValStrs(xprop.GetProperty(s.xu, s.xu.RootWin(), rulesNamesAtom))
	if err != nil {
		return keymap.Keymap{}, fmt.Errorf("read %s: %w", rulesNamesAtom, err)
	}
	return fromRulesNames(names)
}

// fromRulesNames picks layout and variant out of rules, model, layout,
// variant, options. Only the first group is used.
func fromRulesNames(names []string) (keymap.Keymap, error) {
	if len(names) < 3 || names[2] == "" {
		return keymap.Keymap{}, ErrNoRulesNames
	}

	var variants string
	if len(names) > 3 {
		variants = names[3]
	}

	layout := firstGroup(names[2])
	variant := firstGroup(variants)
	return keymap.FromLayoutVariant(layout, variant)
}

func firstGroup(list string) string {
	group, _, _ := strings.Cut(list, ",")
	return group
}

func (s *Source) Close() {
	s.xu.Conn().Close()
}
