package xkblayouts

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"codeberg.org/miketth/vrboard/pkg/keymap"
)

const DefaultPath = "/usr/share/X11/xkb/rules/evdev.xml"

var ErrUnknownPrettyName = errors.New("no layout with this description")

// Registry answers lookups against a parsed evdev.xml.
type Registry struct {
	byName   map[string]map[string]string // layout -> variant -> description
	byPretty map[string]keymap.Keymap
}

func ParseLayouts(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

func Parse(r io.Reader) (*Registry, error) {
	raw := &registryDoc{}
	if err := xml.NewDecoder(r).Decode(raw); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	reg := &Registry{
		byName:   make(map[string]map[string]string),
		byPretty: make(map[string]keymap.Keymap),
	}

	for _, l := range raw.Layouts {
		name := l.Item.Name
		variants, ok := reg.byName[name]
		if !ok {
			variants = make(map[string]string)
			reg.byName[name] = variants
		}
		variants[""] = l.Item.Description
		reg.addPretty(l.Item.Description, keymap.Keymap{Layout: name})

		for _, v := range l.Variants {
			variants[v.Item.Name] = v.Item.Description
			reg.addPretty(v.Item.Description, keymap.Keymap{Layout: name, Variant: v.Item.Name})
		}
	}

	return reg, nil
}

// first description wins, the same as a linear scan of the file
func (r *Registry) addPretty(description string, km keymap.Keymap) {
	if description == "" {
		return
	}
	if _, ok := r.byPretty[description]; !ok {
		r.byPretty[description] = km
	}
}

func (r *Registry) HasLayout(layout, variant string) bool {
	variants, ok := r.byName[layout]
	if !ok {
		return false
	}
	_, ok = variants[variant]
	return ok
}

func (r *Registry) PrettyName(layout, variant string) string {
	return r.byName[layout][variant]
}

// KeymapFromPrettyName maps a description such as "German (no dead keys)"
// back to its layout and variant.
func (r *Registry) KeymapFromPrettyName(prettyName string) (keymap.Keymap, error) {
	km, ok := r.byPretty[prettyName]
	if !ok {
		return keymap.Keymap{}, fmt.Errorf("%q: %w", prettyName, ErrUnknownPrettyName)
	}
	return km, nil
}

func (r *Registry) Len() int {
	return len(r.byName)
}
