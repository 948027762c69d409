package hyprland

import "strings"

type keyboard struct {
	Name         string `json:"name"`
	Layout       string `json:"layout"`
	Variant      string `json:"variant"`
	Options      string `json:"options"`
	ActiveKeymap string `json:"active_keymap"`
	Main         bool   `json:"main"`
}

type devices struct {
	Keyboards []keyboard `json:"keyboards"`
}

type Keyboard struct {
	Name     string
	Layouts  []string
	Variants []string

	// ActiveKeymap is the xkb description of the active layout, e.g. "German".
	ActiveKeymap string
	Main         bool
}

func (k keyboard) ToKeyboard() Keyboard {
	return Keyboard{
		Name:         k.Name,
		Layouts:      strings.Split(k.Layout, ","),
		Variants:     strings.Split(k.Variant, ","),
		ActiveKeymap: k.ActiveKeymap,
		Main:         k.Main,
	}
}
