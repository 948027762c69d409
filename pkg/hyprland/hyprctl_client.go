package hyprland

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"codeberg.org/miketth/vrboard/pkg/keymap"
)

var ErrNoKeyboard = errors.New("no keyboard reported by hyprland")

// PrettyNameResolver maps an xkb description back to a keymap.
type PrettyNameResolver interface {
	KeymapFromPrettyName(prettyName string) (keymap.Keymap, error)
}

// HyprctlClient talks to the request socket, the same one hyprctl uses.
type HyprctlClient struct {
	dir   string
	names PrettyNameResolver
}

func NewHyprctl(dir string, names PrettyNameResolver) *HyprctlClient {
	return &HyprctlClient{dir: dir, names: names}
}

func (c *HyprctlClient) GetKeyboards(ctx context.Context) ([]Keyboard, error) {
	conn, err := c.makeRequest(ctx, "devices", "j")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	resp, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("read response from hyprctl socket: %w", err)
	}

	var devs devices
	if err := json.Unmarshal(resp, &devs); err != nil {
		return nil, fmt.Errorf("unmarshal devices: %w", err)
	}

	out := make([]Keyboard, 0, len(devs.Keyboards))
	for _, k := range devs.Keyboards {
		out = append(out, k.ToKeyboard())
	}

	return out, nil
}

// ActiveKeymap returns the layout active on the main keyboard, or on the
// first keyboard when none is marked main.
func (c *HyprctlClient) ActiveKeymap(ctx context.Context) (keymap.Keymap, error) {
	keyboards, err := c.GetKeyboards(ctx)
	if err != nil {
		return keymap.Keymap{}, fmt.Errorf("get keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return keymap.Keymap{}, ErrNoKeyboard
	}

	kb := keyboards[0]
	for _, k := range keyboards {
		if k.Main {
			kb = k
			break
		}
	}

	km, err := c.names.KeymapFromPrettyName(kb.ActiveKeymap)
	if err != nil {
		return keymap.Keymap{}, fmt.Errorf("keyboard %s: %w", kb.Name, err)
	}
	return km, nil
}

func (c *HyprctlClient) makeRequest(ctx context.Context, request string, args string) (net.Conn, error) {
	conn, err := connect(ctx, c.dir, Hyprctl)
	if err != nil {
		return nil, err
	}

	_, err = conn.Write([]byte(fmt.Sprintf("%s/%s", args, request)))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("write to hyprctl socket: %w", err)
	}

	return conn, nil
}
