package hyprland

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

var ErrNotRunning = errors.New("hyprland might not be running")

type socketType int

const (
	Hyprctl socketType = iota
	Socket2
)

func (s socketType) fileName() string {
	switch s {
	case Hyprctl:
		return ".socket.sock"
	case Socket2:
		return ".socket2.sock"
	}
	return ""
}

// InstanceDir returns the socket directory of the running Hyprland instance.
// Newer releases keep it under $XDG_RUNTIME_DIR/hypr, older ones under /tmp/hypr.
func InstanceDir() (string, error) {
	signature := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if signature == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE is not set, %w", ErrNotRunning)
	}

	candidates := []string{
		filepath.Join(xdg.RuntimeDir, "hypr", signature),
		filepath.Join("/tmp/hypr", signature),
	}
	for _, dir := range candidates {
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}

	return "", fmt.Errorf("no socket directory for instance %s, %w", signature, ErrNotRunning)
}

func connect(ctx context.Context, dir string, sock socketType) (net.Conn, error) {
	name := sock.fileName()
	if name == "" {
		return nil, fmt.Errorf("unknown socket type: %d", sock)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return conn, nil
}
