package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var ErrEmptyText = errors.New("cannot copy empty text")

// commandTimeout bounds how long a copy may stall the caller.
var commandTimeout = 2 * time.Second

type runner func(name string, args []string, stdin string) error

// Primary writes to the primary selection, the one Shift+Insert pastes.
type Primary struct {
	wayland bool
	run     runner
}

func NewPrimary(wayland bool) *Primary {
	return &Primary{wayland: wayland, run: runCommand}
}

func (p *Primary) SetPrimary(text string) error {
	if text == "" {
		return ErrEmptyText
	}

	name, args := "xclip", []string{"-selection", "primary"}
	if p.wayland {
		name, args = "wl-copy", []string{"--primary"}
	}

	if err := p.run(name, args, text); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func runCommand(name string, args []string, stdin string) error {
	var stderr bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stderr = &stderr
	// xclip and wl-copy fork a child that keeps serving the selection
	// and inherits stderr.
	cmd.WaitDelay = 100 * time.Millisecond

	err := cmd.Run()
	switch {
	case err == nil, errors.Is(err, exec.ErrWaitDelay):
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", err, ctx.Err())
	default:
		return fmt.Errorf("%w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
}
