package hyprland

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type EventListener interface {
	ReadLine() (string, error)
}

type Raiser interface {
	Raise()
}

// LayoutWatcher raises a signal whenever Hyprland reports a layout change.
type LayoutWatcher struct {
	listener EventListener
	signal   Raiser
	log      *zap.SugaredLogger
}

func NewLayoutWatcher(listener EventListener, signal Raiser, log *zap.SugaredLogger) *LayoutWatcher {
	return &LayoutWatcher{
		listener: listener,
		signal:   signal,
		log:      log,
	}
}

func (w *LayoutWatcher) ProcessLines(ctx context.Context) error {
	resultCh := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		for {
			line, err := w.listener.ReadLine()
			if err != nil {
				errCh <- err
				return
			}
			select {
			case resultCh <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-resultCh:
			if err := w.processLine(line); err != nil {
				w.log.Warnw("bad hyprland event", "line", line, "error", err)
			}
		case err := <-errCh:
			return fmt.Errorf("get line: %w", err)
		}
	}
}

func (w *LayoutWatcher) processLine(line string) error {
	evType, evData, found := strings.Cut(line, ">>")
	if !found {
		return fmt.Errorf("invalid line: %q", line)
	}

	switch evType {
	case "activelayout":
		keyboardName, layout, found := strings.Cut(evData, ",")
		if !found {
			return fmt.Errorf("invalid layout change data: %q", evData)
		}
		w.log.Debugw("layout changed", "keyboard", keyboardName, "layout", layout)
		w.signal.Raise()
	case "configreloaded":
		w.signal.Raise()
	}

	return nil
}
