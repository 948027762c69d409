package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"codeberg.org/miketth/vrboard/pkg/clipboard"
	"codeberg.org/miketth/vrboard/pkg/config"
	"codeberg.org/miketth/vrboard/pkg/fcitx"
	"codeberg.org/miketth/vrboard/pkg/feedback"
	"codeberg.org/miketth/vrboard/pkg/hid"
	"codeberg.org/miketth/vrboard/pkg/hostsock"
	"codeberg.org/miketth/vrboard/pkg/hyprland"
	"codeberg.org/miketth/vrboard/pkg/keyboard"
	jsonstore "codeberg.org/miketth/vrboard/pkg/keymapstore/json"
	"codeberg.org/miketth/vrboard/pkg/keymapstore/memory"
	"codeberg.org/miketth/vrboard/pkg/keymapstore/sqlite"
	"codeberg.org/miketth/vrboard/pkg/layout"
	"codeberg.org/miketth/vrboard/pkg/locale1"
	"codeberg.org/miketth/vrboard/pkg/swipe"
	"codeberg.org/miketth/vrboard/pkg/systemkeymap"
	"codeberg.org/miketth/vrboard/pkg/x11"
	"codeberg.org/miketth/vrboard/pkg/xkblayouts"
	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	err := run()
	if err != nil {
		log.Fatalf("error: %+v", err)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func run() (err error) {
	configPath := flag.String("config", "", "path to config.toml (default: XDG config dir)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log, err := newLogger(*debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *configPath == "" {
		*configPath, err = config.Path()
		if err != nil {
			return err
		}
	}
	cfg, err := config.Load(*configPath, log)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.FillPaths(); err != nil {
		return err
	}
	wayland := cfg.Wayland()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	registry, err := xkblayouts.ParseLayouts(cfg.EvdevXMLPath)
	if err != nil {
		log.Warnw("no xkb registry, layout names are not validated", "path", cfg.EvdevXMLPath, "error", err)
		registry = nil
	}

	keyLayout, err := layout.Load(cfg.LayoutPath)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	words, err := swipe.LoadWordlist(cfg.WordlistPath)
	if err != nil {
		return fmt.Errorf("load wordlist: %w", err)
	}

	router, err := hid.NewUinputRouter("vrboard", log)
	if err != nil {
		return fmt.Errorf("create uinput device: %w", err)
	}
	closers = append(closers, router)

	store, saveLoop, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open keymap store: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		closers = append(closers, c)
	}

	sig := &keyboard.ChangeSignal{}
	system := &systemkeymap.Resolver{Log: log}

	locale, err := locale1.NewSource()
	if err != nil {
		log.Warnw("locale1 unavailable", "error", err)
		locale = nil
	} else {
		system.Locale = locale
		closers = append(closers, locale)
	}

	var hyprDir string
	if wayland && registry != nil {
		hyprDir, err = hyprland.InstanceDir()
		if err != nil {
			log.Infow("not running under hyprland", "error", err)
			hyprDir = ""
		} else {
			system.Compositor = hyprland.NewHyprctl(hyprDir, registry)
		}
	}

	if !wayland {
		xs, err := x11.NewSource()
		if err != nil {
			log.Warnw("x11 unavailable", "error", err)
		} else {
			system.X11 = xs
			closers = append(closers, closerFunc(func() error { xs.Close(); return nil }))
		}
	}

	var ime keyboard.IMESource
	if src, err := fcitx.NewSource(); err != nil {
		log.Infow("no session bus for IME lookups", "error", err)
	} else {
		ime = src
	}

	var validator keyboard.LayoutValidator
	if registry != nil {
		validator = registry
	}

	host, err := hostsock.Listen(cfg.SocketPath, log)
	if err != nil {
		return fmt.Errorf("listen on host socket: %w", err)
	}
	closers = append(closers, host)

	var fb keyboard.Feedback = feedback.Nop{}
	if cfg.FeedbackSample != "" {
		fb = feedback.NewPlayer(map[string]string{keyboard.SampleKeyClick: cfg.FeedbackSample}, log)
	}

	backend, err := keyboard.NewBackend(ctx, keyboard.Options{
		Layout:       keyLayout,
		Resolver:     keyboard.NewResolver(ime, system, validator, wayland, log),
		SwipeFactory: swipe.NewWordlistFactory(words),
		Env: &keyboard.Env{
			Router:    router,
			Clipboard: clipboard.NewPrimary(wayland),
			Feedback:  fb,
			Spawner:   keyboard.ExecSpawner{},
			Log:       log,
		},
		Host:          host,
		Signal:        sig,
		Store:         store,
		Session:       cfg.SessionName(),
		AltModifier:   cfg.AltModifierMask(),
		Clock12h:      cfg.Clock12h,
		DefaultKeymap: cfg.DefaultKeymap,
		Log:           log,
	})
	if err != nil {
		return fmt.Errorf("create keyboard: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("init keyboard: %w", err)
	}

	log.Infow("started vrboard", "socket", cfg.SocketPath, "wayland", wayland)

	errChan := make(chan error, 8)
	var wg sync.WaitGroup

	spawn := func(name string, fatal bool, fn func(ctx context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := fn(ctx)
			switch {
			case err == nil, errors.Is(err, context.Canceled):
			case fatal:
				errChan <- fmt.Errorf("%s: %w", name, err)
			default:
				log.Warnw("listener stopped", "listener", name, "error", err)
			}
		}()
	}

	spawn("frame loop", true, func(ctx context.Context) error {
		err := frameLoop(ctx, backend, host, cfg.FrameRate, log)
		errChan <- err
		return nil
	})
	spawn("host socket", true, host.Serve)
	spawn("systemd notify", true, systemdNotifyLoop)
	spawn("config watcher", false, func(ctx context.Context) error {
		return config.Watch(ctx, *configPath, sig.Raise, log)
	})
	if locale != nil {
		spawn("locale1 watcher", false, func(ctx context.Context) error {
			return locale.Watch(ctx, sig, log)
		})
	}
	if hyprDir != "" {
		spawn("hyprland events", false, func(ctx context.Context) error {
			client, err := hyprland.Connect(ctx, hyprDir)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer client.Close()
			return hyprland.NewLayoutWatcher(client, sig, log).ProcessLines(ctx)
		})
	}
	if saveLoop != nil {
		spawn("keymap store", false, saveLoop)
	}

	err = <-errChan
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Info("shutting down")
		stop()
		wg.Wait()
		return nil
	default:
		stop()
		wg.Wait()
		return err
	}
}

// frameLoop owns the keyboard: host events and renders all happen here.
func frameLoop(ctx context.Context, backend *keyboard.Backend, host *hostsock.Server, frameRate int, log *zap.SugaredLogger) error {
	ticker := time.NewTicker(time.Second / time.Duration(frameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			backend.Pause()
			return ctx.Err()

		case ev := <-host.Events():
			if !ev.Apply(backend) {
				log.Warnw("unknown host event", "type", ev.Type)
			}

		case <-ticker.C:
			state, err := backend.ShouldRender(ctx)
			if err != nil {
				return fmt.Errorf("should render: %w", err)
			}
			if state != keyboard.ShouldRenderShould {
				continue
			}
			if err := backend.Render(host); err != nil {
				log.Warnw("render", "error", err)
			}
		}
	}
}

func openStore(cfg *config.Config, log *zap.SugaredLogger) (keyboard.KeymapStore, func(context.Context) error, error) {
	switch cfg.Store {
	case "memory":
		return memory.NewKeymapStore(), nil, nil
	case "json":
		store, err := jsonstore.NewKeymapStore(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func(ctx context.Context) error {
			return store.SaveLooper(ctx, time.Minute)
		}, nil
	default:
		store, err := sqlite.NewKeymapStore(cfg.StorePath, log)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Typing in thin air")

	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stdout"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if !debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
