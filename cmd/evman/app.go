package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nixlim/evman/internal/api"
	"github.com/nixlim/evman/internal/config"
	"github.com/nixlim/evman/internal/manager"
	"github.com/nixlim/evman/internal/notify"
	"github.com/nixlim/evman/internal/session"
	"github.com/nixlim/evman/internal/storage"
)

// maxToasts bounds the toast queue; the TUI shows the newest few.
const maxToasts = 8

type appOptions struct {
	debugPath string
	// desktop mirrors notifications to the OS when the config enables it.
	desktop bool
	// extra receives every notification in addition to the toast queue.
	extra notify.Sink
}

// app holds the components shared by the TUI and the one-shot commands.
type app struct {
	cfg        config.Config
	cache      session.Cache
	persistent bool
	client     *api.Client
	toasts     *notify.Queue
	vm         *manager.ViewModel
	debugFile  *os.File
}

func newApp(cfg config.Config, opts appOptions) (*app, error) {
	a := &app{cfg: cfg}

	var clientOpts []api.Option
	clientOpts = append(clientOpts, api.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second))
	if opts.debugPath != "" {
		f, err := os.OpenFile(opts.debugPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open debug log %q: %w", opts.debugPath, err)
		}
		a.debugFile = f
		clientOpts = append(clientOpts, api.WithLogger(api.NewFileLogger(f)))
	}
	a.client = api.New(cfg.API.BaseURL, clientOpts...)

	cache, persistent, err := storage.NewCache(cfg.Storage)
	if err != nil {
		_ = a.closeDebugLog()
		return nil, fmt.Errorf("storage error: %w", err)
	}
	a.cache = cache
	a.persistent = persistent

	a.toasts = notify.NewQueue(time.Duration(cfg.Display.NotificationMS)*time.Millisecond, maxToasts)
	sinks := notify.Fanout{a.toasts, opts.extra}
	if opts.desktop {
		sinks = append(sinks, notify.NewPlatformNotifier(cfg.Notifications.SystemNotify))
	}
	emitter := notify.NewEmitter(sinks, notify.NewTranslator(cfg.Display.Locale))

	a.vm = manager.New(a.client, a.cache,
		manager.WithNotifier(emitter),
		manager.WithTokenSlot(cfg.Auth.TokenSlot),
		manager.WithCredentials(api.Credentials{
			Identifier: cfg.Auth.Identifier,
			Password:   cfg.Auth.Password,
		}),
	)

	return a, nil
}

func (a *app) closeDebugLog() error {
	if a.debugFile == nil {
		return nil
	}
	err := a.debugFile.Close()
	a.debugFile = nil
	return err
}

// Close releases the cache and the request log.
func (a *app) Close() error {
	cacheErr := a.cache.Close()
	if err := a.closeDebugLog(); err != nil {
		return err
	}
	return cacheErr
}
