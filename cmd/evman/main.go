package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/evman/internal/config"
	"github.com/nixlim/evman/internal/tui"
)

func main() {
	loginFlag := flag.Bool("login", false, "Log in with the configured credentials, cache the token and exit")
	logoutFlag := flag.Bool("logout", false, "Forget the cached token and exit")
	listFlag := flag.Bool("list", false, "Print the events and exit")
	configFlag := flag.String("config", "", "Path to the config file (default ~/.config/evman/config.toml)")
	debugFlag := flag.String("debug", "", "Write a request log (JSONL) to the specified file path")
	logFlag := flag.String("log", "", "Write the diagnostic log to the specified file path")
	flag.Parse()

	loadResult, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evman: config error: %v\n", err)
		os.Exit(1)
	}
	cfg := loadResult.Config

	for _, w := range loadResult.Warnings {
		fmt.Fprintf(os.Stderr, "evman: config warning: %s\n", w)
	}

	var logOut io.Writer = io.Discard
	if *logFlag != "" {
		logFile, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "evman: failed to open log %q: %v\n", *logFlag, err)
			os.Exit(1)
		}
		defer logFile.Close()
		logOut = logFile
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if cmd := selectCommand(*loginFlag, *logoutFlag, *listFlag); cmd != "" {
		if *logFlag != "" {
			log.SetOutput(logOut)
		}
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
		os.Exit(RunCommand(ctx, cmd, cfg, *debugFlag, os.Stdout, os.Stderr))
	}

	a, err := newApp(cfg, appOptions{debugPath: *debugFlag, desktop: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "evman: %v\n", err)
		os.Exit(1)
	}

	shutdownMgr := tui.NewShutdownManager()
	shutdownMgr.CancelRequests = cancel
	shutdownMgr.CloseCache = a.cache.Close
	shutdownMgr.Cleanup = a.closeDebugLog

	log.SetOutput(logOut)

	model := tui.NewModel(cfg, a.vm,
		tui.WithContext(ctx),
		tui.WithToasts(a.toasts),
		tui.WithPersistenceFlag(a.persistent),
		tui.WithOnShutdown(func() {
			if err := shutdownMgr.Shutdown(); err != nil {
				log.Printf("WARNING: shutdown: %v", err)
			}
		}),
	)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
	)

	go func() {
		select {
		case <-sigCh:
			if err := shutdownMgr.Shutdown(); err != nil {
				log.Printf("WARNING: shutdown: %v", err)
			}
			p.Quit()
		case <-ctx.Done():
			return
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "evman: %v\n", err)
		os.Exit(1)
	}
}

// selectCommand returns the non-interactive command requested by flags, or
// "" to run the TUI. The first set flag wins.
func selectCommand(login, logout, list bool) string {
	switch {
	case login:
		return cmdLogin
	case logout:
		return cmdLogout
	case list:
		return cmdList
	}
	return ""
}
