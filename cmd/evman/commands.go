package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nixlim/evman/internal/config"
	"github.com/nixlim/evman/internal/events"
	"github.com/nixlim/evman/internal/notify"
)

const (
	cmdLogin  = "login"
	cmdLogout = "logout"
	cmdList   = "list"
)

// RunCommand performs one operation without the TUI and returns the
// process exit code. Notifications are printed to stderr.
//
// Exit codes:
//   - 0: success
//   - 1: error
func RunCommand(ctx context.Context, name string, cfg config.Config, debugPath string, stdout, stderr io.Writer) int {
	printer := notify.SinkFunc(func(n notify.Notification) {
		if n.Detail != "" {
			fmt.Fprintf(stderr, "%s (%s)\n", n.Title, n.Detail)
			return
		}
		fmt.Fprintln(stderr, n.Title)
	})

	a, err := newApp(cfg, appOptions{debugPath: debugPath, extra: printer})
	if err != nil {
		fmt.Fprintf(stderr, "evman: %v\n", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(stderr, "evman: %v\n", err)
		}
	}()

	if !a.persistent && (name == cmdLogin || name == cmdLogout) {
		fmt.Fprintln(stderr, "evman: warning: no credential database, the token will not outlive this process")
	}

	switch name {
	case cmdLogin:
		if err := a.vm.Login(ctx); err != nil {
			return 1
		}
		return 0

	case cmdLogout:
		a.vm.Logout()
		return 0

	case cmdList:
		if err := a.vm.Load(ctx); err != nil {
			fmt.Fprintf(stderr, "evman: fetching events: %v\n", err)
			return 1
		}
		if err := printEvents(stdout, a.vm.Events()); err != nil {
			fmt.Fprintf(stderr, "evman: %v\n", err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(stderr, "evman: unknown command %q\n", name)
		return 1
	}
}

func printEvents(w io.Writer, evts events.Collection) error {
	if len(evts) == 0 {
		_, err := fmt.Fprintln(w, "No events.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, e := range evts {
		desc := strings.ReplaceAll(e.Attributes.Description, "\n", " ")
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Attributes.Name, desc)
	}
	return tw.Flush()
}
