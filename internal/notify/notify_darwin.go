//go:build darwin

package notify

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// OSAScriptNotifier mirrors notifications to macOS via osascript.
// Delivery runs in a background goroutine so the UI never waits on it.
type OSAScriptNotifier struct {
	enabled bool
}

// NewOSAScriptNotifier creates a new macOS notification sender.
// If enabled is false, notifications are silently dropped.
func NewOSAScriptNotifier(enabled bool) *OSAScriptNotifier {
	return &OSAScriptNotifier{enabled: enabled}
}

// NewPlatformNotifier creates the platform-appropriate notifier for macOS.
func NewPlatformNotifier(enabled bool) Sink {
	return NewOSAScriptNotifier(enabled)
}

// Notify sends a macOS notification for n and returns immediately.
func (s *OSAScriptNotifier) Notify(n Notification) {
	if !s.enabled {
		return
	}

	title := desktopTitle(n)
	message := truncateDetail(n.Detail)
	if message == "" {
		message = n.Title
	}

	go func() {
		if err := sendOSANotification(title, message); err != nil {
			log.Printf("WARNING: failed to send macOS notification: %v", err)
		}
	}()
}

func sendOSANotification(title, message string) error {
	script := fmt.Sprintf(
		`display notification "%s" with title "%s"`,
		escapeAppleScript(message), escapeAppleScript(title),
	)
	cmd := exec.Command("osascript", "-e", script)
	return cmd.Run()
}

// escapeAppleScript escapes characters that could break AppleScript strings.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
