//go:build linux

package notify

import (
	"log"
	"os/exec"
)

// NotifySendNotifier mirrors notifications to the Linux desktop via
// notify-send. Delivery runs in a background goroutine so the UI never
// waits on it.
type NotifySendNotifier struct {
	// enabled controls whether notifications are actually sent.
	enabled bool
}

// NewNotifySendNotifier creates a new Linux notification sender.
// If enabled is false, notifications are silently dropped.
func NewNotifySendNotifier(enabled bool) *NotifySendNotifier {
	return &NotifySendNotifier{enabled: enabled}
}

// NewPlatformNotifier creates the platform-appropriate notifier for Linux.
func NewPlatformNotifier(enabled bool) Sink {
	return NewNotifySendNotifier(enabled)
}

// Notify sends a desktop notification for n and returns immediately.
func (s *NotifySendNotifier) Notify(n Notification) {
	if !s.enabled {
		return
	}

	title := desktopTitle(n)
	body := truncateDetail(n.Detail)

	urgency := "normal"
	if n.Level == LevelError {
		urgency = "critical"
	}

	go func() {
		if err := sendNotifySend(title, body, urgency); err != nil {
			log.Printf("WARNING: failed to send Linux notification: %v", err)
		}
	}()
}

func sendNotifySend(title, body, urgency string) error {
	cmd := exec.Command("notify-send", "--urgency", urgency, "--app-name", "evman", title, body)
	return cmd.Run()
}
