package notify

import "fmt"

// desktopTitle formats the title line used by the platform notifiers.
func desktopTitle(n Notification) string {
	return fmt.Sprintf("evman: %s", n.Title)
}

// truncateDetail shortens error text for a notification body.
func truncateDetail(s string) string {
	if len(s) <= 120 {
		return s
	}
	return s[:120] + "..."
}
