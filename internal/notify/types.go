// Package notify carries user-facing outcome notifications: the toast
// queue the TUI renders, optional desktop notifications, and localised
// titles.
package notify

import "time"

// Level is the outcome a notification reports.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Message IDs, one per outcome. They key the locale files.
const (
	MsgEventCreated      = "EventCreated"
	MsgEventCreateFailed = "EventCreateFailed"
	MsgEventUpdated      = "EventUpdated"
	MsgEventUpdateFailed = "EventUpdateFailed"
	MsgEventDeleted      = "EventDeleted"
	MsgEventDeleteFailed = "EventDeleteFailed"
	MsgLoggedIn          = "LoggedIn"
	MsgLoginFailed       = "LoginFailed"
	MsgLoggedOut         = "LoggedOut"
)

// Notification is one transient message shown to the user.
type Notification struct {
	Level     Level
	MessageID string
	Title     string // localised text for MessageID
	Detail    string // error text, empty on success
	At        time.Time
}

// Sink receives notifications.
type Sink interface {
	// Notify delivers n. Implementations must not block.
	Notify(n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

func (f SinkFunc) Notify(n Notification) { f(n) }

// Fanout delivers each notification to every sink in order.
type Fanout []Sink

func (f Fanout) Notify(n Notification) {
	for _, s := range f {
		if s != nil {
			s.Notify(n)
		}
	}
}
