package notify

import "time"

// Localizer maps a message ID to display text.
type Localizer interface {
	T(id string) string
}

// Emitter turns operation outcomes into notifications on a Sink.
type Emitter struct {
	sink Sink
	loc  Localizer
	now  func() time.Time
}

// NewEmitter creates an Emitter. A nil loc uses message IDs as titles.
func NewEmitter(sink Sink, loc Localizer) *Emitter {
	return &Emitter{sink: sink, loc: loc, now: time.Now}
}

// Success emits a success notification for id.
func (e *Emitter) Success(id string) {
	e.emit(LevelSuccess, id, "")
}

// Failure emits an error notification for id carrying err's text.
func (e *Emitter) Failure(id string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	e.emit(LevelError, id, detail)
}

func (e *Emitter) emit(level Level, id, detail string) {
	if e == nil || e.sink == nil {
		return
	}
	title := id
	if e.loc != nil {
		title = e.loc.T(id)
	}
	e.sink.Notify(Notification{
		Level:     level,
		MessageID: id,
		Title:     title,
		Detail:    detail,
		At:        e.now(),
	})
}
