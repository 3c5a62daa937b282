package manager

import "github.com/nixlim/evman/internal/events"

// FormMode says which request Submit issues: Create, or Edit of one event.
// The zero value is Create.
type FormMode struct {
	target events.ID
}

// CreateMode returns the mode in which Submit creates a new event.
func CreateMode() FormMode { return FormMode{} }

// EditMode returns the mode in which Submit updates event id.
func EditMode(id events.ID) FormMode { return FormMode{target: id} }

// Editing reports whether the mode targets an existing event.
func (m FormMode) Editing() bool { return !m.target.IsZero() }

// Target returns the edited event's ID, or events.NoID in Create mode.
func (m FormMode) Target() events.ID { return m.target }

// Op returns the operation Submit performs in this mode.
func (m FormMode) Op() Op {
	if m.Editing() {
		return OpUpdate
	}
	return OpCreate
}

func (m FormMode) String() string {
	if m.Editing() {
		return "edit(" + m.target.String() + ")"
	}
	return "create"
}

// Form is the user's pending input.
type Form struct {
	Name        string
	Description string
	Mode        FormMode
}

// Attributes returns the fields as sent to the API.
func (f Form) Attributes() events.Attributes {
	return events.Attributes{Name: f.Name, Description: f.Description}
}

// formFor returns the form pre-filled with e's fields in Edit mode.
func formFor(e events.Event) Form {
	return Form{
		Name:        e.Attributes.Name,
		Description: e.Attributes.Description,
		Mode:        EditMode(e.ID),
	}
}
