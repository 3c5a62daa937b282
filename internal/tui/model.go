package tui

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/evman/internal/config"
	"github.com/nixlim/evman/internal/events"
	"github.com/nixlim/evman/internal/manager"
	"github.com/nixlim/evman/internal/notify"
)

type ViewState int

const (
	ViewLogin ViewState = iota
	ViewEvents
)

// FormFocus is the element of the events view receiving keys.
type FormFocus int

const (
	FocusList FormFocus = iota
	FocusName
	FocusDescription
	FocusSubmit
)

const toastTick = 250 * time.Millisecond

type tickMsg time.Time

// resultMsg carries a finished request back to the Update loop.
type resultMsg struct {
	res manager.Result
}

// ToastSource supplies the notifications currently on screen.
type ToastSource interface {
	Active(now time.Time) []notify.Notification
}

type Model struct {
	width    int
	height   int
	keys     KeyMap
	quitting bool

	cfg config.Config
	ctx context.Context

	vm     *manager.ViewModel
	toasts ToastSource
	now    func() time.Time

	focus       FormFocus
	cursor      int
	name        textinput.Model
	description textarea.Model

	isPersistent bool

	onShutdown func()
}

type ModelOption func(*Model)

// WithContext sets the context every request runs under. Cancelling it
// aborts requests still in flight.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) { m.ctx = ctx }
}

func WithToasts(t ToastSource) ModelOption {
	return func(m *Model) { m.toasts = t }
}

func WithOnShutdown(fn func()) ModelOption {
	return func(m *Model) { m.onShutdown = fn }
}

func WithPersistenceFlag(isPersistent bool) ModelOption {
	return func(m *Model) { m.isPersistent = isPersistent }
}

func NewModel(cfg config.Config, vm *manager.ViewModel, opts ...ModelOption) Model {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 200
	name.Prompt = ""

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.ShowLineNumbers = false
	desc.SetHeight(3)

	m := Model{
		keys:        DefaultKeyMap(),
		cfg:         cfg,
		ctx:         context.Background(),
		vm:          vm,
		now:         time.Now,
		name:        name,
		description: desc,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.syncInputs()
	return m
}

// ViewState returns which screen is showing. It follows the session.
func (m Model) ViewState() ViewState {
	if m.vm.Authenticated() {
		return ViewEvents
	}
	return ViewLogin
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.prepare(m.vm.PrepareLoad), m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(toastTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// prepare reserves a request and returns the command that runs it. A
// duplicate of a pending request yields no command.
func (m Model) prepare(fn func() (manager.Request, error)) tea.Cmd {
	req, err := fn()
	if err != nil {
		if !errors.Is(err, manager.ErrInFlight) {
			log.Printf("WARNING: %v", err)
		}
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{res: req.Run(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeInputs()
		return m, nil

	case tickMsg:
		return m, m.tickCmd()

	case resultMsg:
		if m.vm.Apply(msg.res) {
			m.syncInputs()
			m.clampCursor()
			if msg.res.Err == nil && (msg.res.Op == manager.OpCreate || msg.res.Op == manager.OpUpdate) {
				m.setFocus(FocusList)
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	cmd := m.updateFocused(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQ) {
		return m.quit()
	}

	switch m.ViewState() {
	case ViewLogin:
		return m.handleLoginKey(msg)
	default:
		if m.focus == FocusList {
			return m.handleListKey(msg)
		}
		return m.handleFormKey(msg)
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.onShutdown != nil {
		m.onShutdown()
	}
	return m, tea.Quit
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Login):
		return m, m.prepare(m.vm.PrepareLogin)
	case key.Matches(msg, m.keys.Reload):
		return m, m.prepare(m.vm.PrepareLoad)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	evts := m.vm.Events()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(evts)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if e, ok := m.selected(evts); ok {
			m.vm.BeginEdit(e)
			m.syncInputs()
			cmd := m.setFocus(FocusName)
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if e, ok := m.selected(evts); ok {
			id := e.ID
			return m, m.prepare(func() (manager.Request, error) { return m.vm.PrepareDelete(id) })
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, m.prepare(m.vm.PrepareLoad)

	case key.Matches(msg, m.keys.Logout):
		m.vm.Logout()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.cancelEdit()
		return m, nil

	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.Enter):
		cmd := m.setFocus(FocusName)
		return m, cmd

	case key.Matches(msg, m.keys.ShiftTab):
		cmd := m.setFocus(FocusSubmit)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.vm.Form().Mode.Editing() {
			m.cancelEdit()
		}
		cmd := m.setFocus(FocusList)
		return m, cmd

	case key.Matches(msg, m.keys.Tab):
		cmd := m.setFocus(m.focus%FocusSubmit + 1)
		return m, cmd

	case key.Matches(msg, m.keys.ShiftTab):
		if m.focus == FocusName {
			cmd := m.setFocus(FocusList)
			return m, cmd
		}
		cmd := m.setFocus(m.focus - 1)
		return m, cmd

	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()

	case m.focus == FocusSubmit && key.Matches(msg, m.keys.Enter):
		return m, m.submit()

	case m.focus == FocusName && key.Matches(msg, m.keys.Enter):
		cmd := m.setFocus(FocusDescription)
		return m, cmd
	}

	cmd := m.updateFocused(msg)
	m.vm.SetFields(m.name.Value(), m.description.Value())
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	m.vm.SetFields(m.name.Value(), m.description.Value())
	form := m.vm.Form()
	return m.prepare(func() (manager.Request, error) { return m.vm.PrepareSubmit(form) })
}

func (m *Model) cancelEdit() {
	m.vm.CancelEdit()
	m.syncInputs()
}

// updateFocused forwards msg to whichever input has focus.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case FocusName:
		m.name, cmd = m.name.Update(msg)
	case FocusDescription:
		m.description, cmd = m.description.Update(msg)
	}
	return cmd
}

func (m *Model) setFocus(f FormFocus) tea.Cmd {
	m.focus = f
	m.name.Blur()
	m.description.Blur()
	switch f {
	case FocusName:
		return m.name.Focus()
	case FocusDescription:
		return m.description.Focus()
	}
	return nil
}

// syncInputs copies the view-model's form into the text inputs.
func (m *Model) syncInputs() {
	form := m.vm.Form()
	if m.name.Value() != form.Name {
		m.name.SetValue(form.Name)
	}
	if m.description.Value() != form.Description {
		m.description.SetValue(form.Description)
	}
}

func (m *Model) resizeInputs() {
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	m.name.Width = w
	m.description.SetWidth(w)
}

func (m *Model) clampCursor() {
	n := len(m.vm.Events())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected(evts events.Collection) (events.Event, bool) {
	if m.cursor < 0 || m.cursor >= len(evts) {
		return events.Event{}, false
	}
	return evts[m.cursor], true
}

func (m Model) submitLabel() string {
	if m.vm.Form().Mode.Editing() {
		return "Update Event"
	}
	return "Create Event"
}

func (m Model) headerIndicators() string {
	var parts []string
	if !m.isPersistent {
		parts = append(parts, "[No persistence]")
	}
	if m.vm.Busy(manager.OpLoad) {
		parts = append(parts, "[Loading]")
	}
	if m.vm.Busy(manager.OpCreate) || m.vm.Busy(manager.OpUpdate) || m.vm.Busy(manager.OpDelete) {
		parts = append(parts, "[Saving]")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + dimStyle.Render(strings.Join(parts, " "))
}

func (m Model) activeToasts() []notify.Notification {
	if m.toasts == nil {
		return nil
	}
	return m.toasts.Active(m.now())
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var output string
	switch m.ViewState() {
	case ViewLogin:
		output = m.renderLogin()
	case ViewEvents:
		output = m.renderEvents()
	}

	if m.height > 0 {
		lines := strings.Split(output, "\n")
		if len(lines) > m.height {
			lines = lines[:m.height]
			output = strings.Join(lines, "\n")
		}
	}

	return output
}
