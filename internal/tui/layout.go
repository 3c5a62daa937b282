package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/evman/internal/events"
	"github.com/nixlim/evman/internal/notify"
)

type panelDimensions struct {
	formW, formH   int
	cardsW, cardsH int
	toastH         int
	headerH        int
}

const (
	minWidth  = 40
	minHeight = 16

	headerHeight = 1

	// name line, description box, submit button, borders
	formHeight = 10

	maxToasts = 3

	// card title line plus description line
	cardLines = 2
)

func computeDimensions(totalW, totalH int) panelDimensions {
	if totalW < minWidth {
		totalW = minWidth
	}
	if totalH < minHeight {
		totalH = minHeight
	}

	d := panelDimensions{
		headerH: headerHeight,
		toastH:  maxToasts,
		formW:   totalW,
		formH:   formHeight,
		cardsW:  totalW,
	}

	d.cardsH = totalH - d.headerH - d.formH - d.toastH
	if d.cardsH < 4 {
		d.cardsH = 4
	}

	return d
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	focusBorderColor = lipgloss.Color("63")

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("238"))

	buttonFocusStyle = buttonStyle.
				Bold(true).
				Background(lipgloss.Color("62"))

	editingBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("226")).
				Bold(true)

	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	loginBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("69")).
			Padding(1, 3)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

func renderBorderedPanelStyled(content string, w, h int, style lipgloss.Style) string {
	contentH := h - 2
	if contentH < 1 {
		contentH = 1
	}

	lines := strings.Split(content, "\n")
	if len(lines) > contentH {
		lines = lines[:contentH]
		content = strings.Join(lines, "\n")
	}

	return style.
		Width(w - 2).
		Height(contentH).
		Render(content)
}

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func (m Model) renderHeader(label, help string) string {
	title := " evman"
	viewLabel := " [" + label + "]"

	indicators := m.headerIndicators()

	padding := m.width - lipgloss.Width(title) - lipgloss.Width(viewLabel) - lipgloss.Width(indicators) - lipgloss.Width(help)
	if padding < 0 {
		padding = 0
	}

	return headerStyle.Width(m.width).Render(title + viewLabel + indicators + strings.Repeat(" ", padding) + help)
}

func (m Model) renderLogin() string {
	header := m.renderHeader("Login", "L:Login  q:Quit ")

	body := panelTitleStyle.Render("Event Manager") + "\n\n" +
		"Signed out. Creating, editing and deleting\n" +
		"events requires a login.\n\n" +
		dimStyle.Render("as "+m.cfg.Auth.Identifier) + "\n\n" +
		buttonFocusStyle.Render("[L] Login")
	box := loginBoxStyle.Render(body)

	bodyH := m.height - headerHeight - maxToasts
	if bodyH < lipgloss.Height(box) {
		bodyH = lipgloss.Height(box)
	}
	placed := lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "))

	return lipgloss.JoinVertical(lipgloss.Left, header, placed, m.renderToasts())
}

func (m Model) renderEvents() string {
	dims := computeDimensions(m.width, m.height)

	header := m.renderHeader("Events", m.headerHelp())
	form := m.renderFormPanel(dims.formW, dims.formH)
	cards := m.renderCardsPanel(dims.cardsW, dims.cardsH)

	return lipgloss.JoinVertical(lipgloss.Left, header, form, cards, m.renderToasts())
}

func (m Model) headerHelp() string {
	if m.focus == FocusList {
		return "e:Edit  d:Delete  r:Reload  Tab:Form  o:Logout  q:Quit "
	}
	if m.vm.Form().Mode.Editing() {
		return "Tab:Next  Ctrl+S:Save  Esc:Cancel edit "
	}
	return "Tab:Next  Ctrl+S:Save  Esc:Back "
}

func (m Model) renderFormPanel(w, h int) string {
	var sb strings.Builder

	title := "New Event"
	if mode := m.vm.Form().Mode; mode.Editing() {
		title = "Edit Event " + mode.Target().String()
	}
	sb.WriteString(panelTitleStyle.Render(title))
	sb.WriteString("\n")

	sb.WriteString(fieldLabel("Name", m.focus == FocusName))
	sb.WriteString(m.name.View())
	sb.WriteString("\n")
	sb.WriteString(fieldLabel("Description", m.focus == FocusDescription))
	sb.WriteString("\n")
	sb.WriteString(m.description.View())
	sb.WriteString("\n")

	btn := buttonStyle
	if m.focus == FocusSubmit {
		btn = buttonFocusStyle
	}
	sb.WriteString(btn.Render(m.submitLabel()))

	style := panelBorderStyle
	if m.focus != FocusList {
		style = style.BorderForeground(focusBorderColor)
	}
	return renderBorderedPanelStyled(sb.String(), w, h, style)
}

func fieldLabel(label string, focused bool) string {
	if focused {
		return selectedStyle.Render(label+":") + " "
	}
	return dimStyle.Render(label+":") + " "
}

func (m Model) renderCardsPanel(w, h int) string {
	evts := m.vm.Events()

	var sb strings.Builder
	sb.WriteString(panelTitleStyle.Render(fmt.Sprintf("Events (%d)", len(evts))))
	sb.WriteString("\n")

	contentH := h - 3
	if contentH < cardLines {
		contentH = cardLines
	}

	switch {
	case len(evts) == 0 && !m.vm.Loaded() && m.vm.LoadErr() != nil:
		sb.WriteString(dimStyle.Render("Could not load events. Press r to retry."))
	case len(evts) == 0 && !m.vm.Loaded():
		sb.WriteString(dimStyle.Render("Loading events..."))
	case len(evts) == 0:
		sb.WriteString(dimStyle.Render("No events yet."))
	default:
		visible := contentH / cardLines
		start, end := visibleWindow(m.cursor, len(evts), visible)
		for i := start; i < end; i++ {
			sb.WriteString(m.renderCard(evts[i], i == m.cursor && m.focus == FocusList, w-4))
			if i < end-1 {
				sb.WriteString("\n")
			}
		}
	}

	style := panelBorderStyle
	if m.focus == FocusList {
		style = style.BorderForeground(focusBorderColor)
	}
	return renderBorderedPanelStyled(sb.String(), w, h, style)
}

// visibleWindow returns the slice bounds of n items that keep cursor in
// view when only size fit.
func visibleWindow(cursor, n, size int) (int, int) {
	if size < 1 {
		size = 1
	}
	if n <= size {
		return 0, n
	}
	start := cursor - size + 1
	if start < 0 {
		start = 0
	}
	end := start + size
	if end > n {
		end = n
		start = n - size
	}
	return start, end
}

func (m Model) renderCard(e events.Event, selected bool, width int) string {
	title := fmt.Sprintf("#%s %s", e.ID, e.Attributes.Name)
	if m.vm.Form().Mode.Target() == e.ID {
		title += " " + editingBadgeStyle.Render("(editing)")
	}
	if selected {
		title = selectedStyle.Render(stripAnsi(title))
	}

	desc := strings.ReplaceAll(e.Attributes.Description, "\n", " ")
	if desc == "" {
		desc = "(no description)"
	}
	return title + "\n  " + dimStyle.Render(truncate(desc, width-2))
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen < 4 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func (m Model) renderToasts() string {
	active := m.activeToasts()
	if len(active) > maxToasts {
		active = active[len(active)-maxToasts:]
	}

	lines := make([]string, 0, maxToasts)
	for _, n := range active {
		lines = append(lines, renderToast(n, m.width))
	}
	for len(lines) < maxToasts {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func renderToast(n notify.Notification, width int) string {
	style := toastSuccessStyle
	mark := "✓"
	if n.Level == notify.LevelError {
		style = toastErrorStyle
		mark = "✗"
	}
	line := style.Render(" "+mark+" "+n.Title) + " "
	if n.Detail != "" {
		line += statusBarStyle.Render(truncate(n.Detail, width-lipgloss.Width(line)-1))
	}
	return line
}
