package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbaren/tempo/internal/app"
	"github.com/mbaren/tempo/internal/ui/theme"
	"github.com/mbaren/tempo/internal/ui/views"
)

// Debug logging (enable by setting TEMPO_DEBUG=1)
var rootDebugLog *os.File

func init() {
	if os.Getenv("TEMPO_DEBUG") == "1" {
		rootDebugLog, _ = os.OpenFile("/tmp/tempo-root-debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	}
}

func rootDebugf(format string, args ...interface{}) {
	if rootDebugLog != nil {
		fmt.Fprintf(rootDebugLog, format+"\n", args...)
		rootDebugLog.Sync()
	}
}

// RootModel is the main application model that manages views
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView View
	timerView   views.TimerView
	entriesView views.EntriesView
	reviewView  views.ReviewView
	statsView   views.StatsView
	helpVisible bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	return RootModel{
		app:         application,
		keys:        DefaultKeyMap(),
		help:        h,
		currentView: ViewTimer,
		timerView:   views.NewTimerView(application.Tracker, application.DB, application.Notifier, application.Settings.Idle),
		entriesView: views.NewEntriesView(application.Tracker, application.DB),
		reviewView:  views.NewReviewView(application.Tracker, application.DB),
		statsView:   views.NewStatsView(application.DB),
	}
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	// The timer view boots first so a persisted running entry is recovered
	// before the user touches anything
	cmd := m.timerView.Init()
	rootDebugf("RootModel.Init() returning cmd: %v", cmd != nil)
	return cmd
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	rootDebugf("RootModel.Update received msg type: %T", msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Update child views with new size
		// Reserve space for header (2 lines) and footer (2 lines)
		contentHeight := m.height - 4
		m.timerView = m.timerView.SetSize(m.width, contentHeight)
		m.entriesView = m.entriesView.SetSize(m.width, contentHeight)
		m.reviewView = m.reviewView.SetSize(m.width, contentHeight)
		m.statsView = m.statsView.SetSize(m.width, contentHeight)

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		// Every keypress is user activity for the idle tracker, whichever
		// view handles it; otherwise working in the entries or review
		// screens would count as being away from the keyboard
		if m.currentView != ViewTimer {
			m.timerView = m.timerView.RecordInteraction(time.Now())
		}

		// Check if current view is in input mode
		isInputMode := false
		switch m.currentView {
		case ViewTimer:
			isInputMode = m.timerView.IsInputMode()
		case ViewEntries:
			isInputMode = m.entriesView.IsInputMode()
		case ViewReview:
			isInputMode = m.reviewView.IsInputMode()
		}

		// Global keybindings
		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}
			// Otherwise, let the view handle 'q' as a character

		case key.Matches(msg, m.keys.ThemeCycle):
			// ctrl+t always works (unlikely to type)
			m.statusMsg = fmt.Sprintf("Theme: %s", theme.Cycle())
			return m, nil
		}

		// Skip other global keys when in input mode
		if isInputMode {
			break // Fall through to view delegation
		}

		// These only work when NOT in input mode
		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return m, nil

		// View switching (1-4 keys)
		case key.Matches(msg, m.keys.TimerView):
			m.currentView = ViewTimer
			return m, m.timerView.Init()
		case key.Matches(msg, m.keys.EntriesView):
			m.currentView = ViewEntries
			return m, m.entriesView.Init()
		case key.Matches(msg, m.keys.ReviewView):
			m.currentView = ViewReview
			return m, m.reviewView.Init()
		case key.Matches(msg, m.keys.StatsView):
			m.currentView = ViewStats
			return m, m.statsView.Init()
		}

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil
	}

	// Delegate to current view. The timer view additionally sees every
	// non-key message so its tick loop keeps running while other views are
	// on screen.
	rootDebugf("Delegating to view: %v", m.currentView)
	_, isKey := msg.(tea.KeyMsg)
	if m.currentView == ViewTimer || !isKey {
		newTimerView, timerCmd := m.timerView.Update(msg)
		m.timerView = newTimerView.(views.TimerView)
		cmds = append(cmds, timerCmd)
	}

	switch m.currentView {
	case ViewEntries:
		newEntriesView, cmd := m.entriesView.Update(msg)
		m.entriesView = newEntriesView.(views.EntriesView)
		cmds = append(cmds, cmd)
	case ViewReview:
		newReviewView, cmd := m.reviewView.Update(msg)
		m.reviewView = newReviewView.(views.ReviewView)
		cmds = append(cmds, cmd)
	case ViewStats:
		newStatsView, cmd := m.statsView.Update(msg)
		m.statsView = newStatsView.(views.StatsView)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	styles := theme.Current.Styles
	var sections []string

	// Header
	header := m.renderHeader()
	sections = append(sections, header)

	// Content area
	// Reserve: 1 line for header + 3 lines for footer (status + 2 hint lines)
	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight-- // Extra line for status message
	}
	var content string

	if m.helpVisible {
		content = m.renderHelp()
	} else {
		switch m.currentView {
		case ViewTimer:
			content = m.timerView.View()
		case ViewEntries:
			content = m.entriesView.View()
		case ViewReview:
			content = m.reviewView.View()
		case ViewStats:
			content = m.statsView.View()
		default:
			content = styles.Panel.Render("View not implemented")
		}
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)

	// Footer
	footer := m.renderFooter()
	sections = append(sections, footer)

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("tempo")

	// View indicator
	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	viewIndicator := viewStyle.Render(fmt.Sprintf("[%s]", m.currentView.String()))

	// A running timer stays visible from every view
	tracking := ""
	if m.timerView.Running() {
		tracking = lipgloss.NewStyle().
			Foreground(t.StatusRunning).
			Bold(true).
			Padding(0, 1).
			Render("● tracking")
	}

	// Theme indicator
	themeIndicator := viewStyle.Render(fmt.Sprintf("theme: %s", t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator, tracking)
	rightSide := themeIndicator

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	// Helper to format key hints
	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	// Show error or status message on first line if present
	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	// Build context-aware hint lines
	var line1, line2 string

	switch m.currentView {
	case ViewTimer:
		if m.timerView.IsInputMode() {
			line1 = key("enter", "done") + sep + key("esc", "cancel")
			line2 = ""
		} else {
			line1 = key("space", "start/stop") + sep +
				key("i", "description") + sep +
				key("tab", "project") + sep +
				key("ctrl+b", "billable")
			line2 = key("1-4", "views") + sep +
				key("ctrl+t", "theme") + sep +
				key("?", "help")
		}

	case ViewEntries:
		if m.entriesView.IsInputMode() {
			line1 = key("enter", "save") + sep +
				key("ctrl+p", "project") + sep +
				key("esc", "cancel")
			line2 = ""
		} else {
			line1 = key("enter", "edit") + sep +
				key("a", "add") + sep +
				key("d", "delete") + sep +
				key("s", "submit") + sep +
				key("L", "lock") + sep +
				key("b", "billable")
			line2 = key("j/k", "navigate") + sep +
				key("1-4", "views") + sep +
				key("?", "help")
		}

	case ViewReview:
		if m.reviewView.IsInputMode() {
			line1 = key("enter", "reject") + sep + key("esc", "cancel")
			line2 = ""
		} else {
			line1 = key("A", "approve") + sep +
				key("R", "reject") + sep +
				key("j/k", "navigate")
			line2 = key("1-4", "views") + sep +
				key("ctrl+t", "theme") + sep +
				key("?", "help")
		}

	case ViewStats:
		line1 = key("tab", "range") + sep +
			key("r", "refresh")
		line2 = key("1-4", "views") + sep +
			key("ctrl+t", "theme") + sep +
			key("?", "help")

	default:
		line1 = key("1-4", "views") + sep + key("?", "help")
	}

	// Build footer
	var lines []string

	if statusLine != "" {
		lines = append(lines, statusLine)
	}
	if line1 != "" {
		lines = append(lines, line1)
	}
	if line2 != "" {
		lines = append(lines, line2)
	}

	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	var b strings.Builder

	b.WriteString(titleStyle.Render("Tempo Help"))
	b.WriteString("\n\n")

	section := func(name string, rows [][]string) {
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
		for _, kv := range rows {
			b.WriteString(keyStyle.Render(kv[0]))
			b.WriteString(descStyle.Render(kv[1]))
			b.WriteString("\n")
		}
	}

	section("Timer", [][]string{
		{"space", "Start or stop the timer"},
		{"tab", "Cycle project"},
		{"ctrl+b", "Toggle billable"},
	})

	section("Entries", [][]string{
		{"↑/k ↓/j", "Navigate up/down"},
		{"g / G", "Go to top/bottom"},
		{"enter", "Edit entry"},
		{"a", "Add manual entry"},
		{"d", "Delete entry"},
		{"s", "Submit for review"},
		{"L", "Lock entry"},
		{"b", "Toggle billable"},
	})

	section("Review", [][]string{
		{"A / enter", "Approve entry"},
		{"R", "Reject entry (asks for a reason)"},
	})

	section("Views", [][]string{
		{"1", "Timer"},
		{"2", "Entries"},
		{"3", "Review"},
		{"4", "Stats"},
		{"?", "Toggle this help"},
	})

	section("System", [][]string{
		{"ctrl+t", "Cycle theme"},
		{"q / ctrl+c", "Quit"},
	})

	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? to close"))

	return b.String()
}
