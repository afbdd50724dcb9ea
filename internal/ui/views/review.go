package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbaren/tempo/internal/billing"
	"github.com/mbaren/tempo/internal/db"
	"github.com/mbaren/tempo/internal/model"
	"github.com/mbaren/tempo/internal/track"
	"github.com/mbaren/tempo/internal/ui/theme"
)

// ReviewView is the approval queue: every submitted entry waiting on an
// approve or reject decision
type ReviewView struct {
	svc    *track.Service
	db     *db.DB
	width  int
	height int

	entries  []model.TimeEntry
	projects map[string]model.Project
	cursor   int

	// Reject flow collects a reason before dispatching
	rejecting   bool
	reasonInput textinput.Model

	statusMsg string
	errorMsg  string
}

// NewReviewView creates a new review view
func NewReviewView(svc *track.Service, database *db.DB) ReviewView {
	input := textinput.New()
	input.Placeholder = "Why is this being rejected?"
	input.CharLimit = 200

	return ReviewView{
		svc:         svc,
		db:          database,
		projects:    make(map[string]model.Project),
		reasonInput: input,
	}
}

// Init loads the queue
func (v ReviewView) Init() tea.Cmd {
	return v.load()
}

// SetSize sets the view dimensions
func (v ReviewView) SetSize(width, height int) ReviewView {
	v.width = width
	v.height = height
	v.reasonInput.Width = width - 12
	return v
}

// Local message types
type reviewLoadedMsg struct {
	entries  []model.TimeEntry
	projects []model.Project
	err      error
}
type reviewDecisionMsg struct {
	decision string
	err      error
}

func (v ReviewView) load() tea.Cmd {
	return func() tea.Msg {
		entries, err := v.db.ListEntries(track.EntryFilter{Status: model.StatusSubmitted})
		if err != nil {
			return reviewLoadedMsg{err: err}
		}
		projects, err := v.db.GetProjects()
		if err != nil {
			return reviewLoadedMsg{err: err}
		}
		return reviewLoadedMsg{entries: entries, projects: projects}
	}
}

// Update handles messages
func (v ReviewView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reviewLoadedMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.entries = msg.entries
		v.projects = make(map[string]model.Project, len(msg.projects))
		for _, p := range msg.projects {
			v.projects[p.ID] = p
		}
		if v.cursor >= len(v.entries) {
			v.cursor = max(0, len(v.entries)-1)
		}
		return v, nil

	case reviewDecisionMsg:
		if msg.err != nil {
			v.errorMsg = describeActionError(msg.decision, msg.err)
			return v, nil
		}
		v.errorMsg = ""
		v.statusMsg = fmt.Sprintf("Entry %s", msg.decision)
		return v, v.load()

	case tea.KeyMsg:
		if v.rejecting {
			return v.updateReject(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v ReviewView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.entries)-1 {
			v.cursor++
		}
	case "g":
		v.cursor = 0
	case "G":
		v.cursor = max(0, len(v.entries)-1)

	case "A", "enter":
		if entry := v.selected(); entry != nil {
			id := entry.ID
			return v, func() tea.Msg {
				_, err := v.svc.ApproveEntry(id)
				return reviewDecisionMsg{decision: "approved", err: err}
			}
		}

	case "R":
		if v.selected() != nil {
			v.rejecting = true
			v.reasonInput.SetValue("")
			v.reasonInput.Focus()
		}
	}
	return v, nil
}

func (v ReviewView) updateReject(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "escape":
		v.rejecting = false
		return v, nil

	case "enter":
		v.rejecting = false
		entry := v.selected()
		if entry == nil {
			return v, nil
		}
		id := entry.ID
		reason := strings.TrimSpace(v.reasonInput.Value())
		return v, func() tea.Msg {
			_, err := v.svc.RejectEntry(id, reason)
			return reviewDecisionMsg{decision: "rejected", err: err}
		}
	}

	var cmd tea.Cmd
	v.reasonInput, cmd = v.reasonInput.Update(msg)
	return v, cmd
}

// IsInputMode returns whether the view is capturing text input
func (v ReviewView) IsInputMode() bool {
	return v.rejecting
}

func (v ReviewView) selected() *model.TimeEntry {
	if v.cursor < 0 || v.cursor >= len(v.entries) {
		return nil
	}
	return &v.entries[v.cursor]
}

// View renders the review view
func (v ReviewView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles

	var b strings.Builder
	b.WriteString(styles.Title.Render("Review"))
	b.WriteString("\n")

	if len(v.entries) == 0 {
		b.WriteString(styles.Label.Render("Nothing waiting for review."))
		return b.String()
	}

	var totalSeconds int64
	var totalAmount float64
	for _, entry := range v.entries {
		totalSeconds += entry.DurationSeconds
		totalAmount += entry.BillableAmount
	}
	summary := fmt.Sprintf("%d pending · %s · %s",
		len(v.entries),
		billing.FormatDuration(totalSeconds),
		styles.Amount.Render(fmt.Sprintf("$%.2f", totalAmount)))
	b.WriteString(styles.Subtitle.Render(summary))
	b.WriteString("\n\n")

	for i, entry := range v.entries {
		b.WriteString(v.renderQueueLine(entry, i == v.cursor))
		b.WriteString("\n")
	}

	if v.rejecting {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Error).
			Padding(0, 1).
			MarginTop(1)
		b.WriteString(box.Render("Reject: " + v.reasonInput.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.errorMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Error).Render(v.errorMsg))
	} else if v.statusMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Info).Render(v.statusMsg))
	} else {
		b.WriteString(styles.Label.Render("A approve · R reject"))
	}
	return b.String()
}

func (v ReviewView) renderQueueLine(entry model.TimeEntry, selected bool) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	amount := styles.Label.Render("        -")
	if entry.IsBillable {
		amount = styles.Amount.Render(fmt.Sprintf("$%8.2f", entry.BillableAmount))
	}

	project := ""
	if entry.ProjectID != nil {
		if p, ok := v.projects[*entry.ProjectID]; ok {
			project = lipgloss.NewStyle().Foreground(t.Secondary).Render(" · " + p.Name)
		}
	}

	line := fmt.Sprintf("%s  %s  %s  %s%s",
		entry.StartTime.Local().Format("Jan 02"),
		billing.FormatDuration(entry.DurationSeconds),
		amount, entry.Title, project)

	if selected {
		return styles.EntrySelected.Render(line)
	}
	return styles.EntryNormal.Render(line)
}
