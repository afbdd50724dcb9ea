package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbaren/tempo/internal/db"
	"github.com/mbaren/tempo/internal/report"
	"github.com/mbaren/tempo/internal/track"
	"github.com/mbaren/tempo/internal/ui/theme"
)

// statsRange selects the reporting window
type statsRange int

const (
	rangeWeek statsRange = iota
	rangeMonth
	rangeAll
)

func (r statsRange) String() string {
	switch r {
	case rangeWeek:
		return "This week"
	case rangeMonth:
		return "This month"
	default:
		return "All time"
	}
}

// StatsView shows tracked hours, utilization, revenue, and per-project budget
// consumption
type StatsView struct {
	db     *db.DB
	width  int
	height int

	window   statsRange
	summary  report.Summary
	projects []report.ProjectUsage
	loaded   bool
	errorMsg string
}

// NewStatsView creates a new stats view
func NewStatsView(database *db.DB) StatsView {
	return StatsView{db: database, window: rangeWeek}
}

// Init loads the stats
func (v StatsView) Init() tea.Cmd {
	return v.load()
}

// SetSize sets the view dimensions
func (v StatsView) SetSize(width, height int) StatsView {
	v.width = width
	v.height = height
	return v
}

type statsLoadedMsg struct {
	summary  report.Summary
	projects []report.ProjectUsage
	err      error
}

// since returns the window start for the current range
func (v StatsView) since() time.Time {
	now := time.Now()
	switch v.window {
	case rangeWeek:
		// Week starts Monday
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		day := now.AddDate(0, 0, -(weekday - 1))
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)
	case rangeMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	default:
		return time.Time{}
	}
}

func (v StatsView) load() tea.Cmd {
	since := v.since()
	return func() tea.Msg {
		entries, err := v.db.ListEntries(track.EntryFilter{Since: since})
		if err != nil {
			return statsLoadedMsg{err: err}
		}
		projects, err := v.db.GetProjects()
		if err != nil {
			return statsLoadedMsg{err: err}
		}
		return statsLoadedMsg{
			summary:  report.Summarize(entries),
			projects: report.ByProject(entries, projects),
		}
	}
}

// Update handles messages
func (v StatsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.errorMsg = ""
		v.summary = msg.summary
		v.projects = msg.projects
		v.loaded = true
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "w":
			v.window = (v.window + 1) % 3
			v.loaded = false
			return v, v.load()
		case "r":
			return v, v.load()
		}
	}

	return v, nil
}

// View renders the stats view
func (v StatsView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles

	var b strings.Builder
	b.WriteString(styles.Title.Render("Stats"))
	b.WriteString("  ")
	b.WriteString(styles.Subtitle.Render(v.window.String()))
	b.WriteString("\n\n")

	if v.errorMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Error).Render(v.errorMsg))
		return b.String()
	}
	if !v.loaded {
		b.WriteString(styles.Label.Render("Loading..."))
		return b.String()
	}

	b.WriteString(v.renderCards())
	b.WriteString("\n\n")
	b.WriteString(v.renderProjects())
	b.WriteString("\n\n")
	b.WriteString(styles.Label.Render("tab change range · r refresh"))
	return b.String()
}

// renderCards renders the headline figure cards
func (v StatsView) renderCards() string {
	t := theme.Current.Theme
	s := v.summary

	card := func(label, value string, color lipgloss.Color) string {
		valueStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
		labelStyle := lipgloss.NewStyle().Foreground(t.Subtle)
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2)
		return box.Render(lipgloss.JoinVertical(lipgloss.Left,
			valueStyle.Render(value),
			labelStyle.Render(label)))
	}

	cards := []string{
		card("tracked", fmt.Sprintf("%.1fh", s.TotalHours), t.Primary),
		card("billable", fmt.Sprintf("%.1fh", s.BillableHours), t.Billable),
		card("utilization", fmt.Sprintf("%.0f%%", s.Utilization), t.Secondary),
		card("revenue", fmt.Sprintf("$%.2f", s.Revenue), t.Billable),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)

	extra := fmt.Sprintf("%d entries", s.EntryCount)
	if s.RunningCount > 0 {
		extra += lipgloss.NewStyle().Foreground(t.StatusRunning).Render(
			fmt.Sprintf(" · %d running", s.RunningCount))
	}
	if s.PendingReview > 0 {
		extra += lipgloss.NewStyle().Foreground(t.StatusSubmitted).Render(
			fmt.Sprintf(" · %d pending review", s.PendingReview))
	}

	return row + "\n" + theme.Current.Styles.Label.Render(extra)
}

// renderProjects renders the per-project budget table
func (v StatsView) renderProjects() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	if len(v.projects) == 0 {
		return styles.Label.Render("No project activity in this range.")
	}

	var b strings.Builder
	b.WriteString(styles.Subtitle.Render("By project"))
	b.WriteString("\n")

	for _, usage := range v.projects {
		if usage.Hours == 0 && usage.Spent == 0 {
			continue
		}

		name := lipgloss.NewStyle().Foreground(t.Foreground).Render(fmt.Sprintf("%-24.24s", usage.Project.Name))
		hours := styles.Label.Render(fmt.Sprintf("%6.1fh", usage.Hours))
		spent := styles.Amount.Render(fmt.Sprintf("$%10.2f", usage.Spent))

		budget := ""
		if usage.Project.Budget != nil {
			if usage.OverBudget {
				budget = lipgloss.NewStyle().Foreground(t.Error).Bold(true).Render("  over budget")
			} else {
				budget = styles.Label.Render(fmt.Sprintf("  $%.2f left", usage.Remaining))
			}
		}

		b.WriteString(fmt.Sprintf("  %s %s %s%s\n", name, hours, spent, budget))
	}
	return strings.TrimRight(b.String(), "\n")
}
