package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sethvargo/go-retry"

	"github.com/mbaren/tempo/internal/billing"
	"github.com/mbaren/tempo/internal/db"
	"github.com/mbaren/tempo/internal/model"
	"github.com/mbaren/tempo/internal/notify"
	"github.com/mbaren/tempo/internal/timer"
	"github.com/mbaren/tempo/internal/track"
	"github.com/mbaren/tempo/internal/ui/theme"
)

// TimerView is the live timer screen: a ticking clock backed by the persisted
// running entry, with description/project/billable form state that survives
// restarts through reconciliation.
type TimerView struct {
	svc      *track.Service
	db       *db.DB
	notifier *notify.Notifier
	idleCfg  timer.IdleConfig
	width    int
	height   int

	// Form state
	description   textinput.Model
	projects      []model.Project
	projectCursor int // 0 = no project, 1..n = projects[i-1]
	billable      bool

	// Live timer state
	running *model.TimeEntry
	elapsed int64
	idle    *timer.Tracker

	// Idle prompt (IdleAsk policy)
	promptIdle  bool
	idleSeconds int64

	// An eight-hour timer is almost always a forgotten one; warn once
	longWarned bool

	// A store request is in flight; start/stop stay disabled until it
	// resolves so a fast stop-then-start can never run two timers
	pending bool

	statusMsg string
}

// NewTimerView creates a new timer view
func NewTimerView(svc *track.Service, database *db.DB, notifier *notify.Notifier, idleCfg timer.IdleConfig) TimerView {
	input := textinput.New()
	input.Placeholder = "What are you working on?"
	input.CharLimit = 200

	return TimerView{
		svc:         svc,
		db:          database,
		notifier:    notifier,
		idleCfg:     idleCfg,
		description: input,
		billable:    true,
	}
}

// Init initializes the timer view
func (v TimerView) Init() tea.Cmd {
	return v.load()
}

// SetSize sets the view dimensions
func (v TimerView) SetSize(width, height int) TimerView {
	v.width = width
	v.height = height
	v.description.Width = width - 8
	return v
}

// Running reports whether a timer is active (used by the root for the header)
func (v TimerView) Running() bool {
	return v.running != nil
}

// Local message types
type timerLoadedMsg struct {
	recovered *timer.Recovered
	projects  []model.Project
	err       error
}
type timerStartedMsg struct {
	entry *model.TimeEntry
	err   error
}
type timerStoppedMsg struct {
	entry *model.TimeEntry
	err   error
}
type timerTickMsg struct{}

const longRunningSeconds = 8 * 3600

// tickCmd sends tick messages every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg{}
	})
}

// load reads projects and reconciles any persisted running entry into live
// display state, so a reload never loses a ticking timer
func (v TimerView) load() tea.Cmd {
	return func() tea.Msg {
		projects, err := v.db.GetProjects()
		if err != nil {
			return timerLoadedMsg{err: err}
		}

		entries, err := v.db.ListEntries(track.EntryFilter{Status: model.StatusRunning})
		if err != nil {
			return timerLoadedMsg{err: err}
		}
		recovered, err := timer.Reconcile(entries)
		if err != nil {
			// More than one running entry: surface it, don't pick one
			return timerLoadedMsg{err: err}
		}

		return timerLoadedMsg{recovered: recovered, projects: projects}
	}
}

// startCmd creates the running entry through the lifecycle service
func (v TimerView) startCmd() tea.Cmd {
	description := v.description.Value()
	projectID := v.selectedProjectID()
	billable := v.billable

	return func() tea.Msg {
		entry, err := v.svc.StartTimer(track.StartParams{
			Title:       description,
			Description: description,
			ProjectID:   projectID,
			Billable:    &billable,
		})
		return timerStartedMsg{entry: entry, err: err}
	}
}

// stopCmd finalizes the running entry. Transient store failures are retried
// with backoff; guard violations are not.
func (v TimerView) stopCmd() tea.Cmd {
	id := v.running.ID
	discard := int64(0)
	if v.idle != nil {
		discard = v.idle.DiscardedSeconds()
	}

	return func() tea.Msg {
		var stopped *model.TimeEntry
		backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
		err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
			entry, err := v.svc.StopTimer(id, discard)
			if err != nil {
				var invalid *track.InvalidTransitionError
				if errors.As(err, &invalid) || errors.Is(err, track.ErrNotFound) {
					return err // permanent
				}
				return retry.RetryableError(err)
			}
			stopped = entry
			return nil
		})
		return timerStoppedMsg{entry: stopped, err: err}
	}
}

// Update handles messages
func (v TimerView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerLoadedMsg:
		if msg.err != nil {
			v.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return v, nil
		}
		v.projects = msg.projects
		if msg.recovered != nil {
			entry := msg.recovered.Entry
			v.running = &entry
			v.elapsed = timer.Elapsed(&entry, time.Now())
			// Restore form state so edits made before a restart keep
			// their attribution
			v.description.SetValue(msg.recovered.Description)
			v.billable = msg.recovered.IsBillable
			v.projectCursor = v.cursorForProject(msg.recovered.ProjectID)
			v.idle = timer.NewTracker(v.idleCfg, time.Now())
			v.statusMsg = "Recovered running timer"
			return v, tickCmd()
		}
		return v, nil

	case timerStartedMsg:
		v.pending = false
		if msg.err != nil {
			if errors.Is(msg.err, track.ErrTimerRunning) {
				v.statusMsg = "A timer is already running — stop it first"
			} else {
				v.statusMsg = fmt.Sprintf("Start failed: %v", msg.err)
			}
			return v, nil
		}
		v.running = msg.entry
		v.elapsed = 0
		v.idle = timer.NewTracker(v.idleCfg, time.Now())
		v.longWarned = false
		v.statusMsg = "Timer started"
		return v, tickCmd()

	case timerStoppedMsg:
		v.pending = false
		if msg.err != nil {
			// The entry is still running in the store; keep ticking from
			// where we were rather than dropping elapsed time
			v.statusMsg = fmt.Sprintf("Stop failed, timer still running: %v", msg.err)
			return v, nil
		}
		if v.notifier != nil {
			v.notifier.SendTimerStopped(msg.entry.Title, msg.entry.DurationSeconds)
		}
		v.statusMsg = fmt.Sprintf("Logged %s (%s)",
			billing.FormatDuration(msg.entry.DurationSeconds),
			formatAmount(msg.entry.BillableAmount, msg.entry.IsBillable))
		v.running = nil
		v.elapsed = 0
		v.idle = nil
		v.promptIdle = false
		v.description.SetValue("")
		return v, nil

	case timerTickMsg:
		if v.running == nil {
			return v, nil
		}
		now := time.Now()
		// Rebuild from the persisted start time every tick instead of
		// incrementing a counter, so the display stays correct however
		// long the process was suspended
		if v.idle == nil || !v.idle.Paused() {
			v.elapsed = timer.Elapsed(v.running, now)
			// Paused spans were discarded at resume; the display has to
			// agree with what will be billed
			if v.idle != nil && v.idleCfg.Policy == timer.IdlePause {
				v.elapsed -= v.idle.DiscardedSeconds()
				if v.elapsed < 0 {
					v.elapsed = 0
				}
			}
		}
		if v.idle != nil {
			if _, justWentIdle := v.idle.Check(now); justWentIdle {
				if v.idleCfg.Policy == timer.IdleAsk {
					v.promptIdle = true
				}
				if v.notifier != nil {
					v.notifier.SendIdleDetected(v.running.Title, v.idleCfg.TimeoutMinutes)
				}
			}
			// Keep the prompt's away time live while the period is open
			if v.promptIdle {
				if open := v.idle.IdleFor(now); open > 0 {
					v.idleSeconds = open
				}
			}
		}
		if !v.longWarned && v.elapsed >= longRunningSeconds {
			v.longWarned = true
			if v.notifier != nil {
				v.notifier.SendLongRunning(v.running.Title, time.Duration(v.elapsed)*time.Second)
			}
		}
		return v, tickCmd()

	case tea.KeyMsg:
		v = v.touchIdle(time.Now())

		// Idle prompt takes over key handling until answered
		if v.promptIdle {
			switch msg.String() {
			case "y", "enter":
				v.promptIdle = false
				v.statusMsg = "Idle time kept"
			case "n":
				v.idle.Discard(v.idleSeconds)
				v.promptIdle = false
				v.statusMsg = fmt.Sprintf("Discarding %s of idle time at stop", billing.FormatDuration(v.idleSeconds))
			}
			return v, nil
		}

		// Description editing is an explicit mode so single-key controls
		// and view switching stay usable
		if v.description.Focused() {
			switch msg.String() {
			case "enter", "escape":
				v.description.Blur()
				return v, nil
			}
			var cmd tea.Cmd
			v.description, cmd = v.description.Update(msg)
			return v, cmd
		}

		switch msg.String() {
		case " ":
			if v.pending {
				return v, nil // request in flight, affordance disabled
			}
			if v.running != nil {
				v.pending = true
				v.statusMsg = "Stopping..."
				return v, v.stopCmd()
			}
			if strings.TrimSpace(v.description.Value()) == "" {
				v.statusMsg = "Enter a description first"
				return v, nil
			}
			v.pending = true
			v.statusMsg = "Starting..."
			return v, v.startCmd()

		case "enter", "i":
			if v.running == nil {
				v.description.Focus()
			}
			return v, nil

		case "tab":
			if v.projectCursor < len(v.projects) {
				v.projectCursor++
			} else {
				v.projectCursor = 0
			}
			return v, nil

		case "ctrl+b":
			v.billable = !v.billable
			return v, nil
		}
	}

	return v, nil
}

// touchIdle records a user interaction with the idle tracker and resolves an
// idle period that just ended according to the policy
func (v TimerView) touchIdle(now time.Time) TimerView {
	if v.idle == nil {
		return v
	}
	ended, idleSeconds := v.idle.Touch(now)
	if !ended {
		return v
	}
	switch v.idleCfg.Policy {
	case timer.IdleDiscard:
		v.idle.Discard(idleSeconds)
		v.statusMsg = fmt.Sprintf("Discarding %s of idle time at stop", billing.FormatDuration(idleSeconds))
	case timer.IdlePause:
		// The tracker already marked the span for subtraction
		v.statusMsg = fmt.Sprintf("Clock resumed, %s paused out", billing.FormatDuration(idleSeconds))
	case timer.IdleAsk:
		v.idleSeconds = idleSeconds
	}
	return v
}

// RecordInteraction notes user activity that happened in another view.
// Working anywhere in the app counts against idleness; only keys this view
// handles itself arrive here as tea.KeyMsg.
func (v TimerView) RecordInteraction(now time.Time) TimerView {
	return v.touchIdle(now)
}

// selectedProjectID resolves the project cursor to an id
func (v TimerView) selectedProjectID() *string {
	if v.projectCursor == 0 || v.projectCursor > len(v.projects) {
		return nil
	}
	id := v.projects[v.projectCursor-1].ID
	return &id
}

// cursorForProject finds the cursor position for a project id
func (v TimerView) cursorForProject(id *string) int {
	if id == nil {
		return 0
	}
	for i, p := range v.projects {
		if p.ID == *id {
			return i + 1
		}
	}
	return 0
}

// View renders the timer view
func (v TimerView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)
	sections = append(sections, titleStyle.Render("Timer"))

	sections = append(sections, v.renderClock())

	// Description input
	sections = append(sections, theme.Current.Styles.Label.Render("Description")+"\n"+v.description.View())

	// Project selector
	sections = append(sections, v.renderProjectLine())

	// Billable flag
	billableStyle := lipgloss.NewStyle().Foreground(t.NonBillable)
	billableLabel := "not billable"
	if v.billable {
		billableStyle = lipgloss.NewStyle().Foreground(t.Billable)
		billableLabel = "billable"
	}
	sections = append(sections, theme.Current.Styles.Label.Render("Billing: ")+billableStyle.Render("$ "+billableLabel))

	// Idle prompt
	if v.promptIdle {
		promptStyle := lipgloss.NewStyle().
			Foreground(t.Warning).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Warning).
			Padding(0, 1).
			MarginTop(1)
		sections = append(sections, promptStyle.Render(fmt.Sprintf(
			"Away for %s — keep that time? y keep / n discard",
			billing.FormatDuration(v.idleSeconds))))
	}

	if v.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(t.Info).
			MarginTop(1)
		sections = append(sections, statusStyle.Render(v.statusMsg))
	}

	sections = append(sections, v.renderControls())

	return strings.Join(sections, "\n")
}

// renderClock renders the big elapsed-time display
func (v TimerView) renderClock() string {
	t := theme.Current.Theme

	var color lipgloss.Color
	var stateLabel string
	switch {
	case v.pending:
		color = t.Warning
		stateLabel = "SAVING"
	case v.running != nil && v.idle != nil && v.idle.Paused():
		color = t.Warning
		stateLabel = "IDLE"
	case v.running != nil:
		color = t.StatusRunning
		stateLabel = "TRACKING"
	default:
		color = t.Subtle
		stateLabel = "READY"
	}

	bigTime := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Padding(1, 4).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color)

	labelStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(color)

	clock := billing.FormatDuration(v.elapsed)

	// Live earnings preview: raw elapsed time, rounding only applies at stop
	earnings := ""
	if v.running != nil && v.running.IsBillable && v.running.HourlyRate > 0 {
		amount := billing.ComputeBillableAmount(v.elapsed, v.running.HourlyRate, true)
		earnings = lipgloss.NewStyle().Foreground(t.Billable).Render(fmt.Sprintf("≈ $%.2f", amount))
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		labelStyle.Render(stateLabel),
		bigTime.Render(clock),
		earnings,
	)
}

// renderProjectLine renders the project selector
func (v TimerView) renderProjectLine() string {
	t := theme.Current.Theme

	name := "(no project)"
	rate := ""
	budget := ""
	if id := v.selectedProjectID(); id != nil {
		p := v.projects[v.projectCursor-1]
		name = p.Name
		rate = fmt.Sprintf(" @ $%.0f/h", p.HourlyRate)
		switch {
		case p.OverBudget():
			budget = lipgloss.NewStyle().Foreground(t.Error).Render(" over budget")
		case p.Budget != nil:
			budget = lipgloss.NewStyle().Foreground(t.Warning).Render(
				fmt.Sprintf(" $%.0f left", p.BudgetRemaining()))
		}
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.Secondary)
	return theme.Current.Styles.Label.Render("Project: ") +
		nameStyle.Render(name) +
		theme.Current.Styles.Label.Render(rate) +
		budget +
		theme.Current.Styles.Label.Render("  (tab to change)")
}

// renderControls renders the control hints
func (v TimerView) renderControls() string {
	t := theme.Current.Theme

	controlStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		MarginTop(2)

	var controls string
	switch {
	case v.pending:
		controls = "waiting for store..."
	case v.description.Focused():
		controls = "enter done • esc cancel"
	case v.running != nil:
		controls = "space stop"
	default:
		controls = "space start • i description • tab project • ctrl+b billable"
	}

	return controlStyle.Render(controls)
}

// IsInputMode returns whether the view is capturing text input
func (v TimerView) IsInputMode() bool {
	return v.description.Focused()
}

func formatAmount(amount float64, billable bool) string {
	if !billable {
		return "not billable"
	}
	return fmt.Sprintf("$%.2f", amount)
}
