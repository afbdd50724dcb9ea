package views

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbaren/tempo/internal/billing"
	"github.com/mbaren/tempo/internal/db"
	"github.com/mbaren/tempo/internal/model"
	"github.com/mbaren/tempo/internal/track"
	"github.com/mbaren/tempo/internal/ui/theme"
)

// entriesMode tracks which interaction mode the entries view is in
type entriesMode int

const (
	entriesModeNormal entriesMode = iota
	entriesModeEdit
	entriesModeAdd
	entriesModeConfirmDelete
)

// EntriesView shows the entry log and drives the per-entry lifecycle actions
type EntriesView struct {
	svc    *track.Service
	db     *db.DB
	width  int
	height int

	entries     []model.TimeEntry
	projects    map[string]model.Project
	projectList []model.Project // cycle order for the form's project field
	cursor      int
	mode        entriesMode

	// Edit / add form
	formInputs  []textinput.Model
	formFocus   int
	formBill    bool
	formProject int // 0 = no project, 1..n = projectList[i-1]

	statusMsg string
	errorMsg  string
}

// Form field indexes, shared by the edit and add forms
const (
	formTitle = iota
	formDate
	formStart
	formEnd
	formRate
	formFieldCount
)

// NewEntriesView creates a new entries view
func NewEntriesView(svc *track.Service, database *db.DB) EntriesView {
	return EntriesView{
		svc:      svc,
		db:       database,
		projects: make(map[string]model.Project),
	}
}

// Init loads the entries
func (v EntriesView) Init() tea.Cmd {
	return v.load()
}

// SetSize sets the view dimensions
func (v EntriesView) SetSize(width, height int) EntriesView {
	v.width = width
	v.height = height
	return v
}

// Local message types
type entriesLoadedMsg struct {
	entries  []model.TimeEntry
	projects []model.Project
	err      error
}
type entryActionMsg struct {
	entry  *model.TimeEntry
	action string
	err    error
}
type entryRemovedMsg struct {
	err error
}

func (v EntriesView) load() tea.Cmd {
	return func() tea.Msg {
		entries, err := v.db.ListEntries(track.EntryFilter{})
		if err != nil {
			return entriesLoadedMsg{err: err}
		}
		projects, err := v.db.GetProjects()
		if err != nil {
			return entriesLoadedMsg{err: err}
		}
		return entriesLoadedMsg{entries: entries, projects: projects}
	}
}

func (v EntriesView) actionCmd(action string, fn func() (*model.TimeEntry, error)) tea.Cmd {
	return func() tea.Msg {
		entry, err := fn()
		return entryActionMsg{entry: entry, action: action, err: err}
	}
}

// Update handles messages
func (v EntriesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.entries = msg.entries
		v.projectList = msg.projects
		v.projects = make(map[string]model.Project, len(msg.projects))
		for _, p := range msg.projects {
			v.projects[p.ID] = p
		}
		if v.cursor >= len(v.entries) {
			v.cursor = max(0, len(v.entries)-1)
		}
		return v, nil

	case entryActionMsg:
		if msg.err != nil {
			v.errorMsg = describeActionError(msg.action, msg.err)
			return v, nil
		}
		v.errorMsg = ""
		v.statusMsg = fmt.Sprintf("Entry %s", msg.action)
		return v, v.load()

	case entryRemovedMsg:
		if msg.err != nil {
			v.errorMsg = describeActionError("deleted", msg.err)
			return v, nil
		}
		v.errorMsg = ""
		v.statusMsg = "Entry deleted"
		return v, v.load()

	case tea.KeyMsg:
		switch v.mode {
		case entriesModeEdit, entriesModeAdd:
			return v.updateForm(msg)
		case entriesModeConfirmDelete:
			return v.updateConfirmDelete(msg)
		default:
			return v.updateNormal(msg)
		}
	}

	return v, nil
}

func (v EntriesView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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

	case "a":
		v.mode = entriesModeAdd
		v.formBill = true
		v.formProject = 0
		v.formInputs = newEntryForm(time.Now(), nil)
		v.formFocus = 0
		v.formInputs[0].Focus()

	case "enter":
		entry := v.selected()
		if entry == nil {
			return v, nil
		}
		if !entry.Mutable() {
			v.errorMsg = fmt.Sprintf("Cannot edit a %s entry", entry.Status)
			return v, nil
		}
		v.mode = entriesModeEdit
		v.formBill = entry.IsBillable
		v.formProject = v.projectCursorFor(entry.ProjectID)
		v.formInputs = newEntryForm(entry.StartTime, entry)
		v.formFocus = 0
		v.formInputs[0].Focus()

	case "d":
		entry := v.selected()
		if entry == nil {
			return v, nil
		}
		if !entry.Deletable() {
			v.errorMsg = fmt.Sprintf("Cannot delete a %s entry", entry.Status)
			return v, nil
		}
		v.mode = entriesModeConfirmDelete

	case "s":
		if entry := v.selected(); entry != nil {
			id := entry.ID
			return v, v.actionCmd("submitted", func() (*model.TimeEntry, error) {
				return v.svc.SubmitEntry(id)
			})
		}

	case "L":
		if entry := v.selected(); entry != nil {
			id := entry.ID
			return v, v.actionCmd("locked", func() (*model.TimeEntry, error) {
				return v.svc.LockEntry(id)
			})
		}

	case "b":
		if entry := v.selected(); entry != nil {
			id := entry.ID
			flag := !entry.IsBillable
			return v, v.actionCmd("updated", func() (*model.TimeEntry, error) {
				return v.svc.EditEntry(id, track.EntryUpdate{IsBillable: &flag})
			})
		}
	}
	return v, nil
}

func (v EntriesView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		v.mode = entriesModeNormal
		if entry := v.selected(); entry != nil {
			id := entry.ID
			return v, func() tea.Msg {
				return entryRemovedMsg{err: v.svc.DeleteEntry(id)}
			}
		}
	case "n", "escape":
		v.mode = entriesModeNormal
	}
	return v, nil
}

func (v EntriesView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "escape":
		v.mode = entriesModeNormal
		v.formInputs = nil
		return v, nil

	case "tab", "shift+tab", "up", "down":
		if msg.String() == "shift+tab" || msg.String() == "up" {
			v.formFocus--
		} else {
			v.formFocus++
		}
		if v.formFocus < 0 {
			v.formFocus = formFieldCount - 1
		}
		if v.formFocus >= formFieldCount {
			v.formFocus = 0
		}
		for i := range v.formInputs {
			if i == v.formFocus {
				v.formInputs[i].Focus()
			} else {
				v.formInputs[i].Blur()
			}
		}
		return v, nil

	case "ctrl+b":
		v.formBill = !v.formBill
		return v, nil

	case "ctrl+p":
		v.formProject = (v.formProject + 1) % (len(v.projectList) + 1)
		return v, nil

	case "enter":
		return v.submitForm()
	}

	var cmd tea.Cmd
	v.formInputs[v.formFocus], cmd = v.formInputs[v.formFocus].Update(msg)
	return v, cmd
}

// submitForm parses the form and dispatches the create or edit
func (v EntriesView) submitForm() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(v.formInputs[formTitle].Value())
	if title == "" {
		v.errorMsg = "Title is required"
		return v, nil
	}

	start, end, err := parseFormTimes(
		v.formInputs[formDate].Value(),
		v.formInputs[formStart].Value(),
		v.formInputs[formEnd].Value(),
	)
	if err != nil {
		v.errorMsg = err.Error()
		return v, nil
	}

	var rate float64
	if raw := strings.TrimSpace(v.formInputs[formRate].Value()); raw != "" {
		if _, err := fmt.Sscanf(raw, "%f", &rate); err != nil {
			v.errorMsg = "Rate must be a number"
			return v, nil
		}
	}

	mode := v.mode
	billable := v.formBill
	projectID := v.formProjectID()
	v.mode = entriesModeNormal
	v.formInputs = nil

	if mode == entriesModeAdd {
		return v, v.actionCmd("added", func() (*model.TimeEntry, error) {
			entry, err := v.svc.CreateManual(track.ManualParams{
				Title:     title,
				ProjectID: projectID,
				StartTime: start,
				EndTime:   end,
				Billable:  &billable,
			})
			if err != nil {
				return nil, err
			}
			if rate > 0 {
				return v.svc.EditEntry(entry.ID, track.EntryUpdate{HourlyRate: &rate})
			}
			return entry, nil
		})
	}

	entry := v.selected()
	if entry == nil {
		return v, nil
	}
	id := entry.ID
	update := track.EntryUpdate{
		Title:      &title,
		StartTime:  &start,
		EndTime:    &end,
		IsBillable: &billable,
		HourlyRate: &rate,
	}
	// A nil ProjectID means "leave unchanged", so clearing is not expressible
	// here; cycling to "No project" simply keeps the current assignment
	if projectID != nil {
		update.ProjectID = projectID
	}
	return v, v.actionCmd("updated", func() (*model.TimeEntry, error) {
		return v.svc.EditEntry(id, update)
	})
}

// formProjectID resolves the form's project cursor to an ID, nil for none
func (v EntriesView) formProjectID() *string {
	if v.formProject < 1 || v.formProject > len(v.projectList) {
		return nil
	}
	id := v.projectList[v.formProject-1].ID
	return &id
}

// projectCursorFor maps an entry's project assignment back to a form cursor
func (v EntriesView) projectCursorFor(id *string) int {
	if id == nil {
		return 0
	}
	for i, p := range v.projectList {
		if p.ID == *id {
			return i + 1
		}
	}
	return 0
}

// IsInputMode returns whether the view is capturing text input
func (v EntriesView) IsInputMode() bool {
	return v.mode == entriesModeEdit || v.mode == entriesModeAdd
}

func (v EntriesView) selected() *model.TimeEntry {
	if v.cursor < 0 || v.cursor >= len(v.entries) {
		return nil
	}
	return &v.entries[v.cursor]
}

// newEntryForm builds the shared edit/add inputs, pre-filled from an existing
// entry when editing
func newEntryForm(day time.Time, entry *model.TimeEntry) []textinput.Model {
	inputs := make([]textinput.Model, formFieldCount)

	inputs[formTitle] = textinput.New()
	inputs[formTitle].Placeholder = "Title"
	inputs[formTitle].CharLimit = 200

	inputs[formDate] = textinput.New()
	inputs[formDate].Placeholder = "YYYY-MM-DD"
	inputs[formDate].CharLimit = 10
	inputs[formDate].SetValue(day.Format("2006-01-02"))

	inputs[formStart] = textinput.New()
	inputs[formStart].Placeholder = "HH:MM"
	inputs[formStart].CharLimit = 5

	inputs[formEnd] = textinput.New()
	inputs[formEnd].Placeholder = "HH:MM"
	inputs[formEnd].CharLimit = 5

	inputs[formRate] = textinput.New()
	inputs[formRate].Placeholder = "0"
	inputs[formRate].CharLimit = 8

	if entry != nil {
		inputs[formTitle].SetValue(entry.Title)
		inputs[formStart].SetValue(entry.StartTime.Local().Format("15:04"))
		if entry.EndTime != nil {
			inputs[formEnd].SetValue(entry.EndTime.Local().Format("15:04"))
		}
		inputs[formRate].SetValue(fmt.Sprintf("%.0f", entry.HourlyRate))
	}

	return inputs
}

// parseFormTimes turns the date and HH:MM fields into concrete timestamps.
// An end before the start rolls to the next day.
func parseFormTimes(date, startStr, endStr string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date must be YYYY-MM-DD")
	}
	start, err := time.ParseInLocation("15:04", strings.TrimSpace(startStr), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start must be HH:MM")
	}
	end, err := time.ParseInLocation("15:04", strings.TrimSpace(endStr), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end must be HH:MM")
	}

	startAt := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, time.Local)
	endAt := time.Date(day.Year(), day.Month(), day.Day(), end.Hour(), end.Minute(), 0, 0, time.Local)
	if endAt.Before(startAt) {
		endAt = endAt.AddDate(0, 0, 1)
	}
	return startAt, endAt, nil
}

// describeActionError keeps guard violations readable in the status line
func describeActionError(action string, err error) string {
	var invalid *track.InvalidTransitionError
	if errors.As(err, &invalid) {
		return invalid.Error()
	}
	if errors.Is(err, track.ErrNotFound) {
		return "Entry no longer exists"
	}
	return fmt.Sprintf("Not %s: %v", action, err)
}

// View renders the entries view
func (v EntriesView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	switch v.mode {
	case entriesModeEdit:
		return v.renderForm("Edit entry")
	case entriesModeAdd:
		return v.renderForm("Add manual entry")
	}

	var b strings.Builder
	b.WriteString(theme.Current.Styles.Title.Render("Entries"))
	b.WriteString("\n")

	if len(v.entries) == 0 {
		b.WriteString(theme.Current.Styles.Label.Render("No entries yet. Start a timer or press a to add one."))
		return b.String()
	}

	visible := v.height - 8
	if visible < 1 {
		visible = 1
	}
	offset := 0
	if v.cursor >= visible {
		offset = v.cursor - visible + 1
	}

	for i := offset; i < len(v.entries) && i < offset+visible; i++ {
		b.WriteString(v.renderEntryLine(v.entries[i], i == v.cursor))
		b.WriteString("\n")
	}

	if v.mode == entriesModeConfirmDelete {
		t := theme.Current.Theme
		confirm := lipgloss.NewStyle().
			Foreground(t.Error).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Error).
			Padding(0, 1)
		b.WriteString("\n")
		b.WriteString(confirm.Render("Delete this entry? y/n"))
	}

	b.WriteString("\n")
	b.WriteString(v.renderStatusLine())
	return b.String()
}

func (v EntriesView) renderEntryLine(entry model.TimeEntry, selected bool) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	statusStyle := lipgloss.NewStyle().Foreground(theme.StatusColor(string(entry.Status)))
	status := statusStyle.Render(fmt.Sprintf("%-9s", entry.Status))

	duration := billing.FormatDuration(entry.DurationSeconds)
	if entry.IsRunning() {
		duration = "live"
	}

	amount := styles.Label.Render("        -")
	if entry.IsBillable && !entry.IsRunning() {
		amount = styles.Amount.Render(fmt.Sprintf("$%8.2f", entry.BillableAmount))
	}

	project := ""
	if entry.ProjectID != nil {
		if p, ok := v.projects[*entry.ProjectID]; ok {
			project = lipgloss.NewStyle().Foreground(t.Secondary).Render(" · " + p.Name)
		}
	}

	title := entry.Title
	if entry.Status == model.StatusRejected && entry.RejectionReason != "" {
		title += lipgloss.NewStyle().Foreground(t.Error).Render(" (" + entry.RejectionReason + ")")
	}
	for i := range entry.Tags {
		title += " " + styles.Tag.Render(entry.Tags[i].DisplayName())
	}

	line := fmt.Sprintf("%s %s  %s  %s  %s%s",
		entry.StartTime.Local().Format("Jan 02"),
		status, duration, amount, title, project)

	lineStyle := styles.EntryNormal
	switch {
	case selected:
		lineStyle = styles.EntrySelected
	case entry.IsRunning():
		lineStyle = styles.EntryRunning
	case entry.Status == model.StatusLocked:
		lineStyle = styles.EntryLocked
	}
	return lineStyle.Render(line)
}

func (v EntriesView) renderForm(title string) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	labels := [formFieldCount]string{"Title", "Date", "Start", "End", "Rate $/h"}

	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")
	for i, input := range v.formInputs {
		label := styles.Label.Render(fmt.Sprintf("%-9s", labels[i]))
		b.WriteString(label + input.View() + "\n")
	}

	billStyle := lipgloss.NewStyle().Foreground(t.NonBillable)
	billLabel := "not billable"
	if v.formBill {
		billStyle = lipgloss.NewStyle().Foreground(t.Billable)
		billLabel = "billable"
	}
	b.WriteString(styles.Label.Render(fmt.Sprintf("%-9s", "Billing")) + billStyle.Render(billLabel) + "\n")

	projectLabel := "No project"
	if v.formProject >= 1 && v.formProject <= len(v.projectList) {
		projectLabel = v.projectList[v.formProject-1].Name
	}
	projectStyle := lipgloss.NewStyle().Foreground(t.Secondary)
	b.WriteString(styles.Label.Render(fmt.Sprintf("%-9s", "Project")) + projectStyle.Render(projectLabel) + "\n")

	if v.errorMsg != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(t.Error).Render(v.errorMsg) + "\n")
	}

	b.WriteString("\n" + styles.Label.Render("tab next · ctrl+b billable · ctrl+p project · enter save · esc cancel"))
	return b.String()
}

func (v EntriesView) renderStatusLine() string {
	t := theme.Current.Theme
	if v.errorMsg != "" {
		return lipgloss.NewStyle().Foreground(t.Error).Render(v.errorMsg)
	}
	if v.statusMsg != "" {
		return lipgloss.NewStyle().Foreground(t.Info).Render(v.statusMsg)
	}
	return theme.Current.Styles.Label.Render("enter edit · a add · d delete · s submit · L lock · b billable")
}
