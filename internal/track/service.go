package track

import (
	"fmt"
	"time"

	"github.com/mbaren/tempo/internal/billing"
	"github.com/mbaren/tempo/internal/model"
)

// Store is the persistence contract the lifecycle service drives. The service
// owns no entry state of its own; nothing is considered done until the store
// confirms it, so a failed call leaves every entry exactly as it was.
type Store interface {
	CreateEntry(e *model.TimeEntry) (*model.TimeEntry, error)
	GetEntry(id string) (*model.TimeEntry, error)
	UpdateEntry(e *model.TimeEntry) (*model.TimeEntry, error)
	DeleteEntry(id string) error
	ListEntries(filter EntryFilter) ([]model.TimeEntry, error)
	GetProject(id string) (*model.Project, error)
}

// EntryFilter narrows ListEntries results.
type EntryFilter struct {
	Status    model.Status // zero value matches all statuses
	ProjectID string       // empty matches all projects
	Since     time.Time    // zero matches all start times
}

// StartParams describes a new timer start.
type StartParams struct {
	Title       string
	Description string
	ProjectID   *string
	// Billable overrides the project default when non-nil
	Billable *bool
}

// ManualParams describes a manually created, already-finished entry.
type ManualParams struct {
	Title       string
	Description string
	ProjectID   *string
	StartTime   time.Time
	EndTime     time.Time
	Billable    *bool
}

// EntryUpdate carries field edits; nil means unchanged.
type EntryUpdate struct {
	Title       *string
	Description *string
	ProjectID   *string
	StartTime   *time.Time
	EndTime     *time.Time
	IsBillable  *bool
	HourlyRate  *float64
}

// Service applies lifecycle events to entries through the store.
type Service struct {
	store    Store
	rounding billing.Policy
	now      func() time.Time
}

// NewService creates a lifecycle service with the given rounding policy.
func NewService(store Store, rounding billing.Policy) *Service {
	return &Service{store: store, rounding: rounding, now: time.Now}
}

// SetClock overrides the wall clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// StartTimer creates a new running entry, guarding against a second running
// timer. The project's hourly rate is snapshotted onto the entry here and
// never re-read, so later rate edits don't rewrite history.
func (s *Service) StartTimer(p StartParams) (*model.TimeEntry, error) {
	running, err := s.store.ListEntries(EntryFilter{Status: model.StatusRunning})
	if err != nil {
		return nil, fmt.Errorf("checking for running entry: %w", err)
	}
	if len(running) > 0 {
		return nil, ErrTimerRunning
	}

	entry := &model.TimeEntry{
		Title:       p.Title,
		Description: p.Description,
		ProjectID:   p.ProjectID,
		StartTime:   s.now(),
		Status:      model.StatusRunning,
	}
	if err := s.applyProjectDefaults(entry, p.Billable); err != nil {
		return nil, err
	}

	created, err := s.store.CreateEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("creating entry: %w", err)
	}
	return created, nil
}

// StopTimer finalizes a running entry: sets the end time, computes the raw
// duration (minus any idle seconds the caller chose to discard), and applies
// the rounding policy exactly once to derive the billable amount.
func (s *Service) StopTimer(id string, discardSeconds int64) (*model.TimeEntry, error) {
	entry, err := s.getEntry(id)
	if err != nil {
		return nil, err
	}
	if _, _, err := Next(entry.Status, EventStop); err != nil {
		return nil, err
	}

	end := s.now()
	seconds, err := billing.ComputeDuration(entry.StartTime, end)
	if err != nil {
		return nil, err
	}
	if discardSeconds > 0 {
		seconds -= discardSeconds
		if seconds < 0 {
			seconds = 0
		}
	}

	entry.EndTime = &end
	entry.Status = model.StatusStopped
	s.finalize(entry, seconds)

	return s.update(entry)
}

// CreateManual records an already-finished span of work as a stopped entry.
func (s *Service) CreateManual(p ManualParams) (*model.TimeEntry, error) {
	seconds, err := billing.ComputeDuration(p.StartTime, p.EndTime)
	if err != nil {
		return nil, err
	}

	end := p.EndTime
	entry := &model.TimeEntry{
		Title:       p.Title,
		Description: p.Description,
		ProjectID:   p.ProjectID,
		StartTime:   p.StartTime,
		EndTime:     &end,
		Status:      model.StatusStopped,
	}
	if err := s.applyProjectDefaults(entry, p.Billable); err != nil {
		return nil, err
	}
	s.finalize(entry, seconds)

	created, err := s.store.CreateEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("creating entry: %w", err)
	}
	return created, nil
}

// EditEntry applies field updates to a mutable entry and recomputes the
// derived duration and amount when timestamps, rate, or the billable flag
// changed. Editing a rejected entry returns it to stopped.
func (s *Service) EditEntry(id string, update EntryUpdate) (*model.TimeEntry, error) {
	entry, err := s.getEntry(id)
	if err != nil {
		return nil, err
	}
	to, _, err := Next(entry.Status, EventEdit)
	if err != nil {
		return nil, err
	}
	if entry.Status == model.StatusRejected {
		entry.RejectionReason = ""
	}
	entry.Status = to

	recompute := false
	if update.Title != nil {
		entry.Title = *update.Title
	}
	if update.Description != nil {
		entry.Description = *update.Description
	}
	if update.ProjectID != nil {
		entry.ProjectID = update.ProjectID
	}
	if update.StartTime != nil {
		entry.StartTime = *update.StartTime
		recompute = true
	}
	if update.EndTime != nil {
		end := *update.EndTime
		entry.EndTime = &end
		recompute = true
	}
	if update.IsBillable != nil {
		entry.IsBillable = *update.IsBillable
		recompute = true
	}
	if update.HourlyRate != nil {
		entry.HourlyRate = *update.HourlyRate
		recompute = true
	}

	if recompute {
		if entry.EndTime == nil {
			return nil, billing.ErrInvalidRange
		}
		seconds, err := billing.ComputeDuration(entry.StartTime, *entry.EndTime)
		if err != nil {
			return nil, err
		}
		s.finalize(entry, seconds)
	}

	return s.update(entry)
}

// DeleteEntry removes an entry that is still running or stopped.
func (s *Service) DeleteEntry(id string) error {
	entry, err := s.getEntry(id)
	if err != nil {
		return err
	}
	if !CanDelete(entry.Status) {
		return invalidTransition(entry.Status, EventDelete)
	}
	if err := s.store.DeleteEntry(id); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}

// SubmitEntry marks a stopped entry as pending review.
func (s *Service) SubmitEntry(id string) (*model.TimeEntry, error) {
	return s.transition(id, EventSubmit, nil)
}

// ApproveEntry approves a submitted entry.
func (s *Service) ApproveEntry(id string) (*model.TimeEntry, error) {
	return s.transition(id, EventApprove, nil)
}

// RejectEntry rejects a submitted entry, keeping the optional reason.
func (s *Service) RejectEntry(id, reason string) (*model.TimeEntry, error) {
	return s.transition(id, EventReject, func(e *model.TimeEntry) {
		e.RejectionReason = reason
	})
}

// LockEntry makes a stopped or approved entry immutable.
func (s *Service) LockEntry(id string) (*model.TimeEntry, error) {
	return s.transition(id, EventLock, nil)
}

// transition runs the guarded status change for simple lifecycle events.
// Idempotent re-deliveries return the entry unchanged without touching the
// store.
func (s *Service) transition(id string, event Event, effect func(*model.TimeEntry)) (*model.TimeEntry, error) {
	entry, err := s.getEntry(id)
	if err != nil {
		return nil, err
	}
	to, idempotent, err := Next(entry.Status, event)
	if err != nil {
		return nil, err
	}
	if idempotent {
		return entry, nil
	}
	entry.Status = to
	if effect != nil {
		effect(entry)
	}
	return s.update(entry)
}

// applyProjectDefaults snapshots the project rate and billable default onto a
// new entry. Entries without a project are non-billable at rate 0 unless the
// caller says otherwise.
func (s *Service) applyProjectDefaults(entry *model.TimeEntry, billableOverride *bool) error {
	if entry.ProjectID != nil {
		project, err := s.store.GetProject(*entry.ProjectID)
		if err != nil {
			return fmt.Errorf("loading project: %w", err)
		}
		if project != nil {
			entry.HourlyRate = project.HourlyRate
			entry.IsBillable = project.Billable
		}
	}
	if billableOverride != nil {
		entry.IsBillable = *billableOverride
	}
	return nil
}

// finalize recomputes the derived fields from a raw duration. The stored
// duration keeps the unrounded value; only the billable amount sees the
// rounding policy.
func (s *Service) finalize(entry *model.TimeEntry, rawSeconds int64) {
	entry.DurationSeconds = rawSeconds
	entry.DurationHours = billing.Hours(rawSeconds)
	entry.BillableAmount = s.rounding.BillableAmount(rawSeconds, entry.HourlyRate, entry.IsBillable)
}

func (s *Service) getEntry(id string) (*model.TimeEntry, error) {
	entry, err := s.store.GetEntry(id)
	if err != nil {
		return nil, fmt.Errorf("loading entry: %w", err)
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (s *Service) update(entry *model.TimeEntry) (*model.TimeEntry, error) {
	updated, err := s.store.UpdateEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("updating entry: %w", err)
	}
	return updated, nil
}
