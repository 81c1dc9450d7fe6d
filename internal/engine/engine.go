// Package engine wires the medication scheduling pieces into one explicit
// service object. The service is constructed once per session and passed by
// reference to callers; there is no hidden global instance.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jordanvik/medikeep/internal/adherence"
	"github.com/jordanvik/medikeep/internal/frequency"
	"github.com/jordanvik/medikeep/internal/importer"
	"github.com/jordanvik/medikeep/internal/interactions"
	"github.com/jordanvik/medikeep/internal/models"
	"github.com/jordanvik/medikeep/internal/notify"
	"github.com/jordanvik/medikeep/internal/schedule"
	"github.com/jordanvik/medikeep/internal/storage"
)

// Service coordinates frequency parsing, schedule generation, adherence,
// interaction checks, and notification arming over one storage provider.
//
// Reminder mutations are guarded by a mutex so a user action racing an
// in-flight timer fire stays last-write-consistent per reminder id.
type Service struct {
	mu        sync.Mutex
	store     storage.Provider
	generator *schedule.Generator
	notifier  *notify.Scheduler
	now       func() time.Time
}

func New(store storage.Provider, notifier notify.Notifier) *Service {
	return &Service{
		store:     store,
		generator: schedule.New(),
		notifier:  notify.NewScheduler(store, notifier),
		now:       time.Now,
	}
}

// SetClock overrides the wall clock. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
	s.notifier.SetClock(now)
}

// Close tears down all armed notification timers.
func (s *Service) Close() {
	s.notifier.Close()
}

func (s *Service) horizonDays() int {
	settings, err := s.store.GetSettings()
	if err != nil || settings.HorizonDays <= 0 {
		return schedule.DefaultHorizonDays
	}
	return settings.HorizonDays
}

func (s *Service) windowDays() int {
	settings, err := s.store.GetSettings()
	if err != nil || settings.AdherenceWindowDays <= 0 {
		return adherence.DefaultWindowDays
	}
	return settings.AdherenceWindowDays
}

// AddMedication derives canonical times from the medication's frequency
// text when none are set, persists the record, and materializes its
// reminder schedule across the configured horizon.
func (s *Service) AddMedication(med models.Medication) (models.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if med.ID == "" {
		med.ID = uuid.New().String()
	}
	if len(med.Times) == 0 {
		med.Times = frequency.Parse(med.Frequency)
	}
	if med.CreatedAt.IsZero() {
		med.CreatedAt = now
	}
	med.UpdatedAt = now

	reminders, err := s.generator.Generate(med, s.horizonDays(), now)
	if err != nil {
		return models.Medication{}, err
	}

	if err := s.store.AddMedication(med); err != nil {
		return models.Medication{}, err
	}
	if err := s.store.AddReminders(reminders); err != nil {
		return models.Medication{}, fmt.Errorf("medication saved but schedule generation failed: %w", err)
	}

	return med, nil
}

// UpdateMedication persists an edit and regenerates the schedule.
// Instances already taken or skipped, and instances dated in the past, are
// never discarded; only future pending instances are replaced. This keeps
// an edit from silently erasing historical adherence data.
func (s *Service) UpdateMedication(med models.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	med.Times = frequency.Parse(med.Frequency)
	med.UpdatedAt = now

	existing, err := s.store.GetRemindersForMedication(med.ID)
	if err != nil {
		return err
	}

	added, superseded, err := s.generator.Regenerate(existing, med, s.horizonDays(), now)
	if err != nil {
		return err
	}

	if err := s.store.UpdateMedication(med); err != nil {
		return err
	}

	ids := make([]string, 0, len(superseded))
	for _, r := range superseded {
		ids = append(ids, r.ID)
		s.notifier.Cancel(r.ID)
	}
	if err := s.store.DeleteReminders(ids); err != nil {
		return err
	}
	return s.store.AddReminders(added)
}

// DeactivateMedication flips the active flag off and drops future pending
// reminders while retaining all history.
func (s *Service) DeactivateMedication(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	med, err := s.store.GetMedication(id)
	if err != nil {
		return err
	}
	med.Active = false
	med.UpdatedAt = s.now()
	if err := s.store.UpdateMedication(med); err != nil {
		return err
	}

	s.notifier.CancelMedication(id)
	return s.dropFuturePending(id)
}

func (s *Service) dropFuturePending(medicationID string) error {
	existing, err := s.store.GetRemindersForMedication(medicationID)
	if err != nil {
		return err
	}
	now := s.now()
	var ids []string
	for _, r := range existing {
		if r.Pending() && !r.ScheduledAt.Before(now) {
			ids = append(ids, r.ID)
		}
	}
	return s.store.DeleteReminders(ids)
}

// DeleteMedication cancels every still-armed timer referencing the
// medication's reminders before removing the medication and its whole
// schedule, so a stale alert cannot fire afterwards.
func (s *Service) DeleteMedication(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifier.CancelMedication(id)

	if err := s.store.DeleteRemindersForMedication(id); err != nil {
		return err
	}
	return s.store.DeleteMedication(id)
}

// MarkTaken records a dose as taken. Taken and skipped are mutually
// exclusive, so any earlier skip is cleared. The write touches only the
// outcome fields, so a timer fire racing this call can still record its
// notified flag without either side losing its update.
func (s *Service) MarkTaken(reminderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifier.Cancel(reminderID)
	return s.store.SetReminderOutcome(reminderID, true, false, "")
}

// MarkSkipped records a dose as skipped with an optional reason, clearing
// any earlier taken mark.
func (s *Service) MarkSkipped(reminderID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifier.Cancel(reminderID)
	return s.store.SetReminderOutcome(reminderID, false, true, reason)
}

// TodaysSchedule returns today's reminder instances in ascending time
// order.
func (s *Service) TodaysSchedule() ([]models.ReminderInstance, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.store.GetRemindersInRange(dayStart, dayStart.AddDate(0, 0, 1))
}

// ArmNotifications arms one-shot alerts for today's un-actioned reminders
// and returns how many timers were newly armed. Arming is idempotent, so
// calling it again (e.g. after a restart within the same day) never
// duplicates alerts.
func (s *Service) ArmNotifications() (int, error) {
	today, err := s.TodaysSchedule()
	if err != nil {
		return 0, err
	}
	return s.notifier.Arm(today), nil
}

// Adherence aggregates the last windowDays of reminder outcomes; zero
// means the configured default window.
func (s *Service) Adherence(windowDays int) (models.AdherenceReport, error) {
	if windowDays <= 0 {
		windowDays = s.windowDays()
	}
	now := s.now()
	reminders, err := s.store.GetRemindersInRange(now.AddDate(0, 0, -windowDays), now)
	if err != nil {
		return models.AdherenceReport{}, err
	}
	return adherence.Calculate(reminders, now), nil
}

// MedicationAdherence aggregates one medication's outcomes over the
// window.
func (s *Service) MedicationAdherence(medicationID string, windowDays int) (models.AdherenceStats, error) {
	if windowDays <= 0 {
		windowDays = s.windowDays()
	}
	now := s.now()
	reminders, err := s.store.GetRemindersInRange(now.AddDate(0, 0, -windowDays), now)
	if err != nil {
		return models.AdherenceStats{}, err
	}
	return adherence.ForMedication(reminders, medicationID, now), nil
}

// CheckInteractions runs the pairwise lexical scan over the currently
// active medications.
func (s *Service) CheckInteractions() ([]models.InteractionWarning, error) {
	meds, err := s.store.GetAllMedications()
	if err != nil {
		return nil, err
	}
	return interactions.Check(meds), nil
}

// Import converts the collaborator's raw records and schedules every
// successfully converted medication. With replaceAll set the store is
// cleared first (full reimport).
func (s *Service) Import(records []importer.RawRecord, replaceAll bool) (importer.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if replaceAll {
		s.notifier.Close()
		if err := s.store.ClearAll(); err != nil {
			return importer.Report{}, err
		}
	}

	now := s.now()
	report := importer.Convert(records, now)

	horizon := s.horizonDays()
	for _, med := range report.Imported {
		if err := s.store.AddMedication(med); err != nil {
			return report, err
		}
		reminders, err := s.generator.Generate(med, horizon, now)
		if err != nil {
			// The parser fallback makes this unreachable for imported rows;
			// surface it loudly if it ever happens.
			slog.Warn("imported medication produced no schedule", slog.String("id", med.ID), slog.String("error", err.Error()))
			continue
		}
		if err := s.store.AddReminders(reminders); err != nil {
			return report, err
		}
	}

	return report, nil
}
