package notify

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jordanvik/medikeep/internal/models"
)

// ReminderStore is the slice of persistence the scheduler needs to flip the
// notified flag after an alert fires. MarkReminderNotified must touch only
// that flag, so a user action racing the fire is never overwritten.
type ReminderStore interface {
	GetReminder(id string) (models.ReminderInstance, error)
	MarkReminderNotified(id string) error
}

type armedTimer struct {
	timer        *time.Timer
	medicationID string
}

// Scheduler owns the mapping from reminder id to a cancellable timer
// handle. Timers are torn down deterministically on Close or on medication
// deletion, never left to garbage collection.
type Scheduler struct {
	mu       sync.Mutex
	timers   map[string]armedTimer
	store    ReminderStore
	notifier Notifier
	now      func() time.Time
}

func NewScheduler(store ReminderStore, notifier Notifier) *Scheduler {
	return &Scheduler{
		timers:   make(map[string]armedTimer),
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock overrides the wall clock. Tests only.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Arm schedules a one-shot deferred alert for every instance that is not
// taken, not skipped, not yet notified, and scheduled later than the
// current moment. Instances are processed in ascending time order; firing
// order is still determined by wall-clock delay.
//
// Arm is idempotent per reminder id: invoking it again for the same
// schedule arms nothing twice, and an instance already marked notified is
// never re-armed.
func (s *Scheduler) Arm(reminders []models.ReminderInstance) int {
	sorted := make([]models.ReminderInstance, len(reminders))
	copy(sorted, reminders)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ScheduledAt.Before(sorted[j].ScheduledAt)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	armed := 0
	now := s.now()
	for _, r := range sorted {
		if r.Taken || r.Skipped || r.Notified {
			continue
		}
		delay := r.ScheduledAt.Sub(now)
		if delay <= 0 {
			continue
		}
		if _, exists := s.timers[r.ID]; exists {
			continue
		}

		id := r.ID
		s.timers[id] = armedTimer{
			timer:        time.AfterFunc(delay, func() { s.fire(id) }),
			medicationID: r.MedicationID,
		}
		armed++
	}

	return armed
}

// fire delivers the alert for one reminder and records the notified flag.
// A reminder the user has since actioned still notifies if it was not
// notified before; taken/skipped and notified are orthogonal flags, so the
// race between a user action and an in-flight timer cannot corrupt state.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	r, err := s.store.GetReminder(id)
	if err != nil {
		slog.Warn("reminder vanished before notification", slog.String("id", id), slog.String("error", err.Error()))
		return
	}
	if r.Notified {
		return
	}

	n := Notification{
		Title:              "Medication reminder",
		Body:               fmt.Sprintf("%s %s", r.MedicationName, r.Dose),
		Tag:                r.ID,
		RequireInteraction: true,
	}
	if err := s.notifier.Send(n); err != nil {
		// Missing daemon or denied permission degrades to no alerts;
		// scheduling and adherence keep working.
		slog.Debug("notification delivery unavailable", slog.String("error", err.Error()))
	}

	if err := s.store.MarkReminderNotified(id); err != nil {
		slog.Warn("failed to record notified flag", slog.String("id", id), slog.String("error", err.Error()))
	}
}

// CancelMedication synchronously stops every still-armed timer referencing
// one of the medication's reminders, so a stale alert cannot fire for a
// deleted medication.
func (s *Scheduler) CancelMedication(medicationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, at := range s.timers {
		if at.medicationID == medicationID {
			at.timer.Stop()
			delete(s.timers, id)
		}
	}
}

// Cancel stops the timer for a single reminder, if one is armed.
func (s *Scheduler) Cancel(reminderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if at, ok := s.timers[reminderID]; ok {
		at.timer.Stop()
		delete(s.timers, reminderID)
	}
}

// ArmedCount returns the number of currently armed timers.
func (s *Scheduler) ArmedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close stops all armed timers.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, at := range s.timers {
		at.timer.Stop()
		delete(s.timers, id)
	}
}
