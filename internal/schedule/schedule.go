// Package schedule expands a medication's canonical dosing times into dated
// reminder instances over a rolling day horizon.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jordanvik/medikeep/internal/models"
)

// DefaultHorizonDays is the number of forward days reminders are
// pre-generated for.
const DefaultHorizonDays = 30

// ErrNoTimes is returned when a medication carries an empty canonical-times
// set. The frequency parser's fallback should make this impossible, so the
// caller must treat it as a data-integrity warning rather than a silent
// empty schedule.
var ErrNoTimes = errors.New("medication has no canonical dosing times")

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// Generate creates one ReminderInstance per (calendar day, canonical time)
// pair across the horizon, anchored at the start of from's day. Dose and
// medication name are snapshots copied from the medication at generation
// time.
func (g *Generator) Generate(med models.Medication, horizonDays int, from time.Time) ([]models.ReminderInstance, error) {
	if len(med.Times) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTimes, med.ID)
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	dayStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	var reminders []models.ReminderInstance
	for day := 0; day < horizonDays; day++ {
		date := dayStart.AddDate(0, 0, day)
		for _, clock := range med.Times {
			hour, minute, err := parseClock(clock)
			if err != nil {
				return nil, fmt.Errorf("invalid canonical time %q for medication %s: %w", clock, med.ID, err)
			}
			reminders = append(reminders, models.ReminderInstance{
				ID:             uuid.New().String(),
				MedicationID:   med.ID,
				MedicationName: med.Name,
				ScheduledAt:    date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute),
				Dose:           med.Dose,
			})
		}
	}

	return reminders, nil
}

// Regenerate rebuilds a medication's schedule after an edit without
// touching history. Instances that are already taken or skipped, or dated
// before now, are never candidates for replacement; only future,
// still-pending instances are superseded.
//
// It returns the fresh instances to insert and the superseded ones to
// remove. The medication's new schedule is existing minus superseded plus
// added.
func (g *Generator) Regenerate(existing []models.ReminderInstance, med models.Medication, horizonDays int, now time.Time) (added, superseded []models.ReminderInstance, err error) {
	fresh, err := g.Generate(med, horizonDays, now)
	if err != nil {
		return nil, nil, err
	}

	for _, r := range existing {
		if r.Pending() && !r.ScheduledAt.Before(now) {
			superseded = append(superseded, r)
		}
	}

	// Drop regenerated instances that would land before now; the preserved
	// past covers that span already.
	for _, r := range fresh {
		if !r.ScheduledAt.Before(now) {
			added = append(added, r)
		}
	}

	return added, superseded, nil
}

func parseClock(clock string) (hour, minute int, err error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format: %q", clock)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return hour, minute, nil
}
