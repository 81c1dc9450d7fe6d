package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jordanvik/medikeep/internal/engine"
	"github.com/jordanvik/medikeep/internal/models"
	"github.com/jordanvik/medikeep/internal/storage"
)

type Context struct {
	Store  storage.Provider
	Engine *engine.Service
}

// resolveReminder maps a user-supplied reference to one of today's
// reminder instances: either a 1-based position in today's schedule or a
// unique id prefix.
func resolveReminder(ctx *Context, ref string) (models.ReminderInstance, error) {
	today, err := ctx.Engine.TodaysSchedule()
	if err != nil {
		return models.ReminderInstance{}, err
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(today) {
			return models.ReminderInstance{}, fmt.Errorf("no reminder #%d in today's schedule (%d scheduled)", n, len(today))
		}
		return today[n-1], nil
	}

	var matches []models.ReminderInstance
	for _, r := range today {
		if strings.HasPrefix(r.ID, ref) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return models.ReminderInstance{}, fmt.Errorf("no reminder matching %q in today's schedule", ref)
	case 1:
		return matches[0], nil
	default:
		return models.ReminderInstance{}, fmt.Errorf("reminder reference %q is ambiguous", ref)
	}
}

// resolveMedication maps a name or id prefix to a medication record.
func resolveMedication(ctx *Context, ref string) (models.Medication, error) {
	meds, err := ctx.Store.GetAllMedications()
	if err != nil {
		return models.Medication{}, err
	}

	var matches []models.Medication
	for _, m := range meds {
		if strings.EqualFold(m.Name, ref) || strings.HasPrefix(m.ID, ref) {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return models.Medication{}, fmt.Errorf("no medication matching %q", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Medication{}, fmt.Errorf("medication reference %q is ambiguous", ref)
	}
}

func reminderStatus(r models.ReminderInstance, now time.Time) string {
	switch {
	case r.Taken:
		return "taken"
	case r.Skipped:
		return "skipped"
	case r.Missed(now):
		return "missed"
	default:
		return "pending"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
