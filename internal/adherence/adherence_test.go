package adherence

import (
	"testing"
	"time"

	"github.com/jordanvik/medikeep/internal/models"
)

func instance(medID string, offset time.Duration, taken, skipped bool, now time.Time) models.ReminderInstance {
	return models.ReminderInstance{
		ID:           medID + offset.String(),
		MedicationID: medID,
		ScheduledAt:  now.Add(offset),
		Taken:        taken,
		Skipped:      skipped,
	}
}

func TestCalculate_SevenOfTenTaken(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)

	var reminders []models.ReminderInstance
	for i := 0; i < 7; i++ {
		reminders = append(reminders, instance("med-1", -time.Duration(i+1)*time.Hour, true, false, now))
	}
	for i := 0; i < 3; i++ {
		reminders = append(reminders, instance("med-1", -time.Duration(i+10)*time.Hour, false, false, now))
	}

	report := Calculate(reminders, now)
	if report.TotalScheduled != 10 {
		t.Errorf("TotalScheduled = %d, want 10", report.TotalScheduled)
	}
	if report.TotalTaken != 7 {
		t.Errorf("TotalTaken = %d, want 7", report.TotalTaken)
	}
	if report.Rate != 70 {
		t.Errorf("Rate = %d, want 70", report.Rate)
	}
	if report.TotalMissed != 3 {
		t.Errorf("TotalMissed = %d, want 3", report.TotalMissed)
	}
}

func TestCalculate_NothingScheduledIsFullAdherence(t *testing.T) {
	report := Calculate(nil, time.Now())
	if report.Rate != 100 {
		t.Errorf("Rate = %d, want 100 when nothing was scheduled", report.Rate)
	}
	if report.TotalScheduled != 0 {
		t.Errorf("TotalScheduled = %d, want 0", report.TotalScheduled)
	}
}

func TestCalculate_RateRoundsToNearestInteger(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)

	// 2 of 3 taken = 66.67 rounds to 67.
	reminders := []models.ReminderInstance{
		instance("med-1", -1*time.Hour, true, false, now),
		instance("med-1", -2*time.Hour, true, false, now),
		instance("med-1", -3*time.Hour, false, true, now),
	}

	report := Calculate(reminders, now)
	if report.Rate != 67 {
		t.Errorf("Rate = %d, want 67", report.Rate)
	}
	if report.TotalSkipped != 1 {
		t.Errorf("TotalSkipped = %d, want 1", report.TotalSkipped)
	}
}

func TestCalculate_PerMedicationBreakdown(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)

	reminders := []models.ReminderInstance{
		instance("med-a", -1*time.Hour, true, false, now),
		instance("med-a", -2*time.Hour, true, false, now),
		instance("med-b", -1*time.Hour, false, true, now),
		instance("med-b", -2*time.Hour, true, false, now),
	}

	report := Calculate(reminders, now)

	a := report.PerMedication["med-a"]
	if a.Rate != 100 || a.TotalScheduled != 2 {
		t.Errorf("med-a stats = %+v, want 2 scheduled at 100%%", a)
	}

	b := report.PerMedication["med-b"]
	if b.Rate != 50 || b.TotalSkipped != 1 {
		t.Errorf("med-b stats = %+v, want 2 scheduled at 50%% with 1 skipped", b)
	}

	if report.Rate != 75 {
		t.Errorf("overall Rate = %d, want 75", report.Rate)
	}
}

func TestCalculate_FuturePendingIsNotMissed(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)

	reminders := []models.ReminderInstance{
		instance("med-1", 2*time.Hour, false, false, now),
	}

	report := Calculate(reminders, now)
	if report.TotalMissed != 0 {
		t.Errorf("TotalMissed = %d, want 0 for a dose still in the future", report.TotalMissed)
	}
	if report.TotalScheduled != 1 {
		t.Errorf("TotalScheduled = %d, want 1", report.TotalScheduled)
	}
}

func TestForMedication_FiltersOtherMedications(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)

	reminders := []models.ReminderInstance{
		instance("med-a", -1*time.Hour, true, false, now),
		instance("med-b", -1*time.Hour, false, false, now),
	}

	stats := ForMedication(reminders, "med-a", now)
	if stats.TotalScheduled != 1 || stats.Rate != 100 {
		t.Errorf("stats = %+v, want only med-a's single taken dose", stats)
	}
}
