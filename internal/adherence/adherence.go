// Package adherence aggregates reminder outcomes into adherence statistics.
package adherence

import (
	"math"
	"time"

	"github.com/jordanvik/medikeep/internal/models"
)

// DefaultWindowDays is the lookback window when the caller does not supply
// one.
const DefaultWindowDays = 30

// Calculate aggregates the given reminder instances into a global adherence
// report plus a per-medication breakdown. The caller constrains the
// instances to a date window; now is used to classify pending instances
// whose scheduled time has passed as missed.
//
// Every instance counts toward TotalScheduled, so ignored past-due doses
// lower the rate. When nothing was scheduled the rate is 100 by policy: no
// doses were due, so nothing was missed.
func Calculate(reminders []models.ReminderInstance, now time.Time) models.AdherenceReport {
	report := models.AdherenceReport{
		PerMedication: make(map[string]models.AdherenceStats),
	}

	for _, r := range reminders {
		report.AdherenceStats = tally(report.AdherenceStats, r, now)
		report.PerMedication[r.MedicationID] = tally(report.PerMedication[r.MedicationID], r, now)
	}

	report.AdherenceStats.Rate = rate(report.AdherenceStats)
	for id, stats := range report.PerMedication {
		stats.Rate = rate(stats)
		report.PerMedication[id] = stats
	}

	return report
}

// ForMedication filters the instances to a single medication before
// aggregating.
func ForMedication(reminders []models.ReminderInstance, medicationID string, now time.Time) models.AdherenceStats {
	var filtered []models.ReminderInstance
	for _, r := range reminders {
		if r.MedicationID == medicationID {
			filtered = append(filtered, r)
		}
	}
	return Calculate(filtered, now).AdherenceStats
}

func tally(stats models.AdherenceStats, r models.ReminderInstance, now time.Time) models.AdherenceStats {
	stats.TotalScheduled++
	switch {
	case r.Taken:
		stats.TotalTaken++
	case r.Skipped:
		stats.TotalSkipped++
	case r.Missed(now):
		stats.TotalMissed++
	}
	return stats
}

func rate(stats models.AdherenceStats) int {
	if stats.TotalScheduled == 0 {
		return 100
	}
	return int(math.Round(float64(stats.TotalTaken) / float64(stats.TotalScheduled) * 100))
}
