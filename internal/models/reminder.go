package models

import "time"

// ReminderInstance is one concrete, dated occurrence of a medication dose.
// Dose and MedicationName are snapshots taken at generation time, not live
// references to the medication record.
//
// Taken and Skipped are mutually exclusive; an instance with both false is
// pending. Notified is orthogonal: a notified instance can still be marked
// taken or skipped afterwards.
type ReminderInstance struct {
	ID             string    `json:"id"`
	MedicationID   string    `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Dose           string    `json:"dose"`
	Taken          bool      `json:"taken"`
	Skipped        bool      `json:"skipped"`
	SkipReason     string    `json:"skip_reason,omitempty"`
	Notified       bool      `json:"notified"`
}

// Pending reports whether the instance has not been actioned yet.
func (r ReminderInstance) Pending() bool {
	return !r.Taken && !r.Skipped
}

// Missed reports whether the instance is still pending after its scheduled
// time has passed.
func (r ReminderInstance) Missed(now time.Time) bool {
	return r.Pending() && r.ScheduledAt.Before(now)
}

// AdherenceStats aggregates taken/skipped counts over a queried date window.
// It is derived on demand and never persisted.
type AdherenceStats struct {
	TotalScheduled int `json:"total_scheduled"`
	TotalTaken     int `json:"total_taken"`
	TotalSkipped   int `json:"total_skipped"`
	TotalMissed    int `json:"total_missed"`
	Rate           int `json:"rate"` // percent, rounded to nearest integer
}

// AdherenceReport is the global window aggregate plus a per-medication
// breakdown keyed by medication id.
type AdherenceReport struct {
	AdherenceStats
	PerMedication map[string]AdherenceStats `json:"per_medication"`
}

// InteractionWarning flags that two active medications' free-text
// interaction lists reference each other. It is lexical matching only,
// not a clinical safety system.
type InteractionWarning struct {
	MedicationA string `json:"medication_a"`
	MedicationB string `json:"medication_b"`
	NameA       string `json:"name_a"`
	NameB       string `json:"name_b"`
	Message     string `json:"message"`
}
