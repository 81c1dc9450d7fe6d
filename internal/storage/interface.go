package storage

import (
	"time"

	"github.com/jordanvik/medikeep/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (Settings, error)
	SaveSettings(Settings) error

	// Medications
	AddMedication(models.Medication) error
	GetMedication(id string) (models.Medication, error)
	GetAllMedications() ([]models.Medication, error)
	UpdateMedication(models.Medication) error
	DeleteMedication(id string) error

	// Reminder instances
	AddReminders([]models.ReminderInstance) error
	GetReminder(id string) (models.ReminderInstance, error)
	GetRemindersInRange(start, end time.Time) ([]models.ReminderInstance, error)
	GetRemindersForMedication(medicationID string) ([]models.ReminderInstance, error)
	UpdateReminder(models.ReminderInstance) error
	SetReminderOutcome(id string, taken, skipped bool, skipReason string) error
	MarkReminderNotified(id string) error
	DeleteReminders(ids []string) error
	DeleteRemindersForMedication(medicationID string) error
	ClearAll() error

	// Utils
	GetConfigPath() string
}
