package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jordanvik/medikeep/internal/models"
)

type jsonFile struct {
	Version     int                                `json:"version"`
	Settings    Settings                           `json:"settings"`
	Medications map[string]models.Medication       `json:"medications"`
	Reminders   map[string]models.ReminderInstance `json:"reminders"`
}

// JSONStore keeps everything in a single JSON file. Writes are serialized
// by a store-level mutex so rapid repeated mutations of the same reminder
// cannot interleave.
type JSONStore struct {
	mu   sync.Mutex
	path string
	data *jsonFile
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.data = &jsonFile{
		Version:     1,
		Settings:    DefaultSettings(),
		Medications: make(map[string]models.Medication),
		Reminders:   make(map[string]models.ReminderInstance),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data != nil {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.data = &jsonFile{}
	if err := json.Unmarshal(raw, s.data); err != nil {
		s.data = nil
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.data.Medications == nil {
		s.data.Medications = make(map[string]models.Medication)
	}
	if s.data.Reminders == nil {
		s.data.Reminders = make(map[string]models.ReminderInstance)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes the whole file. A failed write leaves the in-memory state
// untouched and authoritative until a successful retry.
func (s *JSONStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) GetSettings() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return Settings{}, ErrNotInitialized
	}
	return s.data.Settings, nil
}

func (s *JSONStore) SaveSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrNotInitialized
	}
	s.data.Settings = settings
	return s.save()
}

func (s *JSONStore) AddMedication(med models.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrNotInitialized
	}
	s.data.Medications[med.ID] = med
	return s.save()
}

func (s *JSONStore) GetMedication(id string) (models.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return models.Medication{}, ErrNotInitialized
	}
	med, ok := s.data.Medications[id]
	if !ok {
		return models.Medication{}, fmt.Errorf("medication %s: %w", id, ErrNotFound)
	}
	return med, nil
}

func (s *JSONStore) GetAllMedications() ([]models.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, ErrNotInitialized
	}
	meds := make([]models.Medication, 0, len(s.data.Medications))
	for _, med := range s.data.Medications {
		meds = append(meds, med)
	}
	sort.Slice(meds, func(i, j int) bool { return meds[i].Name < meds[j].Name })
	return meds, nil
}

func (s *JSONStore) UpdateMedication(med models.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrNotInitialized
	}
	if _, ok := s.data.Medications[med.ID]; !ok {
		return fmt.Errorf("medication %s: %w", med.ID, ErrNotFound)
	}
	s.data.Medications[med.ID] = med
	return s.save()
}

func (s *JSONStore) DeleteMedication(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrNotInitialized
	}
	if _, ok := s.data.Medications[id]; !ok {
		return fmt.Errorf("medication %s: %w", id, ErrNotFound)
	}
	delete(s.data.Medications, id)
	return s.save()
}

func (s *JSONStore) AddReminders(reminders []models.ReminderInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrNotInitialized
	}
	for _, r := range reminders {
		s.data.Reminders[r.ID] = r
	}
	return s.save()
}

func (s *JSONStore) GetReminder(id string) (models.ReminderInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return models.ReminderInstance{}, ErrNotInitialized
	}
	r, ok := s.data.Reminders[id]
	if !ok {
		return models.ReminderInstance{}, fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return r, nil
}

// GetRemindersInRange returns instances with start <= ScheduledAt < end,
// sorted ascending by scheduled time.
func (s *JSONStore) GetRemindersInRange(start, end time.Time) ([]models.ReminderInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, ErrNotInitialized
	}
	var out []models.ReminderInstance
	for _, r := range s.data.Reminders {
		if !r.ScheduledAt.Before(start) && r.ScheduledAt.Before(end) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (s *JSONStore) GetRemindersForMedication(medicationID string) ([]models.ReminderInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, ErrNotInitialized
	}
	var out []models.ReminderInstance
	for _, r := range s.data.Reminders {
		if r.MedicationID == medicationID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (s *JSONStore) UpdateReminder(r models.ReminderInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrNotInitialized
	}
	if _, ok := s.data.Reminders[r.ID]; !ok {
		return fmt.Errorf("reminder %s: %w", r.ID, ErrNotFound)
	}
	s.data.Reminders[r.ID] = r
	return s.save()
}

// SetReminderOutcome updates only the outcome fields, leaving the notified
// flag alone so a concurrent timer fire cannot be clobbered by a stale
// snapshot.
func (s *JSONStore) SetReminderOutcome(id string, taken, skipped bool, skipReason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrNotInitialized
	}
	r, ok := s.data.Reminders[id]
	if !ok {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	r.Taken = taken
	r.Skipped = skipped
	r.SkipReason = skipReason
	s.data.Reminders[id] = r
	return s.save()
}

// MarkReminderNotified flips only the notified flag; taken/skipped marks
// made while the alert was in flight survive.
func (s *JSONStore) MarkReminderNotified(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrNotInitialized
	}
	r, ok := s.data.Reminders[id]
	if !ok {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	r.Notified = true
	s.data.Reminders[id] = r
	return s.save()
}

func (s *JSONStore) DeleteReminders(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrNotInitialized
	}
	for _, id := range ids {
		delete(s.data.Reminders, id)
	}
	return s.save()
}

func (s *JSONStore) DeleteRemindersForMedication(medicationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrNotInitialized
	}
	for id, r := range s.data.Reminders {
		if r.MedicationID == medicationID {
			delete(s.data.Reminders, id)
		}
	}
	return s.save()
}

// ClearAll wipes every medication and reminder. Used for full reimport.
func (s *JSONStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrNotInitialized
	}
	s.data.Medications = make(map[string]models.Medication)
	s.data.Reminders = make(map[string]models.ReminderInstance)
	return s.save()
}

// GetConfigPath returns the path to the underlying storage file.
//
// Concurrency note:
//   - Running multiple medikeep processes that share the same storage path
//     at the same time is not supported and may lead to data loss.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}
