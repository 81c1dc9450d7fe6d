package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jordanvik/medikeep/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS medications (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	generic_name TEXT NOT NULL DEFAULT '',
	dose         TEXT NOT NULL DEFAULT '',
	frequency    TEXT NOT NULL DEFAULT '',
	route        TEXT NOT NULL DEFAULT '',
	times        TEXT NOT NULL DEFAULT '[]',
	interactions TEXT NOT NULL DEFAULT '[]',
	category     TEXT NOT NULL DEFAULT 'daily',
	active       INTEGER NOT NULL DEFAULT 1,
	start_date   TEXT NOT NULL DEFAULT '',
	end_date     TEXT NOT NULL DEFAULT '',
	prescriber   TEXT NOT NULL DEFAULT '',
	instructions TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reminders (
	id              TEXT PRIMARY KEY,
	medication_id   TEXT NOT NULL,
	medication_name TEXT NOT NULL DEFAULT '',
	scheduled_at    INTEGER NOT NULL,
	dose            TEXT NOT NULL DEFAULT '',
	taken           INTEGER NOT NULL DEFAULT 0,
	skipped         INTEGER NOT NULL DEFAULT 0,
	skip_reason     TEXT NOT NULL DEFAULT '',
	notified        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_reminders_medication ON reminders(medication_id);
CREATE INDEX IF NOT EXISTS idx_reminders_scheduled ON reminders(scheduled_at);
`

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return ErrNotInitialized
	}

	return s.open()
}

func (s *SQLiteStore) open() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ready guards against use before Init/Load, mirroring the JSON store's
// sentinel instead of a nil dereference.
func (s *SQLiteStore) ready() error {
	if s.db == nil {
		return ErrNotInitialized
	}
	return nil
}

func (s *SQLiteStore) GetSettings() (Settings, error) {
	if err := s.ready(); err != nil {
		return Settings{}, err
	}
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return Settings{}, err
	}
	defer rows.Close()

	settings := Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, err
		}
		switch key {
		case "horizon_days":
			if settings.HorizonDays, err = strconv.Atoi(value); err != nil {
				return Settings{}, fmt.Errorf("parsing horizon_days: %w", err)
			}
		case "adherence_window_days":
			if settings.AdherenceWindowDays, err = strconv.Atoi(value); err != nil {
				return Settings{}, fmt.Errorf("parsing adherence_window_days: %w", err)
			}
		}
		count++
	}

	if count == 0 {
		return Settings{}, fmt.Errorf("settings not found")
	}

	return settings, rows.Err()
}

func (s *SQLiteStore) SaveSettings(settings Settings) error {
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Exec("horizon_days", strconv.Itoa(settings.HorizonDays)); err != nil {
		return err
	}
	if _, err := stmt.Exec("adherence_window_days", strconv.Itoa(settings.AdherenceWindowDays)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) AddMedication(med models.Medication) error {
	return s.writeMedication(med)
}

func (s *SQLiteStore) UpdateMedication(med models.Medication) error {
	if err := s.ready(); err != nil {
		return err
	}
	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM medications WHERE id = ?", med.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("medication %s: %w", med.ID, ErrNotFound)
	}
	return s.writeMedication(med)
}

func (s *SQLiteStore) writeMedication(med models.Medication) error {
	if err := s.ready(); err != nil {
		return err
	}
	timesJSON, err := json.Marshal(med.Times)
	if err != nil {
		return fmt.Errorf("failed to marshal times: %w", err)
	}
	interactionsJSON, err := json.Marshal(med.Interactions)
	if err != nil {
		return fmt.Errorf("failed to marshal interactions: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO medications (
			id, name, generic_name, dose, frequency, route, times, interactions,
			category, active, start_date, end_date, prescriber, instructions,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		med.ID, med.Name, med.GenericName, med.Dose, med.Frequency, med.Route,
		string(timesJSON), string(interactionsJSON), med.Category, med.Active,
		med.StartDate, med.EndDate, med.Prescriber, med.Instructions,
		med.CreatedAt.UTC().Format(time.RFC3339), med.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *SQLiteStore) GetMedication(id string) (models.Medication, error) {
	if err := s.ready(); err != nil {
		return models.Medication{}, err
	}
	row := s.db.QueryRow(`
		SELECT id, name, generic_name, dose, frequency, route, times, interactions,
		       category, active, start_date, end_date, prescriber, instructions,
		       created_at, updated_at
		FROM medications WHERE id = ?`, id)

	med, err := scanMedication(row)
	if err == sql.ErrNoRows {
		return models.Medication{}, fmt.Errorf("medication %s: %w", id, ErrNotFound)
	}
	return med, err
}

func (s *SQLiteStore) GetAllMedications() ([]models.Medication, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`
		SELECT id, name, generic_name, dose, frequency, route, times, interactions,
		       category, active, start_date, end_date, prescriber, instructions,
		       created_at, updated_at
		FROM medications ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []models.Medication
	for rows.Next() {
		med, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, med)
	}
	return meds, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (models.Medication, error) {
	var med models.Medication
	var times, interactions, category, createdAt, updatedAt string

	err := row.Scan(
		&med.ID, &med.Name, &med.GenericName, &med.Dose, &med.Frequency, &med.Route,
		&times, &interactions, &category, &med.Active, &med.StartDate, &med.EndDate,
		&med.Prescriber, &med.Instructions, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.Medication{}, err
	}

	med.Category = models.Category(category)
	if err := json.Unmarshal([]byte(times), &med.Times); err != nil {
		return models.Medication{}, fmt.Errorf("failed to parse times for %s: %w", med.ID, err)
	}
	if err := json.Unmarshal([]byte(interactions), &med.Interactions); err != nil {
		return models.Medication{}, fmt.Errorf("failed to parse interactions for %s: %w", med.ID, err)
	}
	if med.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.Medication{}, fmt.Errorf("failed to parse created_at for %s: %w", med.ID, err)
	}
	if med.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return models.Medication{}, fmt.Errorf("failed to parse updated_at for %s: %w", med.ID, err)
	}

	return med, nil
}

func (s *SQLiteStore) DeleteMedication(id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.Exec("DELETE FROM medications WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("medication %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) AddReminders(reminders []models.ReminderInstance) error {
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO reminders (
			id, medication_id, medication_name, scheduled_at, dose,
			taken, skipped, skip_reason, notified
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range reminders {
		_, err = stmt.Exec(
			r.ID, r.MedicationID, r.MedicationName, r.ScheduledAt.Unix(), r.Dose,
			r.Taken, r.Skipped, r.SkipReason, r.Notified,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetReminder(id string) (models.ReminderInstance, error) {
	if err := s.ready(); err != nil {
		return models.ReminderInstance{}, err
	}
	row := s.db.QueryRow(`
		SELECT id, medication_id, medication_name, scheduled_at, dose,
		       taken, skipped, skip_reason, notified
		FROM reminders WHERE id = ?`, id)

	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return models.ReminderInstance{}, fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return r, err
}

func scanReminder(row rowScanner) (models.ReminderInstance, error) {
	var r models.ReminderInstance
	var scheduledAt int64

	err := row.Scan(
		&r.ID, &r.MedicationID, &r.MedicationName, &scheduledAt, &r.Dose,
		&r.Taken, &r.Skipped, &r.SkipReason, &r.Notified,
	)
	if err != nil {
		return models.ReminderInstance{}, err
	}

	r.ScheduledAt = time.Unix(scheduledAt, 0).Local()
	return r, nil
}

// GetRemindersInRange returns instances with start <= ScheduledAt < end,
// sorted ascending by scheduled time.
func (s *SQLiteStore) GetRemindersInRange(start, end time.Time) ([]models.ReminderInstance, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`
		SELECT id, medication_id, medication_name, scheduled_at, dose,
		       taken, skipped, skip_reason, notified
		FROM reminders WHERE scheduled_at >= ? AND scheduled_at < ?
		ORDER BY scheduled_at`, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReminders(rows)
}

func (s *SQLiteStore) GetRemindersForMedication(medicationID string) ([]models.ReminderInstance, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`
		SELECT id, medication_id, medication_name, scheduled_at, dose,
		       taken, skipped, skip_reason, notified
		FROM reminders WHERE medication_id = ?
		ORDER BY scheduled_at`, medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReminders(rows)
}

func collectReminders(rows *sql.Rows) ([]models.ReminderInstance, error) {
	var out []models.ReminderInstance
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateReminder(r models.ReminderInstance) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.Exec(`
		UPDATE reminders SET
			medication_id = ?, medication_name = ?, scheduled_at = ?, dose = ?,
			taken = ?, skipped = ?, skip_reason = ?, notified = ?
		WHERE id = ?`,
		r.MedicationID, r.MedicationName, r.ScheduledAt.Unix(), r.Dose,
		r.Taken, r.Skipped, r.SkipReason, r.Notified, r.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("reminder %s: %w", r.ID, ErrNotFound)
	}
	return nil
}

// SetReminderOutcome updates only the outcome columns, leaving notified
// alone so a concurrent timer fire cannot be clobbered by a stale snapshot.
func (s *SQLiteStore) SetReminderOutcome(id string, taken, skipped bool, skipReason string) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.Exec(
		"UPDATE reminders SET taken = ?, skipped = ?, skip_reason = ? WHERE id = ?",
		taken, skipped, skipReason, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkReminderNotified flips only the notified column; taken/skipped marks
// made while the alert was in flight survive.
func (s *SQLiteStore) MarkReminderNotified(id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.Exec("UPDATE reminders SET notified = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteReminders(ids []string) error {
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("DELETE FROM reminders WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) DeleteRemindersForMedication(medicationID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM reminders WHERE medication_id = ?", medicationID)
	return err
}

// ClearAll wipes every medication and reminder. Used for full reimport.
func (s *SQLiteStore) ClearAll() error {
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM reminders"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM medications"); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}
