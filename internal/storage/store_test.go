package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jordanvik/medikeep/internal/models"
)

// Both providers must satisfy the same contract, so every test runs
// against each.
func eachProvider(t *testing.T, fn func(t *testing.T, store Provider)) {
	t.Helper()

	t.Run("json", func(t *testing.T) {
		store := NewJSONStore(filepath.Join(t.TempDir(), "medikeep.json"))
		if err := store.Init(); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { store.Close() })
		fn(t, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		store := NewSQLiteStore(filepath.Join(t.TempDir(), "medikeep.db"))
		if err := store.Init(); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { store.Close() })
		fn(t, store)
	})
}

func sampleMedication(id string) models.Medication {
	return models.Medication{
		ID:           id,
		Name:         "Metformin",
		GenericName:  "metformin hydrochloride",
		Dose:         "500mg",
		Frequency:    "twice daily",
		Route:        "oral",
		Times:        []string{"08:00", "20:00"},
		Interactions: []string{"avoid alcohol"},
		Category:     models.CategoryDaily,
		Active:       true,
		CreatedAt:    time.Now().Truncate(time.Second),
		UpdatedAt:    time.Now().Truncate(time.Second),
	}
}

func sampleReminder(id, medID string, at time.Time) models.ReminderInstance {
	return models.ReminderInstance{
		ID:             id,
		MedicationID:   medID,
		MedicationName: "Metformin",
		ScheduledAt:    at,
		Dose:           "500mg",
	}
}

func TestProvider_MedicationRoundtrip(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		med := sampleMedication("med-1")
		if err := store.AddMedication(med); err != nil {
			t.Fatal(err)
		}

		got, err := store.GetMedication("med-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != med.Name || got.Dose != med.Dose || got.GenericName != med.GenericName {
			t.Errorf("got %+v, want %+v", got, med)
		}
		if len(got.Times) != 2 || got.Times[0] != "08:00" {
			t.Errorf("times not preserved: %v", got.Times)
		}
		if len(got.Interactions) != 1 {
			t.Errorf("interactions not preserved: %v", got.Interactions)
		}
	})
}

func TestProvider_GetMissingMedication(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		_, err := store.GetMedication("nope")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestProvider_UpdateMedication(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		med := sampleMedication("med-1")
		if err := store.AddMedication(med); err != nil {
			t.Fatal(err)
		}

		med.Dose = "1000mg"
		med.Active = false
		if err := store.UpdateMedication(med); err != nil {
			t.Fatal(err)
		}

		got, err := store.GetMedication("med-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Dose != "1000mg" || got.Active {
			t.Errorf("update not persisted: %+v", got)
		}

		if err := store.UpdateMedication(sampleMedication("ghost")); !errors.Is(err, ErrNotFound) {
			t.Errorf("updating a missing medication should fail, got %v", err)
		}
	})
}

func TestProvider_ReminderRangeQuery(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
		reminders := []models.ReminderInstance{
			sampleReminder("r-1", "med-1", base),
			sampleReminder("r-2", "med-1", base.AddDate(0, 0, 1)),
			sampleReminder("r-3", "med-1", base.AddDate(0, 0, 5)),
		}
		if err := store.AddReminders(reminders); err != nil {
			t.Fatal(err)
		}

		// Window covers the first two days only; start inclusive, end
		// exclusive.
		start := base.Add(-time.Hour)
		end := base.AddDate(0, 0, 2)
		got, err := store.GetRemindersInRange(start, end)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("range returned %d reminders, want 2", len(got))
		}
		if !got[0].ScheduledAt.Before(got[1].ScheduledAt) {
			t.Error("range result not sorted ascending")
		}
	})
}

func TestProvider_ReminderMutation(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		r := sampleReminder("r-1", "med-1", time.Now().Truncate(time.Second))
		if err := store.AddReminders([]models.ReminderInstance{r}); err != nil {
			t.Fatal(err)
		}

		r.Taken = true
		r.Notified = true
		if err := store.UpdateReminder(r); err != nil {
			t.Fatal(err)
		}

		got, err := store.GetReminder("r-1")
		if err != nil {
			t.Fatal(err)
		}
		if !got.Taken || !got.Notified {
			t.Errorf("mutation not persisted: %+v", got)
		}
	})
}

// The outcome and notified writes are single-field updates, so one never
// erases the other regardless of ordering.
func TestProvider_SingleFieldReminderUpdates(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		r := sampleReminder("r-1", "med-1", time.Now().Truncate(time.Second))
		if err := store.AddReminders([]models.ReminderInstance{r}); err != nil {
			t.Fatal(err)
		}

		if err := store.SetReminderOutcome("r-1", true, false, ""); err != nil {
			t.Fatal(err)
		}
		if err := store.MarkReminderNotified("r-1"); err != nil {
			t.Fatal(err)
		}
		got, err := store.GetReminder("r-1")
		if err != nil {
			t.Fatal(err)
		}
		if !got.Taken || !got.Notified {
			t.Errorf("flags lost, got %+v", got)
		}

		// The reverse order preserves notified.
		if err := store.SetReminderOutcome("r-1", false, true, "out of stock"); err != nil {
			t.Fatal(err)
		}
		got, err = store.GetReminder("r-1")
		if err != nil {
			t.Fatal(err)
		}
		if !got.Notified {
			t.Error("outcome write clobbered the notified flag")
		}
		if got.Taken || !got.Skipped || got.SkipReason != "out of stock" {
			t.Errorf("outcome not persisted: %+v", got)
		}

		if err := store.SetReminderOutcome("ghost", true, false, ""); !errors.Is(err, ErrNotFound) {
			t.Errorf("outcome on missing reminder should fail, got %v", err)
		}
		if err := store.MarkReminderNotified("ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("notify on missing reminder should fail, got %v", err)
		}
	})
}

func TestProvider_DeleteForMedication(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		now := time.Now().Truncate(time.Second)
		if err := store.AddReminders([]models.ReminderInstance{
			sampleReminder("r-1", "med-1", now),
			sampleReminder("r-2", "med-1", now.Add(time.Hour)),
			sampleReminder("r-3", "med-2", now),
		}); err != nil {
			t.Fatal(err)
		}

		if err := store.DeleteRemindersForMedication("med-1"); err != nil {
			t.Fatal(err)
		}

		if _, err := store.GetReminder("r-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("r-1 should be gone, got %v", err)
		}
		if _, err := store.GetReminder("r-3"); err != nil {
			t.Errorf("other medication's reminder should survive: %v", err)
		}
	})
}

func TestProvider_DeleteRemindersByID(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		now := time.Now().Truncate(time.Second)
		if err := store.AddReminders([]models.ReminderInstance{
			sampleReminder("r-1", "med-1", now),
			sampleReminder("r-2", "med-1", now.Add(time.Hour)),
		}); err != nil {
			t.Fatal(err)
		}

		if err := store.DeleteReminders([]string{"r-2"}); err != nil {
			t.Fatal(err)
		}
		if _, err := store.GetReminder("r-2"); !errors.Is(err, ErrNotFound) {
			t.Errorf("r-2 should be gone, got %v", err)
		}
		if _, err := store.GetReminder("r-1"); err != nil {
			t.Errorf("r-1 should survive: %v", err)
		}
	})
}

func TestProvider_ClearAll(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		if err := store.AddMedication(sampleMedication("med-1")); err != nil {
			t.Fatal(err)
		}
		if err := store.AddReminders([]models.ReminderInstance{
			sampleReminder("r-1", "med-1", time.Now()),
		}); err != nil {
			t.Fatal(err)
		}

		if err := store.ClearAll(); err != nil {
			t.Fatal(err)
		}

		meds, err := store.GetAllMedications()
		if err != nil {
			t.Fatal(err)
		}
		if len(meds) != 0 {
			t.Errorf("medications survived ClearAll: %+v", meds)
		}
		if _, err := store.GetReminder("r-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("reminder survived ClearAll: %v", err)
		}
	})
}

func TestProvider_SettingsRoundtrip(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		settings, err := store.GetSettings()
		if err != nil {
			t.Fatal(err)
		}
		if settings.HorizonDays != 30 || settings.AdherenceWindowDays != 30 {
			t.Errorf("defaults = %+v, want 30/30", settings)
		}

		settings.HorizonDays = 14
		if err := store.SaveSettings(settings); err != nil {
			t.Fatal(err)
		}
		got, err := store.GetSettings()
		if err != nil {
			t.Fatal(err)
		}
		if got.HorizonDays != 14 {
			t.Errorf("HorizonDays = %d, want 14", got.HorizonDays)
		}
	})
}

func TestJSONStore_LoadBeforeInitFails(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "medikeep.json"))
	if err := store.Load(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestSQLiteStore_LoadBeforeInitFails(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "medikeep.db"))
	if err := store.Load(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

// Every method on an unopened sqlite store returns the sentinel instead of
// dereferencing a nil connection, matching the JSON store's behavior.
func TestSQLiteStore_UseBeforeLoadFails(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "medikeep.db"))

	checks := map[string]error{}
	_, err := store.GetSettings()
	checks["GetSettings"] = err
	checks["SaveSettings"] = store.SaveSettings(DefaultSettings())
	checks["AddMedication"] = store.AddMedication(sampleMedication("m"))
	_, err = store.GetMedication("m")
	checks["GetMedication"] = err
	_, err = store.GetAllMedications()
	checks["GetAllMedications"] = err
	checks["UpdateMedication"] = store.UpdateMedication(sampleMedication("m"))
	checks["DeleteMedication"] = store.DeleteMedication("m")
	checks["AddReminders"] = store.AddReminders(nil)
	_, err = store.GetReminder("r")
	checks["GetReminder"] = err
	_, err = store.GetRemindersInRange(time.Now(), time.Now())
	checks["GetRemindersInRange"] = err
	_, err = store.GetRemindersForMedication("m")
	checks["GetRemindersForMedication"] = err
	checks["UpdateReminder"] = store.UpdateReminder(sampleReminder("r", "m", time.Now()))
	checks["SetReminderOutcome"] = store.SetReminderOutcome("r", true, false, "")
	checks["MarkReminderNotified"] = store.MarkReminderNotified("r")
	checks["DeleteReminders"] = store.DeleteReminders([]string{"r"})
	checks["DeleteRemindersForMedication"] = store.DeleteRemindersForMedication("m")
	checks["ClearAll"] = store.ClearAll()

	for name, err := range checks {
		if !errors.Is(err, ErrNotInitialized) {
			t.Errorf("%s before Load: got %v, want ErrNotInitialized", name, err)
		}
	}
}
