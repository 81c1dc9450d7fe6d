package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/jordanvik/medikeep/internal/backup"
	"github.com/jordanvik/medikeep/internal/storage"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false

	if err := checkStoreReachable(ctx); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")
	}

	if err := checkSettings(ctx); err != nil {
		fmt.Printf("❌ Settings present: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Settings present: OK\n")
	}

	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	if err := checkSingleProcess(); err != nil {
		fmt.Printf("⚠ Single process: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Single process: OK\n")
	}

	if err := checkClock(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	if sqliteStore, ok := ctx.Store.(*storage.SQLiteStore); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func checkSettings(ctx *Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if settings.HorizonDays <= 0 {
		return fmt.Errorf("horizon_days must be positive, got %d", settings.HorizonDays)
	}
	if settings.AdherenceWindowDays <= 0 {
		return fmt.Errorf("adherence_window_days must be positive, got %d", settings.AdherenceWindowDays)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found; run 'medikeep backup create'")
	}
	return nil
}

// checkSingleProcess flags a second running medikeep process. Two
// processes sharing the same storage path can interleave writes.
func checkSingleProcess() error {
	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	self := filepath.Base(os.Args[0])
	count := 0
	for _, p := range procs {
		if strings.HasPrefix(p.Executable(), self) {
			count++
		}
	}
	if count > 1 {
		return fmt.Errorf("found %d running %s processes; concurrent access to the same store is unsupported", count, self)
	}
	return nil
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}
