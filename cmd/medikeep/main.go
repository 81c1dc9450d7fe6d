package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	_ "github.com/joho/godotenv/autoload"

	"github.com/jordanvik/medikeep/internal/cli"
	"github.com/jordanvik/medikeep/internal/engine"
	"github.com/jordanvik/medikeep/internal/notify"
	"github.com/jordanvik/medikeep/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Storage file path." type:"path" default:"~/.config/medikeep/medikeep.db" env:"MEDIKEEP_CONFIG"`
	Quiet   bool   `help:"Disable desktop notifications." env:"MEDIKEEP_QUIET"`

	Init         cli.InitCmd         `cmd:"" help:"Initialize medikeep storage."`
	Add          cli.MedAddCmd       `cmd:"" help:"Add a medication."`
	List         cli.MedListCmd      `cmd:"" help:"List medications."`
	Edit         cli.MedEditCmd      `cmd:"" help:"Edit a medication and regenerate its schedule."`
	Delete       cli.MedDeleteCmd    `cmd:"" help:"Delete or deactivate a medication."`
	Import       cli.ImportCmd       `cmd:"" help:"Import medications from an extracted prescription file."`
	Today        cli.TodayCmd        `cmd:"" help:"Show today's dose schedule." default:"1"`
	Take         cli.TakeCmd         `cmd:"" help:"Mark a dose as taken."`
	Skip         cli.SkipCmd         `cmd:"" help:"Mark a dose as skipped."`
	Adherence    cli.AdherenceCmd    `cmd:"" help:"Show adherence statistics."`
	Interactions cli.InteractionsCmd `cmd:"" help:"Scan active medications for flagged interactions."`
	Watch        cli.WatchCmd        `cmd:"" help:"Arm today's reminder notifications and stay resident."`
	Doctor       cli.DoctorCmd       `cmd:"" help:"Run diagnostics."`
	Backup       struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup file."`
	} `cmd:"" help:"Manage database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("medikeep"),
		kong.Description("Medication schedule and adherence tracker"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	// Determine storage type based on extension
	var store storage.Provider
	if strings.HasSuffix(CLI.Config, ".json") {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(CLI.Config)
	}

	var notifier notify.Notifier = notify.NewDesktopNotifier()
	if CLI.Quiet {
		notifier = notify.NoopNotifier{}
	}

	appCtx := &cli.Context{
		Store:  store,
		Engine: engine.New(store, notifier),
	}

	err := ctx.Run(appCtx)
	if cerr := store.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
