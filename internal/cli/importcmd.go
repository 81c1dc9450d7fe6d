package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jordanvik/medikeep/internal/importer"
)

type ImportCmd struct {
	File    string `arg:"" type:"path" help:"JSON file of extracted prescription rows."`
	Replace bool   `help:"Clear all existing medications and reminders first."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	raw, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var records []importer.RawRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	report, err := ctx.Engine.Import(records, c.Replace)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d of %d medications\n", len(report.Imported), len(records))
	for _, med := range report.Imported {
		fmt.Printf("  %s %s (%s) [%s]\n", med.Name, med.Dose, med.Frequency, med.Category)
	}
	for _, rowErr := range report.Errors {
		fmt.Printf("  skipped %s\n", rowErr)
	}
	return nil
}
