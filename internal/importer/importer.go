// Package importer converts raw field records extracted from an uploaded
// document by an external parser into canonical medications. One bad row
// never aborts the batch; each failure becomes a per-row diagnostic in the
// report.
package importer

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/jordanvik/medikeep/internal/frequency"
	"github.com/jordanvik/medikeep/internal/models"
)

// RawRecord is the structured output of the import collaborator for one
// document row.
type RawRecord struct {
	Name         string `json:"name"`
	GenericName  string `json:"generic_name"`
	Dose         string `json:"dose"`
	Frequency    string `json:"frequency"`
	Route        string `json:"route"`
	Prescriber   string `json:"prescriber"`
	StartDate    string `json:"start_date"`
	Instructions string `json:"instructions"`
}

// Validate rejects rows the engine cannot turn into a usable medication.
func (r RawRecord) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Dose, validation.Required),
		validation.Field(&r.StartDate, validation.Date("2006-01-02")),
	)
}

// RowError records why a single row was skipped.
type RowError struct {
	Row int    `json:"row"`
	Err string `json:"error"`
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Err)
}

// Report is the outcome of one import batch.
type Report struct {
	Imported []models.Medication `json:"imported"`
	Errors   []RowError          `json:"errors"`
}

// Convert validates each raw record and builds the corresponding
// medications. Rows that fail validation are skipped and reported; the
// rest of the batch proceeds.
func Convert(records []RawRecord, now time.Time) Report {
	var report Report

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			report.Errors = append(report.Errors, RowError{Row: i + 1, Err: err.Error()})
			continue
		}

		med := models.Medication{
			ID:           uuid.New().String(),
			Name:         strings.TrimSpace(rec.Name),
			GenericName:  strings.TrimSpace(rec.GenericName),
			Dose:         strings.TrimSpace(rec.Dose),
			Frequency:    strings.TrimSpace(rec.Frequency),
			Route:        strings.TrimSpace(rec.Route),
			Times:        frequency.Parse(rec.Frequency),
			Category:     inferCategory(rec),
			Active:       true,
			StartDate:    rec.StartDate,
			Prescriber:   strings.TrimSpace(rec.Prescriber),
			Instructions: strings.TrimSpace(rec.Instructions),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		report.Imported = append(report.Imported, med)
	}

	return report
}

// inferCategory derives a medication category by keyword matching on the
// row's frequency, route, and name text.
func inferCategory(rec RawRecord) models.Category {
	freq := strings.ToLower(rec.Frequency)
	route := strings.ToLower(rec.Route)
	name := strings.ToLower(rec.Name)

	switch {
	case strings.Contains(freq, "as needed") || strings.Contains(freq, "prn"):
		return models.CategoryAsNeeded
	case strings.Contains(freq, "week"):
		return models.CategoryWeekly
	case strings.Contains(route, "inject") || strings.Contains(route, "subcutaneous") ||
		strings.Contains(route, "intramuscular") || strings.Contains(route, "iv"):
		return models.CategoryInjection
	case strings.Contains(route, "inhal") || strings.Contains(name, "inhaler"):
		return models.CategoryInhaler
	case strings.Contains(name, "brace") || strings.Contains(name, "stocking"):
		return models.CategoryDevice
	case strings.Contains(name, "vitamin") || strings.Contains(name, "supplement") ||
		strings.Contains(name, "fish oil") || strings.Contains(name, "omega"):
		return models.CategorySupplement
	default:
		return models.CategoryDaily
	}
}
