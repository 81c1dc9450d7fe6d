package models

import "time"

type Category string

const (
	CategoryDaily      Category = "daily"
	CategoryAsNeeded   Category = "as_needed"
	CategoryWeekly     Category = "weekly"
	CategoryInjection  Category = "injection"
	CategoryInhaler    Category = "inhaler"
	CategoryDevice     Category = "device"
	CategorySupplement Category = "supplement"
)

// Medication represents one prescription or supplement being tracked.
// Dose and Frequency are free text as entered or imported; Times holds the
// canonical daily dosing times ("HH:MM") derived from Frequency.
type Medication struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	GenericName  string    `json:"generic_name,omitempty"`
	Dose         string    `json:"dose"`
	Frequency    string    `json:"frequency"`
	Route        string    `json:"route,omitempty"`
	Times        []string  `json:"times"` // HH:MM format
	Interactions []string  `json:"interactions,omitempty"`
	Category     Category  `json:"category"`
	Active       bool      `json:"active"`
	StartDate    string    `json:"start_date,omitempty"` // YYYY-MM-DD format
	EndDate      string    `json:"end_date,omitempty"`   // YYYY-MM-DD format
	Prescriber   string    `json:"prescriber,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
