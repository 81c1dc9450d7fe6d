package cli

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jordanvik/medikeep/internal/models"
)

type MedAddCmd struct {
	Name         string `arg:"" help:"Medication name."`
	Dose         string `short:"d" help:"Dose as free text (e.g. '500mg')." required:""`
	Frequency    string `short:"f" help:"Frequency descriptor (e.g. 'twice daily', 'q8h')." required:""`
	Generic      string `short:"g" help:"Generic name."`
	Route        string `short:"r" help:"Route (oral, injection, ...)." default:"oral"`
	Interactions string `short:"i" help:"Comma-separated interaction notes."`
	Start        string `short:"s" help:"Start date (YYYY-MM-DD)."`
	End          string `short:"e" help:"End date (YYYY-MM-DD)."`
	Prescriber   string `short:"p" help:"Prescriber name."`
}

func (c *MedAddCmd) Validate() error {
	return validation.Errors{
		"start": validation.Validate(c.Start, validation.Date("2006-01-02")),
		"end":   validation.Validate(c.End, validation.Date("2006-01-02")),
	}.Filter()
}

func (c *MedAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	var interactions []string
	for _, part := range strings.Split(c.Interactions, ",") {
		if part = strings.TrimSpace(part); part != "" {
			interactions = append(interactions, part)
		}
	}

	med := models.Medication{
		Name:         c.Name,
		GenericName:  c.Generic,
		Dose:         c.Dose,
		Frequency:    c.Frequency,
		Route:        c.Route,
		Interactions: interactions,
		Category:     models.CategoryDaily,
		Active:       true,
		StartDate:    c.Start,
		EndDate:      c.End,
		Prescriber:   c.Prescriber,
	}

	med, err := ctx.Engine.AddMedication(med)
	if err != nil {
		return err
	}

	fmt.Printf("Added medication: %s (ID: %s)\n", med.Name, med.ID)
	fmt.Printf("Dosing times: %s\n", strings.Join(med.Times, ", "))
	return nil
}
