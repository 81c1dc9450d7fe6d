package cli

import (
	"fmt"
	"strings"
)

type MedEditCmd struct {
	Ref       string `arg:"" help:"Medication name or id prefix."`
	Dose      string `short:"d" help:"New dose."`
	Frequency string `short:"f" help:"New frequency descriptor."`
	End       string `short:"e" help:"New end date (YYYY-MM-DD)."`
}

func (c *MedEditCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	med, err := resolveMedication(ctx, c.Ref)
	if err != nil {
		return err
	}

	if c.Dose != "" {
		med.Dose = c.Dose
	}
	if c.Frequency != "" {
		med.Frequency = c.Frequency
	}
	if c.End != "" {
		med.EndDate = c.End
	}

	// UpdateMedication re-parses the frequency and regenerates future
	// pending reminders; history stays intact.
	if err := ctx.Engine.UpdateMedication(med); err != nil {
		return err
	}

	updated, err := ctx.Store.GetMedication(med.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s; dosing times: %s\n", updated.Name, strings.Join(updated.Times, ", "))
	return nil
}
