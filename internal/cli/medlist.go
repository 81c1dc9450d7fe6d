package cli

import (
	"fmt"
	"strings"
)

type MedListCmd struct {
	All bool `short:"a" help:"Include inactive medications."`
}

func (c *MedListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	meds, err := ctx.Store.GetAllMedications()
	if err != nil {
		return err
	}

	shown := 0
	for _, m := range meds {
		if !m.Active && !c.All {
			continue
		}
		status := ""
		if !m.Active {
			status = " [inactive]"
		}
		fmt.Printf("%s  %s %s (%s)%s\n", shortID(m.ID), m.Name, m.Dose, m.Frequency, status)
		fmt.Printf("          times: %s\n", strings.Join(m.Times, ", "))
		shown++
	}

	if shown == 0 {
		fmt.Println("No medications. Add one with 'medikeep add'.")
	}
	return nil
}
