package cli

import "fmt"

type MedDeleteCmd struct {
	Ref        string `arg:"" help:"Medication name or id prefix."`
	Deactivate bool   `help:"Deactivate instead of deleting; keeps dose history."`
}

func (c *MedDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	med, err := resolveMedication(ctx, c.Ref)
	if err != nil {
		return err
	}

	if c.Deactivate {
		if err := ctx.Engine.DeactivateMedication(med.ID); err != nil {
			return err
		}
		fmt.Printf("Deactivated %s; history retained, future reminders dropped\n", med.Name)
		return nil
	}

	if err := ctx.Engine.DeleteMedication(med.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %s and all of its reminders\n", med.Name)
	return nil
}
