package cli

import "fmt"

type TakeCmd struct {
	Ref string `arg:"" help:"Reminder number from 'today' or id prefix."`
}

func (c *TakeCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	r, err := resolveReminder(ctx, c.Ref)
	if err != nil {
		return err
	}

	if err := ctx.Engine.MarkTaken(r.ID); err != nil {
		return err
	}

	fmt.Printf("Marked %s %s (%s) as taken\n", r.MedicationName, r.Dose, r.ScheduledAt.Format("15:04"))
	return nil
}
