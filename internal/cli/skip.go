package cli

import "fmt"

type SkipCmd struct {
	Ref    string `arg:"" help:"Reminder number from 'today' or id prefix."`
	Reason string `short:"r" help:"Why the dose was skipped."`
}

func (c *SkipCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	r, err := resolveReminder(ctx, c.Ref)
	if err != nil {
		return err
	}

	if err := ctx.Engine.MarkSkipped(r.ID, c.Reason); err != nil {
		return err
	}

	fmt.Printf("Marked %s %s (%s) as skipped\n", r.MedicationName, r.Dose, r.ScheduledAt.Format("15:04"))
	return nil
}
