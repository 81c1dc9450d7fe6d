package cli

import (
	"fmt"
	"time"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	today, err := ctx.Engine.TodaysSchedule()
	if err != nil {
		return err
	}

	if len(today) == 0 {
		fmt.Println("Nothing scheduled for today.")
		return nil
	}

	now := time.Now()
	fmt.Printf("Schedule for %s:\n", now.Format("Mon Jan 2"))
	for i, r := range today {
		fmt.Printf("%2d. %s  %s %s  [%s]\n",
			i+1, r.ScheduledAt.Format("15:04"), r.MedicationName, r.Dose, reminderStatus(r, now))
	}
	return nil
}
