package cli

import (
	"fmt"
	"sort"
)

type AdherenceCmd struct {
	Window int    `short:"w" help:"Lookback window in days (default from settings)."`
	Med    string `short:"m" help:"Restrict to one medication (name or id prefix)."`
}

func (c *AdherenceCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if c.Med != "" {
		med, err := resolveMedication(ctx, c.Med)
		if err != nil {
			return err
		}
		stats, err := ctx.Engine.MedicationAdherence(med.ID, c.Window)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d%% (%d taken / %d scheduled, %d skipped, %d missed)\n",
			med.Name, stats.Rate, stats.TotalTaken, stats.TotalScheduled, stats.TotalSkipped, stats.TotalMissed)
		return nil
	}

	report, err := ctx.Engine.Adherence(c.Window)
	if err != nil {
		return err
	}

	fmt.Printf("Overall adherence: %d%% (%d taken / %d scheduled, %d skipped, %d missed)\n",
		report.Rate, report.TotalTaken, report.TotalScheduled, report.TotalSkipped, report.TotalMissed)

	if len(report.PerMedication) == 0 {
		return nil
	}

	meds, err := ctx.Store.GetAllMedications()
	if err != nil {
		return err
	}
	names := make(map[string]string, len(meds))
	for _, m := range meds {
		names[m.ID] = m.Name
	}

	ids := make([]string, 0, len(report.PerMedication))
	for id := range report.PerMedication {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return names[ids[i]] < names[ids[j]] })

	fmt.Println()
	for _, id := range ids {
		stats := report.PerMedication[id]
		name := names[id]
		if name == "" {
			name = shortID(id)
		}
		fmt.Printf("  %-24s %3d%% (%d/%d)\n", name, stats.Rate, stats.TotalTaken, stats.TotalScheduled)
	}
	return nil
}
