package cli

import "fmt"

type InteractionsCmd struct{}

func (c *InteractionsCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	warnings, err := ctx.Engine.CheckInteractions()
	if err != nil {
		return err
	}

	if len(warnings) == 0 {
		fmt.Println("No interactions flagged between active medications.")
		fmt.Println("Note: this only matches the free-text interaction notes on your records; it is not a clinical check.")
		return nil
	}

	for _, w := range warnings {
		fmt.Printf("⚠ %s\n", w.Message)
	}
	return nil
}
