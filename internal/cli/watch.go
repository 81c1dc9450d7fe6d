package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// WatchCmd arms deferred local notifications for today's un-actioned
// reminders and stays resident until interrupted so the timers can fire.
type WatchCmd struct{}

func (c *WatchCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	armed, err := ctx.Engine.ArmNotifications()
	if err != nil {
		return err
	}
	defer ctx.Engine.Close()

	if armed == 0 {
		fmt.Println("No upcoming reminders left today; nothing to watch.")
		return nil
	}

	fmt.Printf("Armed %d reminder notification(s); press Ctrl-C to stop\n", armed)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	fmt.Println("\nStopping; remaining timers cancelled")
	return nil
}
