// Package notify arms one-shot deferred local alerts for pending
// medication reminders.
package notify

import (
	"github.com/gen2brain/beeep"
)

// Notification is the single primitive produced to the platform alert
// surface. Tag must equal the reminder id so the underlying system can
// deduplicate alerts per reminder.
type Notification struct {
	Title              string
	Body               string
	Tag                string
	RequireInteraction bool
}

// Notifier delivers a user-visible local alert.
type Notifier interface {
	Send(n Notification) error
}

// DesktopNotifier delivers alerts through the platform notification
// daemon. Delivery failure (no daemon, permission denied) is reported as an
// error for the caller to swallow; it must never abort scheduling.
type DesktopNotifier struct {
	AppIcon string
}

func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{}
}

func (d *DesktopNotifier) Send(n Notification) error {
	if n.RequireInteraction {
		return beeep.Alert(n.Title, n.Body, d.AppIcon)
	}
	return beeep.Notify(n.Title, n.Body, d.AppIcon)
}

// NoopNotifier is the degraded path when no notification capability is
// available: no alerts fire, everything else keeps working.
type NoopNotifier struct{}

func (NoopNotifier) Send(Notification) error { return nil }
