package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jordanvik/medikeep/internal/models"
)

type fakeStore struct {
	mu        sync.Mutex
	reminders map[string]models.ReminderInstance
}

func newFakeStore(reminders ...models.ReminderInstance) *fakeStore {
	s := &fakeStore{reminders: make(map[string]models.ReminderInstance)}
	for _, r := range reminders {
		s.reminders[r.ID] = r
	}
	return s
}

func (s *fakeStore) GetReminder(id string) (models.ReminderInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok {
		return models.ReminderInstance{}, fmt.Errorf("reminder %s not found", id)
	}
	return r, nil
}

func (s *fakeStore) MarkReminderNotified(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok {
		return fmt.Errorf("reminder %s not found", id)
	}
	r.Notified = true
	s.reminders[id] = r
	return nil
}

func (s *fakeStore) put(r models.ReminderInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders[r.ID] = r
}

func (s *fakeStore) setTaken(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.reminders[id]
	r.Taken = true
	s.reminders[id] = r
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	ch   chan Notification
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ch: make(chan Notification, 16)}
}

func (n *recordingNotifier) Send(notification Notification) error {
	n.mu.Lock()
	n.sent = append(n.sent, notification)
	n.mu.Unlock()
	n.ch <- notification
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type failingNotifier struct{}

func (failingNotifier) Send(Notification) error {
	return fmt.Errorf("notification daemon unavailable")
}

func pending(id string, at time.Time) models.ReminderInstance {
	return models.ReminderInstance{
		ID:             id,
		MedicationID:   "med-1",
		MedicationName: "Lisinopril",
		Dose:           "10mg",
		ScheduledAt:    at,
	}
}

func TestArm_OnlyFuturePendingUnnotified(t *testing.T) {
	now := time.Now()
	taken := pending("r-taken", now.Add(time.Hour))
	taken.Taken = true
	skipped := pending("r-skipped", now.Add(time.Hour))
	skipped.Skipped = true
	notified := pending("r-notified", now.Add(time.Hour))
	notified.Notified = true
	past := pending("r-past", now.Add(-time.Hour))
	future := pending("r-future", now.Add(time.Hour))

	sched := NewScheduler(newFakeStore(), NoopNotifier{})
	defer sched.Close()

	armed := sched.Arm([]models.ReminderInstance{taken, skipped, notified, past, future})
	if armed != 1 {
		t.Fatalf("armed %d timers, want 1 (only the future pending instance)", armed)
	}
	if sched.ArmedCount() != 1 {
		t.Fatalf("ArmedCount = %d, want 1", sched.ArmedCount())
	}
}

func TestArm_IdempotentPerReminder(t *testing.T) {
	r := pending("r-1", time.Now().Add(time.Hour))
	sched := NewScheduler(newFakeStore(r), NoopNotifier{})
	defer sched.Close()

	today := []models.ReminderInstance{r}
	sched.Arm(today)
	if armed := sched.Arm(today); armed != 0 {
		t.Fatalf("second Arm armed %d timers, want 0", armed)
	}
	if sched.ArmedCount() != 1 {
		t.Fatalf("ArmedCount = %d, want 1 after double arm", sched.ArmedCount())
	}
}

func TestFire_SendsAlertAndMarksNotified(t *testing.T) {
	r := pending("r-1", time.Now().Add(30*time.Millisecond))
	store := newFakeStore(r)
	notifier := newRecordingNotifier()
	sched := NewScheduler(store, notifier)
	defer sched.Close()

	sched.Arm([]models.ReminderInstance{r})

	select {
	case n := <-notifier.ch:
		if n.Tag != "r-1" {
			t.Errorf("notification tag = %q, want reminder id", n.Tag)
		}
		if n.Body != "Lisinopril 10mg" {
			t.Errorf("notification body = %q, want medication name and dose", n.Body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	// The notified flag is recorded after delivery.
	deadline := time.After(time.Second)
	for {
		got, err := store.GetReminder("r-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Notified {
			break
		}
		select {
		case <-deadline:
			t.Fatal("notified flag never recorded")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if sched.ArmedCount() != 0 {
		t.Errorf("fired timer still tracked, ArmedCount = %d", sched.ArmedCount())
	}
}

func TestFire_AlreadyNotifiedDoesNotResend(t *testing.T) {
	r := pending("r-1", time.Now().Add(20*time.Millisecond))
	store := newFakeStore(r)
	notifier := newRecordingNotifier()
	sched := NewScheduler(store, notifier)
	defer sched.Close()

	// Someone else (a previous run) recorded the notification between
	// arming and firing.
	sched.Arm([]models.ReminderInstance{r})
	r.Notified = true
	store.put(r)

	time.Sleep(200 * time.Millisecond)
	if notifier.count() != 0 {
		t.Fatalf("notified reminder re-alerted %d times", notifier.count())
	}
}

// gatingStore pauses the fire callback between its read and its write so a
// user action can be interleaved deterministically.
type gatingStore struct {
	*fakeStore
	entered chan struct{}
	release chan struct{}
}

func (s *gatingStore) GetReminder(id string) (models.ReminderInstance, error) {
	r, err := s.fakeStore.GetReminder(id)
	s.entered <- struct{}{}
	<-s.release
	return r, err
}

func TestFire_DoesNotRevertConcurrentTakenMark(t *testing.T) {
	r := pending("r-1", time.Now().Add(20*time.Millisecond))
	store := &gatingStore{
		fakeStore: newFakeStore(r),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	notifier := newRecordingNotifier()
	sched := NewScheduler(store, notifier)
	defer sched.Close()

	sched.Arm([]models.ReminderInstance{r})

	// The fire callback has read the record but not yet written; mark the
	// dose taken in the gap, then let the callback finish.
	select {
	case <-store.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
	store.setTaken("r-1")
	close(store.release)

	deadline := time.After(2 * time.Second)
	for {
		got, err := store.fakeStore.GetReminder("r-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Notified {
			if !got.Taken {
				t.Fatalf("taken mark reverted by timer fire: %+v", got)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("notified flag never recorded")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestCancelMedication_StopsStaleTimers(t *testing.T) {
	r1 := pending("r-1", time.Now().Add(30*time.Millisecond))
	r2 := pending("r-2", time.Now().Add(30*time.Millisecond))
	r2.MedicationID = "med-2"

	store := newFakeStore(r1, r2)
	notifier := newRecordingNotifier()
	sched := NewScheduler(store, notifier)
	defer sched.Close()

	sched.Arm([]models.ReminderInstance{r1, r2})
	sched.CancelMedication("med-1")

	select {
	case n := <-notifier.ch:
		if n.Tag != "r-2" {
			t.Fatalf("alert fired for cancelled medication: %+v", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("surviving timer never fired")
	}

	time.Sleep(100 * time.Millisecond)
	if notifier.count() != 1 {
		t.Fatalf("expected exactly 1 alert after cancellation, got %d", notifier.count())
	}
}

func TestFire_NotifierFailureDegradesSilently(t *testing.T) {
	r := pending("r-1", time.Now().Add(20*time.Millisecond))
	store := newFakeStore(r)
	sched := NewScheduler(store, failingNotifier{})
	defer sched.Close()

	sched.Arm([]models.ReminderInstance{r})

	// Delivery failed but the notified flag is still recorded so the
	// reminder is not re-armed forever.
	deadline := time.After(time.Second)
	for {
		got, err := store.GetReminder("r-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Notified {
			return
		}
		select {
		case <-deadline:
			t.Fatal("notified flag never recorded after delivery failure")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestClose_StopsAllTimers(t *testing.T) {
	notifier := newRecordingNotifier()
	sched := NewScheduler(newFakeStore(), notifier)

	var reminders []models.ReminderInstance
	for i := 0; i < 5; i++ {
		reminders = append(reminders, pending(fmt.Sprintf("r-%d", i), time.Now().Add(50*time.Millisecond)))
	}
	sched.Arm(reminders)
	sched.Close()

	if sched.ArmedCount() != 0 {
		t.Fatalf("ArmedCount = %d after Close, want 0", sched.ArmedCount())
	}

	time.Sleep(150 * time.Millisecond)
	if notifier.count() != 0 {
		t.Fatalf("%d alerts fired after Close", notifier.count())
	}
}
