package screen

import (
	"context"
	"slices"
	"sync"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/pkg/event"
)

// Dashboard lists the user's events live and drives favorites and deletion. Snapshots arrive on
// a background goroutine, so its state is guarded and read through accessors.
type Dashboard struct {
	notices
	service DashboardService
	nav     *navigation.Stack

	mu        sync.Mutex
	events    []event.Event
	favorites map[string]bool
	sub       *event.Subscription
	done      chan struct{}
	updates   chan struct{}
}

func NewDashboard(service DashboardService, nav *navigation.Stack) *Dashboard {
	return &Dashboard{
		service:   service,
		nav:       nav,
		favorites: map[string]bool{},
		updates:   make(chan struct{}, 1),
	}
}

// Open starts the realtime subscription and loads the favorited ids. A failed favorites load
// leaves the set empty and raises a notice.
func (d *Dashboard) Open(ctx context.Context) error {
	d.mu.Lock()
	if d.sub != nil {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	sub, err := d.service.WatchEvents(ctx)
	if err != nil {
		d.fail("Could not load events", err)
		return err
	}
	done := make(chan struct{})
	d.mu.Lock()
	d.sub, d.done = sub, done
	d.mu.Unlock()

	go d.mirror(sub, done)

	ids, err := d.service.FavoriteIds(ctx)
	if err != nil {
		d.fail("Could not load favorites", err)
		return nil
	}
	d.setFavorites(ids)
	return nil
}

func (d *Dashboard) mirror(sub *event.Subscription, done chan struct{}) {
	defer close(done)
	for snapshot := range sub.Snapshots() {
		d.mu.Lock()
		d.events = snapshot
		d.mu.Unlock()
		d.notify()
	}
	if err := sub.Err(); err != nil {
		d.fail("Live updates stopped", err)
		d.notify()
	}
}

// Close tears the subscription down and waits for the mirror to stop.
func (d *Dashboard) Close() {
	d.mu.Lock()
	sub, done := d.sub, d.done
	d.sub, d.done = nil, nil
	d.mu.Unlock()
	if sub == nil {
		return
	}
	sub.Close()
	<-done
}

// Updates signals after every snapshot or stream failure. Signals coalesce.
func (d *Dashboard) Updates() <-chan struct{} {
	return d.updates
}

func (d *Dashboard) notify() {
	select {
	case d.updates <- struct{}{}:
	default:
	}
}

func (d *Dashboard) Events() []event.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.events)
}

func (d *Dashboard) IsFavorite(eventId string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.favorites[eventId]
}

// ToggleFavorite flips the membership remotely. The local set is replaced from the response and
// stays untouched when the call fails.
func (d *Dashboard) ToggleFavorite(ctx context.Context, eventId string) bool {
	result, err := d.service.ToggleFavorite(ctx, eventId)
	if err != nil {
		d.fail("Could not update favorites", err)
		return false
	}
	d.setFavorites(result.EventIds)
	return true
}

func (d *Dashboard) setFavorites(ids []string) {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	d.mu.Lock()
	d.favorites = set
	d.mu.Unlock()
}

// DeleteConfirmation is a pending delete awaiting the user's answer.
type DeleteConfirmation struct {
	dashboard *Dashboard
	EventId   string
	answered  bool
}

// RequestDelete asks for confirmation; nothing is sent until Confirm.
func (d *Dashboard) RequestDelete(eventId string) *DeleteConfirmation {
	return &DeleteConfirmation{dashboard: d, EventId: eventId}
}

// Confirm issues exactly one delete call. Later answers are ignored.
func (c *DeleteConfirmation) Confirm(ctx context.Context) bool {
	if c.answered {
		return false
	}
	c.answered = true
	if err := c.dashboard.service.DeleteEvent(ctx, c.EventId); err != nil {
		c.dashboard.fail("Could not delete event", err)
		return false
	}
	return true
}

func (c *DeleteConfirmation) Cancel() {
	c.answered = true
}

func (d *Dashboard) CreateEvent() {
	d.nav.Navigate(navigation.CreateEvent, nil)
}

func (d *Dashboard) EditEvent(e event.Event) {
	d.nav.Navigate(navigation.EditEvent, navigation.WithEvent(e))
}

func (d *Dashboard) ShowEvent(e event.Event) {
	d.nav.Navigate(navigation.EventDetail, navigation.WithEvent(e))
}

func (d *Dashboard) ShowFavorites() {
	d.nav.Navigate(navigation.FavoriteEvents, nil)
}

// Logout signs out and starts over at SignIn. On failure the user stays signed in.
func (d *Dashboard) Logout(ctx context.Context) bool {
	if err := d.service.SignOut(ctx); err != nil {
		d.fail("Sign out failed", err)
		return false
	}
	d.Close()
	d.nav.Reset(navigation.SignIn, nil)
	return true
}
