package event

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/eventdeck/eventdeck/internal/event_bus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Watcher opens realtime subscriptions on the events owned by one user.
type Watcher interface {
	Watch(ctx context.Context, userId string) (*Subscription, error)
}

// BusWatcher re-reads the repository whenever the event bus reports a change to the user's
// events. It works with any Repository.
type BusWatcher struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewBusWatcher(repo Repository, bus *event_bus.EventBus) *BusWatcher {
	return &BusWatcher{repo: repo, bus: bus}
}

func (w *BusWatcher) Watch(ctx context.Context, userId string) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := NewSubscription(cancel)

	changed := make(chan struct{}, 1)
	unsubscribe := w.bus.SubscribeMany(event_bus.EventChangeTypes, func(e event_bus.Event) error {
		change, ok := e.Data.(event_bus.EventChanged)
		if !ok || change.UserId != userId {
			return nil
		}
		select {
		case changed <- struct{}{}:
		default:
		}
		return nil
	})

	go func() {
		defer unsubscribe()
		for {
			events, err := w.repo.ListByUser(ctx, userId)
			if err != nil {
				if ctx.Err() != nil {
					sub.Finish(nil)
					return
				}
				log.Errorf("event watch for user %s failed: %v", userId, err)
				sub.Finish(fmt.Errorf("failed to load events: %w", err))
				return
			}
			sub.Deliver(events)

			select {
			case <-ctx.Done():
				sub.Finish(nil)
				return
			case <-changed:
			}
		}
	}()

	log.Debugf("opened event watch for user %s", userId)
	return sub, nil
}

// FirestoreWatcher listens to the events query directly with Firestore snapshot listeners.
type FirestoreWatcher struct {
	client *firestore.Client
}

func NewFirestoreWatcher(client *firestore.Client) *FirestoreWatcher {
	return &FirestoreWatcher{client: client}
}

func (w *FirestoreWatcher) Watch(ctx context.Context, userId string) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := NewSubscription(cancel)
	snapshots := w.client.Collection(Collection).Where("userId", "==", userId).Snapshots(ctx)

	go func() {
		defer snapshots.Stop()
		for {
			snap, err := snapshots.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					sub.Finish(nil)
					return
				}
				log.Errorf("firestore listener for user %s failed: %v", userId, err)
				sub.Finish(fmt.Errorf("event listener failed: %w", err))
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				sub.Finish(fmt.Errorf("failed to read event snapshot: %w", err))
				return
			}
			events, err := fromSnapshots(docs)
			if err != nil {
				sub.Finish(err)
				return
			}
			sortByCreation(events)
			sub.Deliver(events)
		}
	}()

	return sub, nil
}
