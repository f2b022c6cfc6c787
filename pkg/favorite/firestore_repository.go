package favorite

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
)

const Collection = "favoriteEvents"

type markerDocument struct {
	UserId    string    `firestore:"userId"`
	EventId   string    `firestore:"eventId"`
	CreatedAt time.Time `firestore:"createdAt,omitempty"`
}

type firestoreRepository struct {
	client *firestore.Client
	now    func() time.Time
}

func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client, now: time.Now}
}

func (r *firestoreRepository) pairQuery(userId, eventId string) firestore.Query {
	return r.client.Collection(Collection).Where("userId", "==", userId).Where("eventId", "==", eventId)
}

// Toggle reads and writes the pair's markers in one transaction, so concurrent toggles are
// serialized by Firestore instead of racing on a read-then-write.
func (r *firestoreRepository) Toggle(ctx context.Context, userId, eventId string) (bool, error) {
	var favorited bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(r.pairQuery(userId, eventId)).GetAll()
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			favorited = false
			for _, doc := range docs {
				if err := tx.Delete(doc.Ref); err != nil {
					return err
				}
			}
			return nil
		}
		favorited = true
		ref := r.client.Collection(Collection).Doc(MarkerId(userId, eventId))
		return tx.Create(ref, markerDocument{UserId: userId, EventId: eventId, CreatedAt: r.now()})
	})
	if err != nil {
		log.Errorf("failed to toggle favorite: %v", err)
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return favorited, nil
}

func (r *firestoreRepository) ListEventIds(ctx context.Context, userId string) ([]string, error) {
	markers, err := r.collect(ctx, r.client.Collection(Collection).Where("userId", "==", userId))
	if err != nil {
		log.Errorf("failed to list favorites: %v", err)
		return nil, err
	}
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].CreatedAt.Before(markers[j].CreatedAt)
	})
	return uniqueEventIds(markers), nil
}

func (r *firestoreRepository) Remove(ctx context.Context, userId, eventId string) (int, error) {
	var removed int
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(r.pairQuery(userId, eventId)).GetAll()
		if err != nil {
			return err
		}
		removed = len(docs)
		for _, doc := range docs {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Errorf("failed to remove favorite: %v", err)
		return 0, err
	}
	return removed, nil
}

// FindDuplicates scans every marker. Markers written by older clients used random ids, so a pair
// can hold several of them.
func (r *firestoreRepository) FindDuplicates(ctx context.Context) ([]Duplicate, error) {
	markers, err := r.collect(ctx, r.client.Collection(Collection).Select("userId", "eventId"))
	if err != nil {
		log.Errorf("failed to audit favorites: %v", err)
		return nil, err
	}
	return countDuplicates(markers), nil
}

func (r *firestoreRepository) collect(ctx context.Context, q firestore.Query) ([]Marker, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var markers []Marker
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var d markerDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to decode marker %s: %w", doc.Ref.ID, err)
		}
		markers = append(markers, Marker{Id: doc.Ref.ID, UserId: d.UserId, EventId: d.EventId, CreatedAt: d.CreatedAt})
	}
	return markers, nil
}

func countDuplicates(markers []Marker) []Duplicate {
	type pair struct{ userId, eventId string }
	counts := map[pair]int{}
	for _, m := range markers {
		counts[pair{m.UserId, m.EventId}]++
	}
	var duplicates []Duplicate
	for p, n := range counts {
		if n > 1 {
			duplicates = append(duplicates, Duplicate{UserId: p.userId, EventId: p.eventId, Count: n})
		}
	}
	sort.Slice(duplicates, func(i, j int) bool {
		if duplicates[i].UserId != duplicates[j].UserId {
			return duplicates[i].UserId < duplicates[j].UserId
		}
		return duplicates[i].EventId < duplicates[j].EventId
	})
	return duplicates
}
