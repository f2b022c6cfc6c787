package event

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	Collection = "events"
	// MaxInQueryValues is the Firestore limit on values in a single "in" filter.
	MaxInQueryValues = 30
)

type eventDocument struct {
	EventName   string    `firestore:"eventName"`
	Description string    `firestore:"description"`
	Location    string    `firestore:"location"`
	Date        string    `firestore:"date"`
	Time        string    `firestore:"time"`
	UserId      string    `firestore:"userId"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

func toDocument(e Event) eventDocument {
	return eventDocument{
		EventName:   e.EventName,
		Description: e.Description,
		Location:    e.Location,
		Date:        e.Date,
		Time:        e.Time,
		UserId:      e.UserId,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func fromSnapshot(doc *firestore.DocumentSnapshot) (Event, error) {
	var d eventDocument
	if err := doc.DataTo(&d); err != nil {
		return Event{}, fmt.Errorf("failed to decode event %s: %w", doc.Ref.ID, err)
	}
	return Event{
		Id:        doc.Ref.ID,
		UserId:    d.UserId,
		Fields:    Fields{EventName: d.EventName, Description: d.Description, Location: d.Location, Date: d.Date, Time: d.Time},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func fromSnapshots(docs []*firestore.DocumentSnapshot) ([]Event, error) {
	events := make([]Event, 0, len(docs))
	for _, doc := range docs {
		e, err := fromSnapshot(doc)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// sortByCreation orders events the way the Postgres repository does. Firestore would need a
// composite index to order an equality query server-side.
func sortByCreation(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].Id < events[j].Id
	})
}

type firestoreRepository struct {
	client *firestore.Client
}

func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) Create(ctx context.Context, e Event) (Event, error) {
	ref, _, err := r.client.Collection(Collection).Add(ctx, toDocument(e))
	if err != nil {
		log.Errorf("failed to create event: %v", err)
		return Event{}, err
	}
	e.Id = ref.ID
	return e, nil
}

func (r *firestoreRepository) Update(ctx context.Context, e Event) (Event, error) {
	ref := r.client.Collection(Collection).Doc(e.Id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current, err := r.ownedInTx(tx, ref, e.UserId)
		if err != nil {
			return err
		}
		e.CreatedAt = current.CreatedAt
		return tx.Set(ref, toDocument(e))
	})
	if err != nil {
		if !errors.Is(err, ErrEventNotFound) {
			log.Errorf("failed to update event: %v", err)
		}
		return Event{}, err
	}
	return e, nil
}

func (r *firestoreRepository) Delete(ctx context.Context, userId string, id string) error {
	ref := r.client.Collection(Collection).Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := r.ownedInTx(tx, ref, userId); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	if err != nil && !errors.Is(err, ErrEventNotFound) {
		log.Errorf("failed to delete event: %v", err)
	}
	return err
}

func (r *firestoreRepository) ownedInTx(tx *firestore.Transaction, ref *firestore.DocumentRef, userId string) (Event, error) {
	doc, err := tx.Get(ref)
	if status.Code(err) == codes.NotFound {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		return Event{}, err
	}
	current, err := fromSnapshot(doc)
	if err != nil {
		return Event{}, err
	}
	if current.UserId != userId {
		return Event{}, ErrEventNotFound
	}
	return current, nil
}

func (r *firestoreRepository) Get(ctx context.Context, id string) (Event, error) {
	doc, err := r.client.Collection(Collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		log.Errorf("failed to get event: %v", err)
		return Event{}, err
	}
	return fromSnapshot(doc)
}

func (r *firestoreRepository) ListByUser(ctx context.Context, userId string) ([]Event, error) {
	iter := r.client.Collection(Collection).Where("userId", "==", userId).Documents(ctx)
	defer iter.Stop()

	var events []Event
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			log.Errorf("failed to list events: %v", err)
			return nil, err
		}
		e, err := fromSnapshot(doc)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	sortByCreation(events)
	return events, nil
}

// ListByIds queries by document id in chunks of MaxInQueryValues. A failing chunk fails the
// whole call.
func (r *firestoreRepository) ListByIds(ctx context.Context, ids []string) ([]Event, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyIdList
	}
	coll := r.client.Collection(Collection)
	var events []Event
	for _, chunk := range Chunk(ids, MaxInQueryValues) {
		refs := make([]*firestore.DocumentRef, 0, len(chunk))
		for _, id := range chunk {
			refs = append(refs, coll.Doc(id))
		}
		docs, err := coll.Where(firestore.DocumentID, "in", refs).Documents(ctx).GetAll()
		if err != nil {
			log.Errorf("failed to list events by ids: %v", err)
			return nil, err
		}
		found, err := fromSnapshots(docs)
		if err != nil {
			return nil, err
		}
		events = append(events, found...)
	}
	return OrderByIds(ids, events), nil
}

// Chunk splits ids into consecutive slices of at most size elements.
func Chunk(ids []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
