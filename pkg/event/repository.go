package event

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Create stores a new event and returns it with its generated id.
	Create(ctx context.Context, e Event) (Event, error)
	// Update replaces the fields of an event owned by e.UserId. Returns ErrEventNotFound when the
	// event does not exist or belongs to someone else.
	Update(ctx context.Context, e Event) (Event, error)
	Delete(ctx context.Context, userId string, id string) error
	Get(ctx context.Context, id string) (Event, error)
	ListByUser(ctx context.Context, userId string) ([]Event, error)
	// ListByIds returns the events with the given ids in the order given. Unknown ids are skipped.
	ListByIds(ctx context.Context, ids []string) ([]Event, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

const selectEvent = `SELECT id, user_id, event_name, description, location, event_date, event_time, created_at, updated_at
	FROM events`

func (r *repositoryImpl) Create(ctx context.Context, e Event) (Event, error) {
	e.Id = uuid.NewString()
	query := `INSERT INTO events (id, user_id, event_name, description, location, event_date, event_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query, e.Id, e.UserId, e.EventName, e.Description, e.Location, e.Date, e.Time, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		log.Errorf("failed to create event: %v", err)
		return Event{}, err
	}
	return e, nil
}

func (r *repositoryImpl) Update(ctx context.Context, e Event) (Event, error) {
	query := `UPDATE events SET event_name = $1, description = $2, location = $3, event_date = $4, event_time = $5,
		updated_at = $6 WHERE id = $7 AND user_id = $8 RETURNING created_at`
	err := r.db.QueryRow(ctx, query, e.EventName, e.Description, e.Location, e.Date, e.Time, e.UpdatedAt, e.Id, e.UserId).
		Scan(&e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		log.Errorf("failed to update event: %v", err)
		return Event{}, err
	}
	return e, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userId string, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, id, userId)
	if err != nil {
		log.Errorf("failed to delete event: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repositoryImpl) Get(ctx context.Context, id string) (Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, selectEvent+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		log.Errorf("failed to get event: %v", err)
		return Event{}, err
	}
	return e, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userId string) ([]Event, error) {
	rows, err := r.db.Query(ctx, selectEvent+` WHERE user_id = $1 ORDER BY created_at, id`, userId)
	if err != nil {
		log.Errorf("failed to list events: %v", err)
		return nil, err
	}
	return collectEvents(rows)
}

func (r *repositoryImpl) ListByIds(ctx context.Context, ids []string) ([]Event, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyIdList
	}
	rows, err := r.db.Query(ctx, selectEvent+` WHERE id = ANY($1)`, ids)
	if err != nil {
		log.Errorf("failed to list events by ids: %v", err)
		return nil, err
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	return OrderByIds(ids, events), nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.Id, &e.UserId, &e.EventName, &e.Description, &e.Location, &e.Date, &e.Time, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func collectEvents(rows pgx.Rows) ([]Event, error) {
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Event, error) {
		return scanEvent(row)
	})
	if err != nil {
		log.Errorf("failed to read events: %v", err)
		return nil, err
	}
	return events, nil
}
