package favorite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Toggle flips membership of (userId, eventId) atomically and reports the resulting state.
	// Every existing marker for the pair is removed when the event was favorited.
	Toggle(ctx context.Context, userId, eventId string) (bool, error)
	// ListEventIds returns the favorited event ids without duplicates, oldest first.
	ListEventIds(ctx context.Context, userId string) ([]string, error)
	// Remove deletes every marker for the pair and returns how many were deleted.
	Remove(ctx context.Context, userId, eventId string) (int, error)
	FindDuplicates(ctx context.Context) ([]Duplicate, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Toggle(ctx context.Context, userId, eventId string) (bool, error) {
	var favorited bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM favorite_events WHERE user_id = $1 AND event_id = $2`, userId, eventId)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			favorited = false
			return nil
		}
		_, err = tx.Exec(ctx, `INSERT INTO favorite_events (id, user_id, event_id) VALUES ($1, $2, $3)
			ON CONFLICT (user_id, event_id) DO NOTHING`, uuid.NewString(), userId, eventId)
		if err != nil {
			return err
		}
		favorited = true
		return nil
	})
	if err != nil {
		log.Errorf("failed to toggle favorite: %v", err)
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return favorited, nil
}

func (r *repositoryImpl) ListEventIds(ctx context.Context, userId string) ([]string, error) {
	query := `SELECT event_id FROM favorite_events WHERE user_id = $1
		GROUP BY event_id ORDER BY min(created_at), event_id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to list favorites: %v", err)
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		log.Errorf("failed to read favorites: %v", err)
		return nil, err
	}
	return ids, nil
}

func (r *repositoryImpl) Remove(ctx context.Context, userId, eventId string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM favorite_events WHERE user_id = $1 AND event_id = $2`, userId, eventId)
	if err != nil {
		log.Errorf("failed to remove favorite: %v", err)
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *repositoryImpl) FindDuplicates(ctx context.Context) ([]Duplicate, error) {
	query := `SELECT user_id, event_id, count(*) FROM favorite_events
		GROUP BY user_id, event_id HAVING count(*) > 1 ORDER BY user_id, event_id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		log.Errorf("failed to audit favorites: %v", err)
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Duplicate, error) {
		var d Duplicate
		err := row.Scan(&d.UserId, &d.EventId, &d.Count)
		return d, err
	})
}
