package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const activityColumns = `user_id, date, water, exercise, updated_at`

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new PostgreSQL activity repository
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

func scanActivity(row pgx.Row) (*entity.Activity, error) {
	var (
		a    entity.Activity
		date time.Time
	)
	if err := row.Scan(&a.UserID, &date, &a.Water, &a.Exercise, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Date = entity.DateOf(date)
	return &a, nil
}

// Upsert merges the patch: absent fields keep their stored value
func (r *activityRepository) Upsert(ctx context.Context, userID uuid.UUID, date entity.Date, patch entity.ActivityPatch) (*entity.Activity, error) {
	query := `
		INSERT INTO activities (user_id, date, water, exercise, updated_at)
		VALUES ($1, $2, GREATEST(COALESCE($3::int, 0), 0), COALESCE($4::boolean, FALSE), $5)
		ON CONFLICT (user_id, date) DO UPDATE SET
			water = GREATEST(COALESCE($3::int, activities.water), 0),
			exercise = COALESCE($4::boolean, activities.exercise),
			updated_at = $5
		RETURNING ` + activityColumns

	a, err := scanActivity(r.pool.QueryRow(ctx, query,
		userID, date.Time(), patch.Water, patch.Exercise, time.Now().UTC(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert activity: %w", err)
	}

	return a, nil
}

func (r *activityRepository) AddWater(ctx context.Context, userID uuid.UUID, date entity.Date, delta int32) (*entity.Activity, error) {
	query := `
		INSERT INTO activities (user_id, date, water, exercise, updated_at)
		VALUES ($1, $2, GREATEST($3::int, 0), FALSE, $4)
		ON CONFLICT (user_id, date) DO UPDATE SET
			water = GREATEST(activities.water + $3::int, 0),
			updated_at = $4
		RETURNING ` + activityColumns

	a, err := scanActivity(r.pool.QueryRow(ctx, query, userID, date.Time(), delta, time.Now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("failed to add water: %w", err)
	}

	return a, nil
}

func (r *activityRepository) Get(ctx context.Context, userID uuid.UUID, date entity.Date) (*entity.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id = $1 AND date = $2`

	a, err := scanActivity(r.pool.QueryRow(ctx, query, userID, date.Time()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	return a, nil
}

func (r *activityRepository) GetRange(ctx context.Context, userID uuid.UUID, from, to entity.Date) ([]*entity.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date DESC
	`

	rows, err := r.pool.Query(ctx, query, userID, from.Time(), to.Time())
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}
	defer rows.Close()

	var activities []*entity.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return activities, nil
}
