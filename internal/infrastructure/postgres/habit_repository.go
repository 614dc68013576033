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

const habitColumns = `
	id, user_id, name, description,
	current_streak, longest_streak, last_completed, history, growth_stage,
	created_at, updated_at`

type habitRepository struct {
	pool *pgxpool.Pool
}

// NewHabitRepository creates a new PostgreSQL habit repository
func NewHabitRepository(pool *pgxpool.Pool) repository.HabitRepository {
	return &habitRepository{pool: pool}
}

func scanHabit(row pgx.Row) (*entity.Habit, error) {
	var (
		habit         entity.Habit
		lastCompleted *time.Time
		history       []string
	)
	err := row.Scan(
		&habit.ID, &habit.UserID, &habit.Name, &habit.Description,
		&habit.CurrentStreak, &habit.LongestStreak, &lastCompleted, &history, &habit.GrowthStage,
		&habit.CreatedAt, &habit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastCompleted != nil {
		d := entity.DateOf(*lastCompleted)
		habit.LastCompleted = &d
	}
	habit.History, err = entity.ParseDates(history)
	if err != nil {
		return nil, fmt.Errorf("habit %s has corrupt history: %w", habit.ID, err)
	}
	return &habit, nil
}

func collectHabits(rows pgx.Rows) ([]*entity.Habit, error) {
	defer rows.Close()

	var habits []*entity.Habit
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, habit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}

	return habits, nil
}

func lastCompletedParam(habit *entity.Habit) *time.Time {
	if habit.LastCompleted == nil {
		return nil
	}
	t := habit.LastCompleted.Time()
	return &t
}

func (r *habitRepository) Create(ctx context.Context, habit *entity.Habit) error {
	query := `
		INSERT INTO habits (` + habitColumns + `
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11
		)
	`

	_, err := r.pool.Exec(ctx, query,
		habit.ID, habit.UserID, habit.Name, habit.Description,
		habit.CurrentStreak, habit.LongestStreak, lastCompletedParam(habit), entity.DateStrings(habit.History), habit.GrowthStage,
		habit.CreatedAt, habit.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}

	return nil
}

func (r *habitRepository) GetByIDAndUserID(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2`

	habit, err := scanHabit(r.pool.QueryRow(ctx, query, habitID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrHabitNotFound
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return habit, nil
}

func (r *habitRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}

	return collectHabits(rows)
}

func (r *habitRepository) UpdateDetails(ctx context.Context, habitID, userID uuid.UUID, name, description string, updatedAt time.Time) (*entity.Habit, error) {
	query := `
		UPDATE habits SET
			name = $1,
			description = $2,
			updated_at = $3
		WHERE id = $4 AND user_id = $5
		RETURNING ` + habitColumns

	habit, err := scanHabit(r.pool.QueryRow(ctx, query, name, description, updatedAt, habitID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrHabitNotFound
		}
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	return habit, nil
}

// Replace writes the streak state only if the row still carries expectedUpdatedAt
func (r *habitRepository) Replace(ctx context.Context, habit *entity.Habit, expectedUpdatedAt time.Time) error {
	query := `
		UPDATE habits SET
			current_streak = $1,
			longest_streak = $2,
			last_completed = $3,
			history = $4,
			growth_stage = $5,
			updated_at = $6
		WHERE id = $7 AND user_id = $8 AND updated_at = $9
	`

	result, err := r.pool.Exec(ctx, query,
		habit.CurrentStreak, habit.LongestStreak, lastCompletedParam(habit),
		entity.DateStrings(habit.History), habit.GrowthStage, habit.UpdatedAt,
		habit.ID, habit.UserID, expectedUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to replace habit: %w", err)
	}

	if result.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM habits WHERE id = $1 AND user_id = $2)`,
		habit.ID, habit.UserID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check habit: %w", err)
	}
	if !exists {
		return entity.ErrHabitNotFound
	}
	return entity.ErrConflict
}

func (r *habitRepository) Delete(ctx context.Context, habitID, userID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM habits WHERE id = $1 AND user_id = $2`, habitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entity.ErrHabitNotFound
	}

	return nil
}

func (r *habitRepository) GetLapsed(ctx context.Context, lastCompletedOnOrBefore entity.Date) ([]*entity.Habit, error) {
	query := `
		SELECT ` + habitColumns + `
		FROM habits
		WHERE last_completed IS NOT NULL
		  AND last_completed <= $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, lastCompletedOnOrBefore.Time())
	if err != nil {
		return nil, fmt.Errorf("failed to get lapsed habits: %w", err)
	}

	return collectHabits(rows)
}
