package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"debugweek/internal/common"
	"debugweek/internal/domain/model"
)

type ProgressRepository interface {
	// Upsert writes the single progress row for (user, week).
	Upsert(ctx context.Context, progress *model.UserProgress) error
	FindByUserAndWeek(ctx context.Context, userID, weekID string) (*model.UserProgress, error)
	ListByUser(ctx context.Context, userID string) ([]model.UserProgress, error)
}

type pgProgressRepository struct {
	db *sql.DB
}

func NewPgProgressRepository(db *sql.DB) ProgressRepository {
	return &pgProgressRepository{db: db}
}

func (r *pgProgressRepository) Upsert(ctx context.Context, p *model.UserProgress) error {
	query := `
        INSERT INTO user_progress (user_id, week_id, challenges_completed, total_challenges, points_earned, completion_percentage)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id, week_id) DO UPDATE SET
            challenges_completed  = EXCLUDED.challenges_completed,
            total_challenges      = EXCLUDED.total_challenges,
            points_earned         = EXCLUDED.points_earned,
            completion_percentage = EXCLUDED.completion_percentage,
            last_updated          = CURRENT_TIMESTAMP
        RETURNING last_updated`

	err := r.db.QueryRowContext(ctx, query, p.UserID, p.WeekID, p.ChallengesCompleted,
		p.TotalChallenges, p.PointsEarned, p.CompletionPercentage).Scan(&p.LastUpdated)
	if err != nil {
		return fmt.Errorf("pgProgressRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgProgressRepository) FindByUserAndWeek(ctx context.Context, userID, weekID string) (*model.UserProgress, error) {
	query := `SELECT user_id, week_id, challenges_completed, total_challenges, points_earned, completion_percentage, last_updated
	          FROM user_progress WHERE user_id = $1 AND week_id = $2`
	p := &model.UserProgress{}
	err := r.db.QueryRowContext(ctx, query, userID, weekID).Scan(
		&p.UserID, &p.WeekID, &p.ChallengesCompleted, &p.TotalChallenges,
		&p.PointsEarned, &p.CompletionPercentage, &p.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProgressRepository.FindByUserAndWeek: %w", err)
	}
	return p, nil
}

func (r *pgProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.UserProgress, error) {
	query := `SELECT user_id, week_id, challenges_completed, total_challenges, points_earned, completion_percentage, last_updated
	          FROM user_progress WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListByUser query: %w", err)
	}
	defer rows.Close()

	progress := []model.UserProgress{}
	for rows.Next() {
		var p model.UserProgress
		if err := rows.Scan(&p.UserID, &p.WeekID, &p.ChallengesCompleted, &p.TotalChallenges,
			&p.PointsEarned, &p.CompletionPercentage, &p.LastUpdated); err != nil {
			return nil, fmt.Errorf("pgProgressRepository.ListByUser scan: %w", err)
		}
		progress = append(progress, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListByUser rows.Err: %w", err)
	}
	return progress, nil
}
