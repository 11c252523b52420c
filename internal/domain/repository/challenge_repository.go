package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"debugweek/internal/common"
	"debugweek/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *model.Challenge) error
	Update(ctx context.Context, challenge *model.Challenge) error
	FindByID(ctx context.Context, id string) (*model.Challenge, error)
	FindBySlug(ctx context.Context, slug string) (*model.Challenge, error)
	ListByWeekID(ctx context.Context, weekID string) ([]model.Challenge, error)
	CountByWeekID(ctx context.Context, weekID string) (int, error)
}

type pgChallengeRepository struct {
	db *sql.DB
}

func NewPgChallengeRepository(db *sql.DB) ChallengeRepository {
	return &pgChallengeRepository{db: db}
}

func (r *pgChallengeRepository) Create(ctx context.Context, c *model.Challenge) error {
	query := `INSERT INTO challenges (id, week_id, title, slug, description, buggy_code, expected_output, difficulty, points, sort_order, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.WeekID, c.Title, c.Slug, c.Description,
		c.BuggyCode, c.ExpectedOutput, c.Difficulty, c.Points, c.SortOrder, c.CreatedByID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug or (week, order)
			return fmt.Errorf("challenge with this slug or order already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgChallengeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) Update(ctx context.Context, c *model.Challenge) error {
	query := `UPDATE challenges SET
	                 week_id = $1, title = $2, slug = $3, description = $4, buggy_code = $5,
	                 expected_output = $6, difficulty = $7, points = $8, sort_order = $9,
	                 updated_at = CURRENT_TIMESTAMP
	          WHERE id = $10`
	_, err := r.db.ExecContext(ctx, query, c.WeekID, c.Title, c.Slug, c.Description, c.BuggyCode,
		c.ExpectedOutput, c.Difficulty, c.Points, c.SortOrder, c.ID)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Update: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	return r.findOne(ctx, "c.id = $1", id)
}

func (r *pgChallengeRepository) FindBySlug(ctx context.Context, slug string) (*model.Challenge, error) {
	return r.findOne(ctx, "c.slug = $1", slug)
}

func (r *pgChallengeRepository) findOne(ctx context.Context, where string, arg interface{}) (*model.Challenge, error) {
	query := `
        SELECT c.id, c.week_id, c.title, c.slug, c.description, c.buggy_code, c.expected_output,
               c.difficulty, c.points, c.sort_order,
               c.created_by, cb_user.username as created_by_username,
               c.created_at, c.updated_at
        FROM challenges c
        LEFT JOIN users cb_user ON c.created_by = cb_user.id
        WHERE ` + where

	challenge := &model.Challenge{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&challenge.ID, &challenge.WeekID, &challenge.Title, &challenge.Slug, &challenge.Description,
		&challenge.BuggyCode, &challenge.ExpectedOutput,
		&challenge.Difficulty, &challenge.Points, &challenge.SortOrder,
		&challenge.CreatedByID, &challenge.CreatedByUsername,
		&challenge.CreatedAt, &challenge.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgChallengeRepository.findOne: %w", err)
	}
	return challenge, nil
}

func (r *pgChallengeRepository) ListByWeekID(ctx context.Context, weekID string) ([]model.Challenge, error) {
	query := `SELECT id, week_id, title, slug, description, buggy_code, expected_output,
	                 difficulty, points, sort_order, created_by, created_at, updated_at
	          FROM challenges WHERE week_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, weekID)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.ListByWeekID query: %w", err)
	}
	defer rows.Close()

	challenges := []model.Challenge{}
	for rows.Next() {
		var c model.Challenge
		if err := rows.Scan(&c.ID, &c.WeekID, &c.Title, &c.Slug, &c.Description, &c.BuggyCode,
			&c.ExpectedOutput, &c.Difficulty, &c.Points, &c.SortOrder, &c.CreatedByID,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgChallengeRepository.ListByWeekID scan: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.ListByWeekID rows.Err: %w", err)
	}
	return challenges, nil
}

func (r *pgChallengeRepository) CountByWeekID(ctx context.Context, weekID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM challenges WHERE week_id = $1`, weekID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgChallengeRepository.CountByWeekID: %w", err)
	}
	return count, nil
}
