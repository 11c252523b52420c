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

type WeekRepository interface {
	Create(ctx context.Context, week *model.Week) error
	Update(ctx context.Context, week *model.Week) error
	FindByID(ctx context.Context, id string) (*model.Week, error)
	FindByWeekNumber(ctx context.Context, weekNumber int) (*model.Week, error)
	List(ctx context.Context, activeOnly bool) ([]model.Week, error)
}

type pgWeekRepository struct {
	db *sql.DB
}

func NewPgWeekRepository(db *sql.DB) WeekRepository {
	return &pgWeekRepository{db: db}
}

func (r *pgWeekRepository) Create(ctx context.Context, w *model.Week) error {
	query := `INSERT INTO weeks (id, week_number, title, description, start_date, end_date, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, w.ID, w.WeekNumber, w.Title, w.Description, w.StartDate, w.EndDate, w.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for week_number
			return fmt.Errorf("week with this number already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgWeekRepository.Create: %w", err)
	}
	return nil
}

func (r *pgWeekRepository) Update(ctx context.Context, w *model.Week) error {
	query := `UPDATE weeks SET week_number = $1, title = $2, description = $3,
	                 start_date = $4, end_date = $5, is_active = $6
	          WHERE id = $7`
	_, err := r.db.ExecContext(ctx, query, w.WeekNumber, w.Title, w.Description, w.StartDate, w.EndDate, w.IsActive, w.ID)
	if err != nil {
		return fmt.Errorf("pgWeekRepository.Update: %w", err)
	}
	return nil
}

func (r *pgWeekRepository) FindByID(ctx context.Context, id string) (*model.Week, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *pgWeekRepository) FindByWeekNumber(ctx context.Context, weekNumber int) (*model.Week, error) {
	return r.findOne(ctx, "week_number = $1", weekNumber)
}

func (r *pgWeekRepository) findOne(ctx context.Context, where string, arg interface{}) (*model.Week, error) {
	query := `SELECT id, week_number, title, description, start_date, end_date, is_active, created_at
	          FROM weeks WHERE ` + where
	week := &model.Week{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&week.ID, &week.WeekNumber, &week.Title, &week.Description,
		&week.StartDate, &week.EndDate, &week.IsActive, &week.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgWeekRepository.findOne: %w", err)
	}
	return week, nil
}

func (r *pgWeekRepository) List(ctx context.Context, activeOnly bool) ([]model.Week, error) {
	query := `SELECT id, week_number, title, description, start_date, end_date, is_active, created_at
	          FROM weeks`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY week_number DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgWeekRepository.List query: %w", err)
	}
	defer rows.Close()

	weeks := []model.Week{}
	for rows.Next() {
		var w model.Week
		if err := rows.Scan(&w.ID, &w.WeekNumber, &w.Title, &w.Description,
			&w.StartDate, &w.EndDate, &w.IsActive, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgWeekRepository.List scan: %w", err)
		}
		weeks = append(weeks, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgWeekRepository.List rows.Err: %w", err)
	}
	return weeks, nil
}
