package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"debugweek/internal/common"
	"debugweek/internal/domain/model"
)

type SubmissionRepository interface {
	FindByUserAndChallenge(ctx context.Context, userID, challengeID string) (*model.Submission, error)
	// FindForUpdate locks the (user, challenge) row inside tx so the
	// read-then-write in the ledger is serialized per pair.
	FindForUpdate(ctx context.Context, tx *sql.Tx, userID, challengeID string) (*model.Submission, error)
	// Upsert creates the submission or overwrites the existing row for the
	// same (user, challenge) pair. The stored row's ID and SubmittedAt are
	// written back into sub.
	Upsert(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	ListByUserAndWeek(ctx context.Context, userID, weekID string) ([]model.Submission, error)
	// CorrectStats returns the count of correct submissions and the sum of
	// their earned points for a user within one week's challenges.
	CorrectStats(ctx context.Context, userID, weekID string) (completed int, points int, err error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

const submissionColumns = `id, user_id, challenge_id, submitted_code, output, stderr, status, points_earned, submitted_at, updated_at`

func (r *pgSubmissionRepository) FindByUserAndChallenge(ctx context.Context, userID, challengeID string) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE user_id = $1 AND challenge_id = $2`
	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, userID, challengeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindByUserAndChallenge: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) FindForUpdate(ctx context.Context, tx *sql.Tx, userID, challengeID string) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
	          WHERE user_id = $1 AND challenge_id = $2 FOR UPDATE`

	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, userID, challengeID)
	} else {
		row = r.db.QueryRowContext(ctx, query, userID, challengeID)
	}
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindForUpdate: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) Upsert(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	// The (user_id, challenge_id) unique constraint backs the at-most-one-row
	// invariant; a concurrent insert collapses into the DO UPDATE branch.
	query := `
        INSERT INTO submissions (id, user_id, challenge_id, submitted_code, output, stderr, status, points_earned)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (user_id, challenge_id) DO UPDATE SET
            submitted_code = EXCLUDED.submitted_code,
            output         = EXCLUDED.output,
            stderr         = EXCLUDED.stderr,
            status         = EXCLUDED.status,
            points_earned  = EXCLUDED.points_earned,
            updated_at     = CURRENT_TIMESTAMP
        RETURNING id, submitted_at, updated_at`

	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, sub.ID, sub.UserID, sub.ChallengeID,
			sub.SubmittedCode, sub.Output, sub.Stderr, sub.Status, sub.PointsEarned)
	} else {
		row = r.db.QueryRowContext(ctx, query, sub.ID, sub.UserID, sub.ChallengeID,
			sub.SubmittedCode, sub.Output, sub.Stderr, sub.Status, sub.PointsEarned)
	}
	if err := row.Scan(&sub.ID, &sub.SubmittedAt, &sub.UpdatedAt); err != nil {
		return fmt.Errorf("pgSubmissionRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) ListByUserAndWeek(ctx context.Context, userID, weekID string) ([]model.Submission, error) {
	query := `SELECT s.id, s.user_id, s.challenge_id, s.submitted_code, s.output, s.stderr,
	                 s.status, s.points_earned, s.submitted_at, s.updated_at
	          FROM submissions s
	          JOIN challenges c ON s.challenge_id = c.id
	          WHERE s.user_id = $1 AND c.week_id = $2`
	rows, err := r.db.QueryContext(ctx, query, userID, weekID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUserAndWeek query: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.UserID, &s.ChallengeID, &s.SubmittedCode, &s.Output, &s.Stderr,
			&s.Status, &s.PointsEarned, &s.SubmittedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByUserAndWeek scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUserAndWeek rows.Err: %w", err)
	}
	return subs, nil
}

func (r *pgSubmissionRepository) CorrectStats(ctx context.Context, userID, weekID string) (int, int, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(s.points_earned), 0)
	          FROM submissions s
	          JOIN challenges c ON s.challenge_id = c.id
	          WHERE s.user_id = $1 AND c.week_id = $2 AND s.status = $3`
	var completed, points int
	err := r.db.QueryRowContext(ctx, query, userID, weekID, model.StatusCorrect).Scan(&completed, &points)
	if err != nil {
		return 0, 0, fmt.Errorf("pgSubmissionRepository.CorrectStats: %w", err)
	}
	return completed, points, nil
}

func scanSubmission(row *sql.Row) (*model.Submission, error) {
	sub := &model.Submission{}
	err := row.Scan(&sub.ID, &sub.UserID, &sub.ChallengeID, &sub.SubmittedCode, &sub.Output, &sub.Stderr,
		&sub.Status, &sub.PointsEarned, &sub.SubmittedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
