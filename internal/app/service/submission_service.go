package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"debugweek/internal/common"
	"debugweek/internal/domain/model"
	"debugweek/internal/domain/repository"

	"github.com/google/uuid"
)

// SubmissionService is the ledger: it maps each (user, challenge) pair to at
// most one stored submission, overwrites it on resubmission, and reconciles
// point deltas against the user's running score.
type SubmissionService struct {
	submissionRepo  repository.SubmissionRepository
	challengeRepo   repository.ChallengeRepository
	userRepo        repository.UserRepository
	gradeService    *GradeService
	progressService *ProgressService
	lock            *SubmitLock
	db              *sql.DB // For transactions
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	challengeRepo repository.ChallengeRepository,
	userRepo repository.UserRepository,
	gradeService *GradeService,
	progressService *ProgressService,
	lock *SubmitLock,
	db *sql.DB,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo:  subRepo,
		challengeRepo:   challengeRepo,
		userRepo:        userRepo,
		gradeService:    gradeService,
		progressService: progressService,
		lock:            lock,
		db:              db,
	}
}

// Submit grades code against the challenge and records the result. Grading
// for one (user, challenge) pair is serialized by the submit lock; a second
// concurrent attempt for the same pair fails closed with
// common.ErrSubmissionInFlight rather than racing the first.
func (s *SubmissionService) Submit(ctx context.Context, userID, challengeID, code string) (*model.Submission, *GradeResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, common.Errorf("user not found: %w", err)
	}
	if user.Role == model.RoleAdmin {
		return nil, nil, fmt.Errorf("admins cannot submit solutions: %w", common.ErrForbidden)
	}

	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, nil, common.Errorf("challenge not found: %w", err)
	}

	// Validation failure must precede execution and the lock; nothing is
	// mutated for an empty submission.
	if strings.TrimSpace(code) == "" {
		return nil, nil, fmt.Errorf("code cannot be empty: %w", common.ErrValidation)
	}

	release, err := s.lock.Acquire(ctx, user.ID, challenge.ID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	grade, err := s.gradeService.Grade(ctx, challenge, code)
	if err != nil {
		return nil, nil, err
	}

	submission := &model.Submission{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		ChallengeID:   challenge.ID,
		SubmittedCode: code,
		Output:        grade.Output,
		Stderr:        grade.Stderr,
		Status:        grade.Status,
		PointsEarned:  grade.PointsEarned,
	}

	if err := s.record(ctx, submission, grade); err != nil {
		return nil, nil, err
	}

	// Progress is a materialized view of the submission set; recompute after
	// every attempt, once the ledger write is durably visible. A failed
	// recompute is not fatal: the next grading event rebuilds the same row.
	if _, err := s.progressService.Recompute(ctx, user.ID, challenge.WeekID); err != nil {
		log.Printf("ERROR: Failed to recompute progress for user %s week %s: %v", user.ID, challenge.WeekID, err)
	}

	return submission, grade, nil
}

// record applies the create-or-overwrite and the score delta in one
// transaction, with the previous row locked so concurrent duplicates cannot
// double-count.
func (s *SubmissionService) record(ctx context.Context, submission *model.Submission, grade *GradeResult) error {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return common.Errorf("failed to begin transaction: %w", err)
	}
	if tx != nil {
		defer tx.Rollback()
	}

	var delta int
	prev, err := s.submissionRepo.FindForUpdate(ctx, tx, submission.UserID, submission.ChallengeID)
	switch {
	case err == nil:
		// Overwrite. Score moves only when the new verdict is correct and
		// the point value changed; re-submitting an unchanged correct answer
		// never re-credits, and an incorrect overwrite never debits.
		if grade.Status == model.StatusCorrect && grade.PointsEarned != prev.PointsEarned {
			delta = grade.PointsEarned - prev.PointsEarned
		}
	case errors.Is(err, common.ErrNotFound):
		if grade.Status == model.StatusCorrect {
			delta = grade.PointsEarned
		}
	default:
		return common.Errorf("failed to look up existing submission: %w", err)
	}

	if err := s.submissionRepo.Upsert(ctx, tx, submission); err != nil {
		return common.Errorf("failed to store submission: %w", err)
	}
	if delta != 0 {
		if err := s.userRepo.AdjustTotalScore(ctx, tx, submission.UserID, delta); err != nil {
			return common.Errorf("failed to adjust user score: %w", err)
		}
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return common.Errorf("failed to commit submission: %w", err)
		}
	}
	return nil
}

// beginTx returns a nil transaction when the service was built without a
// database handle; repositories treat a nil tx as the non-transactional path.
func (s *SubmissionService) beginTx(ctx context.Context) (*sql.Tx, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.BeginTx(ctx, nil)
}

// SubmissionsByChallenge returns the caller's submissions for a week's
// challenges, keyed by challenge ID.
func (s *SubmissionService) SubmissionsByChallenge(ctx context.Context, userID, weekID string) (map[string]model.Submission, error) {
	subs, err := s.submissionRepo.ListByUserAndWeek(ctx, userID, weekID)
	if err != nil {
		return nil, err
	}
	byChallenge := make(map[string]model.Submission, len(subs))
	for _, sub := range subs {
		byChallenge[sub.ChallengeID] = sub
	}
	return byChallenge, nil
}

// FindForUser returns the caller's submission for one challenge, or nil when
// none exists yet.
func (s *SubmissionService) FindForUser(ctx context.Context, userID, challengeID string) (*model.Submission, error) {
	sub, err := s.submissionRepo.FindByUserAndChallenge(ctx, userID, challengeID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}
