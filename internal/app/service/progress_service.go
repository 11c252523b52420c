package service

import (
	"context"
	"errors"

	"debugweek/internal/common"
	"debugweek/internal/domain/model"
	"debugweek/internal/domain/repository"
)

type ProgressService struct {
	progressRepo   repository.ProgressRepository
	submissionRepo repository.SubmissionRepository
	challengeRepo  repository.ChallengeRepository
}

func NewProgressService(
	progressRepo repository.ProgressRepository,
	submissionRepo repository.SubmissionRepository,
	challengeRepo repository.ChallengeRepository,
) *ProgressService {
	return &ProgressService{
		progressRepo:   progressRepo,
		submissionRepo: submissionRepo,
		challengeRepo:  challengeRepo,
	}
}

// Recompute rebuilds the (user, week) progress row from the current
// submission set. It is a full recompute every time, which makes it safe to
// run repeatedly and concurrently.
func (s *ProgressService) Recompute(ctx context.Context, userID, weekID string) (*model.UserProgress, error) {
	completed, points, err := s.submissionRepo.CorrectStats(ctx, userID, weekID)
	if err != nil {
		return nil, common.Errorf("failed to read correct submissions: %w", err)
	}
	total, err := s.challengeRepo.CountByWeekID(ctx, weekID)
	if err != nil {
		return nil, common.Errorf("failed to count week challenges: %w", err)
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(completed) / float64(total) * 100
	}

	progress := &model.UserProgress{
		UserID:               userID,
		WeekID:               weekID,
		ChallengesCompleted:  completed,
		TotalChallenges:      total,
		PointsEarned:         points,
		CompletionPercentage: percentage,
	}
	if err := s.progressRepo.Upsert(ctx, progress); err != nil {
		return nil, common.Errorf("failed to upsert progress: %w", err)
	}
	return progress, nil
}

// GetOrRecompute returns the stored progress row, building it on first
// access for a (user, week) pair.
func (s *ProgressService) GetOrRecompute(ctx context.Context, userID, weekID string) (*model.UserProgress, error) {
	progress, err := s.progressRepo.FindByUserAndWeek(ctx, userID, weekID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return s.Recompute(ctx, userID, weekID)
}

func (s *ProgressService) ListForUser(ctx context.Context, userID string) ([]model.UserProgress, error) {
	return s.progressRepo.ListByUser(ctx, userID)
}
