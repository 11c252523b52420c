package service

import (
	"context"
	"fmt"

	"debugweek/internal/common"
	"debugweek/internal/domain/model"
	"debugweek/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ChallengeService struct {
	challengeRepo repository.ChallengeRepository
	weekRepo      repository.WeekRepository
	submissionSvc *SubmissionService
}

func NewChallengeService(
	challengeRepo repository.ChallengeRepository,
	weekRepo repository.WeekRepository,
	submissionSvc *SubmissionService,
) *ChallengeService {
	return &ChallengeService{
		challengeRepo: challengeRepo,
		weekRepo:      weekRepo,
		submissionSvc: submissionSvc,
	}
}

type ChallengeRequest struct {
	WeekID         string                    `json:"week_id"`
	Title          string                    `json:"title"`
	Description    string                    `json:"description"`
	BuggyCode      string                    `json:"buggy_code"`
	ExpectedOutput string                    `json:"expected_output"`
	Difficulty     model.ChallengeDifficulty `json:"difficulty"`
	Points         int                       `json:"points"`
	SortOrder      int                       `json:"sort_order"`
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, createdBy string, req ChallengeRequest) (*model.Challenge, error) {
	if err := validateChallengeRequest(req); err != nil {
		return nil, err
	}
	week, err := s.weekRepo.FindByID(ctx, req.WeekID)
	if err != nil {
		return nil, common.Errorf("week not found: %w", err)
	}

	challenge := &model.Challenge{
		ID:             uuid.NewString(),
		WeekID:         week.ID,
		Title:          req.Title,
		Slug:           fmt.Sprintf("week-%d-%s", week.WeekNumber, slug.Make(req.Title)),
		Description:    req.Description,
		BuggyCode:      req.BuggyCode,
		ExpectedOutput: req.ExpectedOutput,
		Difficulty:     req.Difficulty,
		Points:         req.Points,
		SortOrder:      req.SortOrder,
		CreatedByID:    &createdBy,
	}
	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, common.Errorf("failed to create challenge: %w", err)
	}
	return challenge, nil
}

func (s *ChallengeService) UpdateChallenge(ctx context.Context, challengeID string, req ChallengeRequest) (*model.Challenge, error) {
	if err := validateChallengeRequest(req); err != nil {
		return nil, err
	}
	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, common.Errorf("challenge not found: %w", err)
	}
	week, err := s.weekRepo.FindByID(ctx, req.WeekID)
	if err != nil {
		return nil, common.Errorf("week not found: %w", err)
	}

	challenge.WeekID = week.ID
	challenge.Title = req.Title
	challenge.Slug = fmt.Sprintf("week-%d-%s", week.WeekNumber, slug.Make(req.Title))
	challenge.Description = req.Description
	challenge.BuggyCode = req.BuggyCode
	challenge.ExpectedOutput = req.ExpectedOutput
	challenge.Difficulty = req.Difficulty
	challenge.Points = req.Points
	challenge.SortOrder = req.SortOrder

	if err := s.challengeRepo.Update(ctx, challenge); err != nil {
		return nil, common.Errorf("failed to update challenge: %w", err)
	}
	return challenge, nil
}

func validateChallengeRequest(req ChallengeRequest) error {
	if req.WeekID == "" {
		return fmt.Errorf("week_id is required: %w", common.ErrValidation)
	}
	if req.Title == "" {
		return fmt.Errorf("title is required: %w", common.ErrValidation)
	}
	if req.ExpectedOutput == "" {
		return fmt.Errorf("expected_output is required: %w", common.ErrValidation)
	}
	if req.Points < 0 {
		return fmt.Errorf("points must not be negative: %w", common.ErrValidation)
	}
	switch req.Difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return fmt.Errorf("unknown difficulty %q: %w", req.Difficulty, common.ErrValidation)
	}
	return nil
}

// ChallengeDetailView is one challenge plus the caller's submission, if any.
type ChallengeDetailView struct {
	Challenge  *model.Challenge  `json:"challenge"`
	Submission *model.Submission `json:"submission,omitempty"`
}

func (s *ChallengeService) GetBySlug(ctx context.Context, challengeSlug, userID, role string) (*ChallengeDetailView, error) {
	challenge, err := s.challengeRepo.FindBySlug(ctx, challengeSlug)
	if err != nil {
		return nil, common.Errorf("challenge not found: %w", err)
	}

	view := &ChallengeDetailView{Challenge: challenge}
	if role == model.RoleAdmin {
		return view, nil
	}
	challenge.ExpectedOutput = ""

	submission, err := s.submissionSvc.FindForUser(ctx, userID, challenge.ID)
	if err != nil {
		return nil, common.Errorf("failed to load submission: %w", err)
	}
	view.Submission = submission
	return view, nil
}

// ListForWeek is the admin management view: every challenge for a week,
// including expected outputs.
func (s *ChallengeService) ListForWeek(ctx context.Context, weekNumber int) (*model.Week, []model.Challenge, error) {
	week, err := s.weekRepo.FindByWeekNumber(ctx, weekNumber)
	if err != nil {
		return nil, nil, common.Errorf("week not found: %w", err)
	}
	challenges, err := s.challengeRepo.ListByWeekID(ctx, week.ID)
	if err != nil {
		return nil, nil, common.Errorf("failed to list challenges: %w", err)
	}
	return week, challenges, nil
}
