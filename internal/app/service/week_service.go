package service

import (
	"context"
	"fmt"
	"time"

	"debugweek/internal/common"
	"debugweek/internal/domain/model"
	"debugweek/internal/domain/repository"

	"github.com/google/uuid"
)

type WeekService struct {
	weekRepo        repository.WeekRepository
	challengeRepo   repository.ChallengeRepository
	submissionSvc   *SubmissionService
	progressService *ProgressService
}

func NewWeekService(
	weekRepo repository.WeekRepository,
	challengeRepo repository.ChallengeRepository,
	submissionSvc *SubmissionService,
	progressService *ProgressService,
) *WeekService {
	return &WeekService{
		weekRepo:        weekRepo,
		challengeRepo:   challengeRepo,
		submissionSvc:   submissionSvc,
		progressService: progressService,
	}
}

type WeekRequest struct {
	WeekNumber  int       `json:"week_number"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	IsActive    *bool     `json:"is_active,omitempty"`
}

func (s *WeekService) CreateWeek(ctx context.Context, req WeekRequest) (*model.Week, error) {
	if err := validateWeekRequest(req); err != nil {
		return nil, err
	}
	week := &model.Week{
		ID:          uuid.NewString(),
		WeekNumber:  req.WeekNumber,
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsActive:    true,
	}
	if req.IsActive != nil {
		week.IsActive = *req.IsActive
	}
	if err := s.weekRepo.Create(ctx, week); err != nil {
		return nil, common.Errorf("failed to create week: %w", err)
	}
	return week, nil
}

func (s *WeekService) UpdateWeek(ctx context.Context, weekNumber int, req WeekRequest) (*model.Week, error) {
	if err := validateWeekRequest(req); err != nil {
		return nil, err
	}
	week, err := s.weekRepo.FindByWeekNumber(ctx, weekNumber)
	if err != nil {
		return nil, common.Errorf("week not found: %w", err)
	}
	week.WeekNumber = req.WeekNumber
	week.Title = req.Title
	week.Description = req.Description
	week.StartDate = req.StartDate
	week.EndDate = req.EndDate
	if req.IsActive != nil {
		week.IsActive = *req.IsActive
	}
	if err := s.weekRepo.Update(ctx, week); err != nil {
		return nil, common.Errorf("failed to update week: %w", err)
	}
	return week, nil
}

func validateWeekRequest(req WeekRequest) error {
	if req.WeekNumber <= 0 {
		return fmt.Errorf("week_number must be positive: %w", common.ErrValidation)
	}
	if req.Title == "" {
		return fmt.Errorf("title is required: %w", common.ErrValidation)
	}
	if req.EndDate.Before(req.StartDate) {
		return fmt.Errorf("end_date must not precede start_date: %w", common.ErrValidation)
	}
	return nil
}

func (s *WeekService) ListWeeks(ctx context.Context, role string) ([]model.Week, error) {
	// Non-admins only see active weeks.
	return s.weekRepo.List(ctx, role != model.RoleAdmin)
}

// WeekChallengesView is what a signed-in user sees for one week: the
// challenges in order, their own submissions keyed by challenge, and the
// progress summary.
type WeekChallengesView struct {
	Week        *model.Week                 `json:"week"`
	Challenges  []model.Challenge           `json:"challenges"`
	Submissions map[string]model.Submission `json:"submissions"`
	Progress    *model.UserProgress         `json:"progress"`
}

func (s *WeekService) GetWeekChallenges(ctx context.Context, weekNumber int, userID, role string) (*WeekChallengesView, error) {
	week, err := s.weekRepo.FindByWeekNumber(ctx, weekNumber)
	if err != nil {
		return nil, common.Errorf("week not found: %w", err)
	}

	challenges, err := s.challengeRepo.ListByWeekID(ctx, week.ID)
	if err != nil {
		return nil, common.Errorf("failed to list challenges: %w", err)
	}
	// Expected outputs are only shown to admins.
	if role != model.RoleAdmin {
		for i := range challenges {
			challenges[i].ExpectedOutput = ""
		}
	}

	view := &WeekChallengesView{
		Week:        week,
		Challenges:  challenges,
		Submissions: map[string]model.Submission{},
	}

	if role == model.RoleAdmin {
		return view, nil
	}

	submissions, err := s.submissionSvc.SubmissionsByChallenge(ctx, userID, week.ID)
	if err != nil {
		return nil, common.Errorf("failed to list submissions: %w", err)
	}
	view.Submissions = submissions

	progress, err := s.progressService.GetOrRecompute(ctx, userID, week.ID)
	if err != nil {
		return nil, common.Errorf("failed to load progress: %w", err)
	}
	view.Progress = progress

	return view, nil
}
