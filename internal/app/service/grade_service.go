package service

import (
	"context"
	"fmt"
	"strings"

	"debugweek/internal/common"
	"debugweek/internal/domain/model"
	"debugweek/internal/runner"
)

// TimeoutMessage is the fixed message rendered to callers when a submission
// exceeds the execution time limit.
const TimeoutMessage = "Code execution timed out (10 seconds limit)"

// CodeRunner is the execution boundary the grader depends on. Its contract is
// total: every call yields a Result, never a Go error.
type CodeRunner interface {
	Run(ctx context.Context, source string) runner.Result
}

type GradeService struct {
	runner CodeRunner
}

func NewGradeService(r CodeRunner) *GradeService {
	return &GradeService{runner: r}
}

type GradeResult struct {
	Status       model.SubmissionStatus
	Output       string
	Stderr       string
	PointsEarned int
	Error        string
}

// Grade executes code and compares its stdout against the challenge's
// expected output. The comparison trims leading/trailing whitespace on both
// sides and is otherwise an exact match. A verdict is assigned even when the
// program wrote to stderr or exited nonzero; only timeouts and runner
// infrastructure failures produce the error status.
func (s *GradeService) Grade(ctx context.Context, challenge *model.Challenge, code string) (*GradeResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("code cannot be empty: %w", common.ErrValidation)
	}

	res := s.runner.Run(ctx, code)

	if res.TimedOut {
		return &GradeResult{Status: model.StatusError, Error: TimeoutMessage}, nil
	}
	if res.SetupErr != "" {
		return &GradeResult{Status: model.StatusError, Error: res.SetupErr}, nil
	}

	status := model.StatusIncorrect
	points := 0
	if strings.TrimSpace(res.Stdout) == strings.TrimSpace(challenge.ExpectedOutput) {
		status = model.StatusCorrect
		points = challenge.Points
	}

	return &GradeResult{
		Status:       status,
		Output:       res.Stdout,
		Stderr:       res.Stderr,
		PointsEarned: points,
		Error:        res.Stderr,
	}, nil
}

type ExecuteResult struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Execute runs code without a challenge, a verdict, or any persistence. It
// backs the unauthenticated "try it" sandbox.
func (s *GradeService) Execute(ctx context.Context, code string) (*ExecuteResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("code cannot be empty: %w", common.ErrValidation)
	}

	res := s.runner.Run(ctx, code)

	if res.TimedOut {
		return &ExecuteResult{Error: TimeoutMessage}, nil
	}
	if res.SetupErr != "" {
		return &ExecuteResult{Error: res.SetupErr}, nil
	}
	return &ExecuteResult{Output: res.Stdout, Error: res.Stderr}, nil
}
