package service

import (
	"context"
	"errors"
	"testing"

	"debugweek/internal/common"
	"debugweek/internal/domain/model"
	"debugweek/internal/runner"
)

func testChallenge(expected string, points int) *model.Challenge {
	return &model.Challenge{
		ID:             "ch-1",
		WeekID:         "wk-1",
		Title:          "Off By One",
		ExpectedOutput: expected,
		Points:         points,
	}
}

func TestGradeCorrectDespiteStderrAndExitCode(t *testing.T) {
	// The verdict depends on stdout alone; stderr noise and a nonzero exit
	// code must not turn a matching answer incorrect.
	run := &stubRunner{res: runner.Result{
		Stdout:      "42\n",
		Stderr:      "DeprecationWarning: something\n",
		ExitNonzero: true,
	}}
	svc := NewGradeService(run)

	grade, err := svc.Grade(context.Background(), testChallenge("42", 10), "print(42)")
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if grade.Status != model.StatusCorrect {
		t.Errorf("expected status correct, got %q", grade.Status)
	}
	if grade.PointsEarned != 10 {
		t.Errorf("expected 10 points, got %d", grade.PointsEarned)
	}
	if grade.Stderr == "" {
		t.Error("expected stderr to be preserved on the result")
	}
}

func TestGradeTrimsWhitespaceOnly(t *testing.T) {
	svc := NewGradeService(&stubRunner{res: runner.Result{Stdout: "  42  \n"}})

	grade, err := svc.Grade(context.Background(), testChallenge("42\n", 5), "print(42)")
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if grade.Status != model.StatusCorrect {
		t.Errorf("surrounding whitespace should be ignored; got status %q", grade.Status)
	}
}

func TestGradeNoSemanticEquivalence(t *testing.T) {
	// "42.0" is not "42": the comparison is textual, never numeric.
	svc := NewGradeService(&stubRunner{res: runner.Result{Stdout: "42.0\n"}})

	grade, err := svc.Grade(context.Background(), testChallenge("42", 5), "print(42.0)")
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if grade.Status != model.StatusIncorrect {
		t.Errorf("expected status incorrect, got %q", grade.Status)
	}
	if grade.PointsEarned != 0 {
		t.Errorf("incorrect answer must earn 0 points, got %d", grade.PointsEarned)
	}
}

func TestGradeInteriorWhitespaceMatters(t *testing.T) {
	svc := NewGradeService(&stubRunner{res: runner.Result{Stdout: "a\n\nb\n"}})

	grade, err := svc.Grade(context.Background(), testChallenge("a\nb", 5), "code")
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if grade.Status != model.StatusIncorrect {
		t.Errorf("interior whitespace differences must not match; got %q", grade.Status)
	}
}

func TestGradeTimeout(t *testing.T) {
	svc := NewGradeService(&stubRunner{res: runner.Result{TimedOut: true}})

	grade, err := svc.Grade(context.Background(), testChallenge("42", 10), "while True: pass")
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if grade.Status != model.StatusError {
		t.Errorf("expected status error on timeout, got %q", grade.Status)
	}
	if grade.Error != TimeoutMessage {
		t.Errorf("expected %q, got %q", TimeoutMessage, grade.Error)
	}
	if grade.PointsEarned != 0 {
		t.Errorf("timeout must earn 0 points, got %d", grade.PointsEarned)
	}
}

func TestGradeRunnerSetupFailure(t *testing.T) {
	svc := NewGradeService(&stubRunner{res: runner.Result{
		SetupErr: runner.SetupErrPrefix + "no such file or directory",
	}})

	grade, err := svc.Grade(context.Background(), testChallenge("42", 10), "print(42)")
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if grade.Status != model.StatusError {
		t.Errorf("expected status error, got %q", grade.Status)
	}
	if grade.Error != runner.SetupErrPrefix+"no such file or directory" {
		t.Errorf("unexpected error message %q", grade.Error)
	}
}

func TestGradeEmptyCodeRejectedWithoutExecution(t *testing.T) {
	for _, code := range []string{"", "   ", "\n\t\n"} {
		run := &stubRunner{res: runner.Result{Stdout: "42"}}
		svc := NewGradeService(run)

		_, err := svc.Grade(context.Background(), testChallenge("42", 10), code)
		if !errors.Is(err, common.ErrValidation) {
			t.Errorf("code %q: expected ErrValidation, got %v", code, err)
		}
		if run.callCount() != 0 {
			t.Errorf("code %q: runner must not be invoked for empty code", code)
		}
	}
}

func TestExecuteReturnsOutputWithoutVerdict(t *testing.T) {
	svc := NewGradeService(&stubRunner{res: runner.Result{Stdout: "hello\n", Stderr: "warn\n"}})

	res, err := svc.Execute(context.Background(), `print("hello")`)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.Output != "hello\n" {
		t.Errorf("expected stdout passthrough, got %q", res.Output)
	}
	if res.Error != "warn\n" {
		t.Errorf("expected stderr passthrough, got %q", res.Error)
	}
}

func TestExecuteEmptyCodeRejected(t *testing.T) {
	run := &stubRunner{}
	svc := NewGradeService(run)

	if _, err := svc.Execute(context.Background(), "  "); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if run.callCount() != 0 {
		t.Error("runner must not be invoked for empty code")
	}
}

func TestExecuteTimeout(t *testing.T) {
	svc := NewGradeService(&stubRunner{res: runner.Result{TimedOut: true}})

	res, err := svc.Execute(context.Background(), "while True: pass")
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.Error != TimeoutMessage {
		t.Errorf("expected %q, got %q", TimeoutMessage, res.Error)
	}
}
