package model

import "time"

type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusCorrect   SubmissionStatus = "correct"
	StatusIncorrect SubmissionStatus = "incorrect"
	StatusError     SubmissionStatus = "error"
)

// Submission holds a user's most recent attempt at a challenge. At most one
// row exists per (user, challenge) pair; resubmissions overwrite it in place.
type Submission struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	ChallengeID   string           `json:"challenge_id"`
	SubmittedCode string           `json:"submitted_code"`
	Output        string           `json:"output"`
	Stderr        string           `json:"stderr,omitempty"`
	Status        SubmissionStatus `json:"status"`
	PointsEarned  int              `json:"points_earned"`
	SubmittedAt   time.Time        `json:"submitted_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
