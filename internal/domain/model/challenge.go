package model

import (
	"time"
)

type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
)

type Challenge struct {
	ID             string              `json:"id"`
	WeekID         string              `json:"week_id"`
	Title          string              `json:"title"`
	Slug           string              `json:"slug"`
	Description    string              `json:"description"`
	BuggyCode      string              `json:"buggy_code"`
	ExpectedOutput string              `json:"expected_output,omitempty"` // Admin only view
	Difficulty     ChallengeDifficulty `json:"difficulty"`
	Points         int                 `json:"points"`
	SortOrder      int                 `json:"sort_order"`
	CreatedByID    *string             `json:"created_by_id,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`

	CreatedByUsername *string `json:"created_by_username,omitempty"` // For display
}
