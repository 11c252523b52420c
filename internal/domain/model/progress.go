package model

import "time"

// UserProgress is a materialized summary of a user's correct submissions
// within one week. It is always recomputed from the submission set, never
// patched incrementally.
type UserProgress struct {
	UserID               string    `json:"user_id"`
	WeekID               string    `json:"week_id"`
	ChallengesCompleted  int       `json:"challenges_completed"`
	TotalChallenges      int       `json:"total_challenges"`
	PointsEarned         int       `json:"points_earned"`
	CompletionPercentage float64   `json:"completion_percentage"`
	LastUpdated          time.Time `json:"last_updated"`
}
