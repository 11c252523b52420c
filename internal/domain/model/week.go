package model

import "time"

type Week struct {
	ID          string    `json:"id"`
	WeekNumber  int       `json:"week_number"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsCurrent reports whether today falls inside the week's date range.
func (w *Week) IsCurrent() bool {
	today := truncateToDay(time.Now())
	return !today.Before(truncateToDay(w.StartDate)) && !today.After(truncateToDay(w.EndDate))
}

func (w *Week) IsPast() bool {
	return truncateToDay(time.Now()).After(truncateToDay(w.EndDate))
}

func (w *Week) IsFuture() bool {
	return truncateToDay(time.Now()).Before(truncateToDay(w.StartDate))
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
