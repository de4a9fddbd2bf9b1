package model

import "time"

// WeekTracker is a single-row table holding the current week number.
type WeekTracker struct {
	ID          int64
	CurrentWeek int
	StartDate   time.Time
}
