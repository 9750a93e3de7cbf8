package domain

// DailySummary describes the outcome of a daily rollover. A nil summary from
// the engine means the current day was already processed.
type DailySummary struct {
	Message         string `json:"message"`
	StreakReset     bool   `json:"streak_reset"`
	StreakIncreased bool   `json:"streak_increased"`
}
