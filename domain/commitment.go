package domain

// CommitmentTargetStreak is the number of consecutive successful settlements
// needed before the wagered points are refunded.
const CommitmentTargetStreak = 3

// Commitment is a points wager bound to a specific set of task ids.
// A zero wager means no active commitment.
type Commitment struct {
	Wager   int      `json:"wager"`
	Streak  int      `json:"streak"`
	TaskIDs []string `json:"task_ids"`
}

// IsActive reports whether the commitment should be settled at rollover.
// A wager that names no tasks is treated as inactive.
func (c *Commitment) IsActive() bool {
	return c != nil && c.Wager > 0 && len(c.TaskIDs) > 0
}

// EmptyCommitment returns the inactive default stored for new users.
func EmptyCommitment() *Commitment {
	return &Commitment{TaskIDs: []string{}}
}
