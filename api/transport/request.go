package transport

// SignupRequest and LoginRequest share the username-only auth model.
type SignupRequest struct {
	Username string `json:"username"`
	TTL      int    `json:"ttl_seconds"`
}

type LoginRequest struct {
	Username string `json:"username"`
	TTL      int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

type TaskCreateRequest struct {
	Text      string `json:"text"`
	Deadline  string `json:"deadline,omitempty"`
	StartTime string `json:"start_time,omitempty"`
}

// TaskUpdateRequest carries one typed action per call. Action selects the
// transition; the remaining fields are read only for the matching action.
type TaskUpdateRequest struct {
	Action    string `json:"action"`
	Completed *bool  `json:"completed,omitempty"`
	Deadline  string `json:"deadline,omitempty"`
	StartTime string `json:"start_time,omitempty"`
}

const (
	ActionToggleComplete = "toggle_complete"
	ActionStartWork      = "start_work"
	ActionStopWork       = "stop_work"
	ActionReschedule     = "reschedule"
)

type CommitmentRequest struct {
	Wager   int      `json:"wager"`
	TaskIDs []string `json:"task_ids"`
}

type SuggestRequest struct {
	Goal string `json:"goal"`
}
