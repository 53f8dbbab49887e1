package terminus

// FailureMode classifies how a task run ended.
type FailureMode string

const (
	// FailureModeNone means the run ended normally.
	FailureModeNone FailureMode = "none"

	// FailureModeBudgetExhausted means the episode budget ran out before
	// the model declared the task complete.
	FailureModeBudgetExhausted FailureMode = "budget_exhausted"
)

// TimestampedMarker is an annotation on the session's recorded timeline.
type TimestampedMarker struct {
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"text"`
}

// AgentResult is the terminal artifact of one task run. Token counts are
// deltas for this task only, isolated from any prior usage on a shared
// backend.
type AgentResult struct {
	TotalInputTokens   int                 `json:"total_input_tokens"`
	TotalOutputTokens  int                 `json:"total_output_tokens"`
	FailureMode        FailureMode         `json:"failure_mode"`
	TimestampedMarkers []TimestampedMarker `json:"timestamped_markers"`
}
