package model

// Chat roles carried in the bounded history window
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Intent values produced by the stage-1 classification call
const (
	IntentCutoff      = "cutoff"
	IntentRankPredict = "rank_predict"
	IntentMissingInfo = "missing_info"
)

// ChatTurn is one prior exchange in the conversation history
type ChatTurn struct {
	Role string `json:"role"` // user or assistant
	Text string `json:"text"`
}

// ParsedIntent is the structured result of the stage-1 classification call
type ParsedIntent struct {
	Intent        string         `json:"intent"`
	Entities      IntentEntities `json:"entities"`
	MissingFields []string       `json:"missing_fields,omitempty"`
}

// IntentEntities holds the entities extracted from the user's question.
// Every field is independently nullable.
type IntentEntities struct {
	Institute  *string  `json:"institute,omitempty"`
	Program    *string  `json:"program,omitempty"`
	Category   *string  `json:"category,omitempty"`
	Rank       *int     `json:"rank,omitempty"`
	Marks      *int     `json:"marks,omitempty"`
	Percentile *float64 `json:"percentile,omitempty"`
	Round      *int     `json:"round,omitempty"`
}
