package model

// FilterAll is the wildcard accepted by every PredictionRequest filter field
const FilterAll = "ALL"

// Probability buckets for a matched seat record
const (
	ProbabilitySafe     = "Safe"
	ProbabilityModerate = "Moderate"
	ProbabilityRisky    = "Risky"
	ProbabilityUnknown  = "Unknown"
)

// PredictionRequest represents a seat-prediction query
type PredictionRequest struct {
	Round         string `json:"round"`          // "1".."6" or "ALL"
	InstituteType string `json:"institute_type"` // IIT, IIIT, NIT, GFTI or "ALL"
	SeatType      string `json:"seat_type"`
	Gender        string `json:"gender"`
	Quota         string `json:"quota"`
	Program       string `json:"program"`
	Rank          string `json:"rank"` // parsed server-side; must be a positive integer
}

// PredictionResult is one matched seat record annotated with admission probability
type PredictionResult struct {
	Institute   string `json:"institute"`
	Program     string `json:"program"`
	Quota       string `json:"quota"`
	SeatType    string `json:"seat_type"`
	Gender      string `json:"gender"`
	OpeningRank string `json:"opening_rank"`
	ClosingRank string `json:"closing_rank"`
	Probability string `json:"probability"`
	Round       int    `json:"round"`
}

// PredictionResponse represents the full prediction result set
type PredictionResponse struct {
	Results  []PredictionResult `json:"results"`
	Count    int                `json:"count"`
	UserRank int                `json:"user_rank"`
}

// ErrorResponse is the structured error payload for prediction failures
type ErrorResponse struct {
	Error   string             `json:"error"`
	Results []PredictionResult `json:"results"`
}

// ChatRequest represents a chat exchange request
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history,omitempty"`
}

// ChatResponse carries the assistant's final reply
type ChatResponse struct {
	Response string `json:"response"`
}
