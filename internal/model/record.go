package model

// SeatRecord represents one row of one round's seat-allotment data
type SeatRecord struct {
	Institute          string `json:"institute"`
	Program            string `json:"program"`
	Quota              string `json:"quota"`
	SeatType           string `json:"seat_type"`
	Gender             string `json:"gender"`
	OpeningRank        string `json:"opening_rank"`
	ClosingRank        string `json:"closing_rank"`
	OpeningRankNumeric *int   `json:"opening_rank_numeric,omitempty"` // nil when the source value is unparseable
	ClosingRankNumeric *int   `json:"closing_rank_numeric,omitempty"` // nil when the source value is unparseable
	Round              int    `json:"round"`
}

// MarksRankBand represents one row of the marks/percentile/rank reference table
type MarksRankBand struct {
	Marks      string `json:"marks"`
	Percentile string `json:"percentile"`
	Rank       string `json:"rank"`
}

// Stats holds dataset statistics for the landing/meta endpoints
type Stats struct {
	TotalRecords     int `json:"total_records"`
	UniqueInstitutes int `json:"unique_institutes"`
	UniquePrograms   int `json:"unique_programs"`
	Rounds           int `json:"rounds"`
}
