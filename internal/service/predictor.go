package service

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"core/internal/model"
	"core/internal/repository"
)

// Prediction error taxonomy
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnknownRound = errors.New("round not available")
)

// Institute type labels
const (
	InstituteIIT  = "IIT"
	InstituteIIIT = "IIIT"
	InstituteNIT  = "NIT"
	InstituteGFTI = "GFTI"
)

// instituteRules is evaluated top-down; order encodes the disambiguation
// priority. IIT must be tested before IIIT, and IIIT before NIT, because the
// looser substring checks would otherwise misclassify overlapping
// abbreviations ("IIIT" contains "IIT", "Malaviya NIT" must not hit a
// catch-all run first).
var instituteRules = []struct {
	label string
	match func(name string) bool
}{
	{InstituteIIT, func(name string) bool {
		return strings.HasPrefix(name, "IIT") || strings.Contains(name, "INDIAN INSTITUTE OF TECHNOLOGY")
	}},
	{InstituteIIIT, func(name string) bool {
		return strings.Contains(name, "IIIT") || strings.Contains(name, "INDIAN INSTITUTE OF INFORMATION TECHNOLOGY")
	}},
	{InstituteNIT, func(name string) bool {
		return strings.Contains(name, "NIT ") || strings.Contains(name, "NIT,") ||
			strings.HasPrefix(name, "NIT") || strings.Contains(name, "NATIONAL INSTITUTE OF TECHNOLOGY")
	}},
}

// InstituteTypeOf classifies an institute name as IIT, IIIT, NIT or GFTI
func InstituteTypeOf(institute string) string {
	name := strings.ToUpper(institute)
	for _, rule := range instituteRules {
		if rule.match(name) {
			return rule.label
		}
	}
	return InstituteGFTI
}

// Probability classifies the admission chance for a record given the user's
// rank and the record's numeric closing rank. Unknown is only reachable from
// callers that bypass the closing-rank admissibility filter.
func Probability(userRank int, closingRank *int) string {
	if closingRank == nil {
		return model.ProbabilityUnknown
	}
	difference := *closingRank - userRank
	switch {
	case difference >= 1000:
		return model.ProbabilitySafe
	case difference >= 100:
		return model.ProbabilityModerate
	default:
		return model.ProbabilityRisky
	}
}

// Predictor runs seat predictions over the record store
type Predictor struct {
	store *repository.Store
}

// NewPredictor creates a new predictor
func NewPredictor(store *repository.Store) *Predictor {
	return &Predictor{store: store}
}

// Predict validates the request, filters the applicable rounds and returns
// the ranked result set. Pure read over the store: identical input always
// yields identical output.
func (p *Predictor) Predict(req *model.PredictionRequest) (*model.PredictionResponse, error) {
	userRank, err := strconv.Atoi(strings.TrimSpace(req.Rank))
	if err != nil || userRank <= 0 {
		return nil, fmt.Errorf("%w: please enter a valid rank greater than 0", ErrInvalidInput)
	}

	allRounds := req.Round == model.FilterAll

	var rounds []int
	if allRounds {
		rounds = p.store.Rounds()
	} else {
		round, err := strconv.Atoi(strings.TrimSpace(req.Round))
		if err != nil {
			return nil, fmt.Errorf("%w: round must be 1-6 or ALL", ErrInvalidInput)
		}
		if _, ok := p.store.Round(round); !ok {
			return nil, fmt.Errorf("%w: data for Round %d not available", ErrUnknownRound, round)
		}
		rounds = []int{round}
	}

	var matched []model.SeatRecord
	for _, round := range rounds {
		records, ok := p.store.Round(round)
		if !ok {
			continue
		}
		matched = append(matched, filterRecords(records, req, userRank)...)
	}

	if allRounds {
		matched = mergeBestRounds(matched)
	} else {
		sortByClosingRankDesc(matched)
	}

	results := make([]model.PredictionResult, 0, len(matched))
	for _, rec := range matched {
		results = append(results, model.PredictionResult{
			Institute:   rec.Institute,
			Program:     rec.Program,
			Quota:       rec.Quota,
			SeatType:    rec.SeatType,
			Gender:      rec.Gender,
			OpeningRank: rec.OpeningRank,
			ClosingRank: rec.ClosingRank,
			Probability: Probability(userRank, rec.ClosingRankNumeric),
			Round:       rec.Round,
		})
	}

	return &model.PredictionResponse{
		Results:  results,
		Count:    len(results),
		UserRank: userRank,
	}, nil
}

// filterRecords applies the request predicates as a conjunction and returns a
// new slice; the input records are never mutated. Records whose closing rank
// did not parse are excluded, not treated as wildcard matches.
func filterRecords(records []model.SeatRecord, req *model.PredictionRequest, userRank int) []model.SeatRecord {
	var out []model.SeatRecord
	genderFilter := strings.ToLower(req.Gender)

	for _, rec := range records {
		if req.SeatType != model.FilterAll && rec.SeatType != req.SeatType {
			continue
		}
		if req.Gender != model.FilterAll && !strings.Contains(strings.ToLower(rec.Gender), genderFilter) {
			continue
		}
		if req.Quota != model.FilterAll && rec.Quota != req.Quota {
			continue
		}
		if req.Program != model.FilterAll && rec.Program != req.Program {
			continue
		}
		if req.InstituteType != model.FilterAll && InstituteTypeOf(rec.Institute) != req.InstituteType {
			continue
		}
		if rec.ClosingRankNumeric == nil || *rec.ClosingRankNumeric < userRank {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// seatKey identifies a seat combination across rounds
type seatKey struct {
	institute string
	program   string
	quota     string
	seatType  string
	gender    string
}

// mergeBestRounds collapses cross-round duplicates of the same seat
// combination, keeping the occurrence with the numerically highest closing
// rank. Output stays in the rank-descending order produced by the sort.
func mergeBestRounds(records []model.SeatRecord) []model.SeatRecord {
	sortByClosingRankDesc(records)

	seen := make(map[seatKey]struct{}, len(records))
	out := records[:0]
	for _, rec := range records {
		key := seatKey{rec.Institute, rec.Program, rec.Quota, rec.SeatType, rec.Gender}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// sortByClosingRankDesc orders records by numeric closing rank, highest
// first. A nil closing rank orders as 0; such records cannot survive the
// admissibility filter, this only keeps the ordering total.
func sortByClosingRankDesc(records []model.SeatRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return closingOrZero(records[i]) > closingOrZero(records[j])
	})
}

// sortByClosingRankAsc orders records by numeric closing rank, lowest first.
func sortByClosingRankAsc(records []model.SeatRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return closingOrZero(records[i]) < closingOrZero(records[j])
	})
}

func closingOrZero(rec model.SeatRecord) int {
	if rec.ClosingRankNumeric == nil {
		return 0
	}
	return *rec.ClosingRankNumeric
}
