package repository

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"core/internal/model"
)

// Rounds 1 through 6 are the counseling cycles a season can publish.
const (
	FirstRound = 1
	LastRound  = 6
)

// Store is the in-memory, read-only collection of per-round seat-allotment
// records plus the marks-to-rank reference table. It is populated once at
// startup and never mutated afterward, so handlers may read it concurrently
// without locking.
type Store struct {
	rounds map[int][]model.SeatRecord
	marks  []model.MarksRankBand
}

// NewStore builds a store from already-parsed data. Used directly by tests
// and by LoadStore after CSV parsing.
func NewStore(rounds map[int][]model.SeatRecord, marks []model.MarksRankBand) *Store {
	if rounds == nil {
		rounds = map[int][]model.SeatRecord{}
	}
	return &Store{rounds: rounds, marks: marks}
}

// LoadStore reads the per-round cutoff CSV files from dataDir and the
// marks/percentile/rank reference CSV. A missing or unreadable round file is
// non-fatal: that round is simply absent from the store. The marks file is
// likewise optional.
func LoadStore(dataDir, marksFile string) (*Store, error) {
	rounds := make(map[int][]model.SeatRecord)

	for round := FirstRound; round <= LastRound; round++ {
		path := filepath.Join(dataDir, fmt.Sprintf("josaa_cutoff_data_2025_round%d.csv", round))
		records, err := loadRoundFile(path, round)
		if err != nil {
			log.Printf("Warning: skipping round %d: %v", round, err)
			continue
		}
		rounds[round] = records
		log.Printf("Loaded Round %d: %d records", round, len(records))
	}

	if len(rounds) == 0 {
		return nil, fmt.Errorf("no round data found in %s", dataDir)
	}

	marks, err := loadMarksFile(marksFile)
	if err != nil {
		log.Printf("Warning: marks/rank reference unavailable: %v", err)
	} else {
		log.Printf("Loaded marks vs rank reference: %d bands", len(marks))
	}

	return NewStore(rounds, marks), nil
}

// Round returns the records for one round. The second return value reports
// whether the round was loaded at all; callers must treat "round not present"
// as a distinct condition from "round present but empty".
func (s *Store) Round(round int) ([]model.SeatRecord, bool) {
	records, ok := s.rounds[round]
	return records, ok
}

// Rounds returns the loaded round numbers in ascending order.
func (s *Store) Rounds() []int {
	rounds := make([]int, 0, len(s.rounds))
	for round := range s.rounds {
		rounds = append(rounds, round)
	}
	sort.Ints(rounds)
	return rounds
}

// MarksTable returns the marks/percentile/rank reference bands.
func (s *Store) MarksTable() []model.MarksRankBand {
	return s.marks
}

// Categories returns the sorted set union of seat types across all rounds.
func (s *Store) Categories() []string {
	return s.uniqueValues(func(r model.SeatRecord) string { return r.SeatType })
}

// Quotas returns the sorted set union of quotas across all rounds.
func (s *Store) Quotas() []string {
	return s.uniqueValues(func(r model.SeatRecord) string { return r.Quota })
}

// Programs returns the sorted set union of program names across all rounds.
func (s *Store) Programs() []string {
	return s.uniqueValues(func(r model.SeatRecord) string { return r.Program })
}

// Stats returns dataset statistics for the meta endpoint.
func (s *Store) Stats() model.Stats {
	institutes := make(map[string]struct{})
	programs := make(map[string]struct{})
	total := 0
	for _, records := range s.rounds {
		total += len(records)
		for _, r := range records {
			institutes[r.Institute] = struct{}{}
			programs[r.Program] = struct{}{}
		}
	}
	return model.Stats{
		TotalRecords:     total,
		UniqueInstitutes: len(institutes),
		UniquePrograms:   len(programs),
		Rounds:           len(s.rounds),
	}
}

func (s *Store) uniqueValues(field func(model.SeatRecord) string) []string {
	set := make(map[string]struct{})
	for _, records := range s.rounds {
		for _, r := range records {
			set[field(r)] = struct{}{}
		}
	}
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// loadRoundFile parses one round's cutoff CSV into seat records.
func loadRoundFile(path string, round int) ([]model.SeatRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	col := columnIndex(header)
	required := []string{"Institute", "Academic Program Name", "Quota", "Seat Type", "Gender", "Opening Rank", "Closing Rank"}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	records := make([]model.SeatRecord, 0, len(rows))
	for _, row := range rows {
		rec := model.SeatRecord{
			Institute:   strings.TrimSpace(row[col["Institute"]]),
			Program:     strings.TrimSpace(row[col["Academic Program Name"]]),
			Quota:       strings.TrimSpace(row[col["Quota"]]),
			SeatType:    strings.TrimSpace(row[col["Seat Type"]]),
			Gender:      strings.TrimSpace(row[col["Gender"]]),
			OpeningRank: strings.TrimSpace(row[col["Opening Rank"]]),
			ClosingRank: strings.TrimSpace(row[col["Closing Rank"]]),
			Round:       round,
		}
		// Required string fields must be non-empty after load.
		if rec.Institute == "" || rec.Program == "" || rec.Quota == "" || rec.SeatType == "" || rec.Gender == "" {
			continue
		}
		rec.OpeningRankNumeric = parseRank(rec.OpeningRank)
		rec.ClosingRankNumeric = parseRank(rec.ClosingRank)
		records = append(records, rec)
	}

	return records, nil
}

// loadMarksFile parses the marks/percentile/rank reference CSV.
func loadMarksFile(path string) ([]model.MarksRankBand, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("reference file has no data rows")
	}

	bands := make([]model.MarksRankBand, 0, len(rows)-1)
	for _, row := range rows[1:] { // skip header
		if len(row) < 3 {
			continue
		}
		bands = append(bands, model.MarksRankBand{
			Marks:      strings.TrimSpace(row[0]),
			Percentile: strings.TrimSpace(row[1]),
			Rank:       strings.TrimSpace(row[2]),
		})
	}
	return bands, nil
}

// parseRank converts a raw rank value to an integer, stripping the trailing
// "P" marker carried by PwD-reserved ranks. Returns nil when the value does
// not parse; a sentinel like -1 would create false matches downstream.
func parseRank(raw string) *int {
	cleaned := strings.TrimSuffix(strings.TrimSpace(raw), "P")
	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	return col
}
