package memory

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"sync"

	"spendlens/internal/core"
)

type Store struct {
	mu         sync.Mutex
	records    []core.Record
	snapshotID string
	spec       []byte
}

func New(records []core.Record, snapshotID string) *Store {
	return &Store{
		records:    append([]core.Record(nil), records...),
		snapshotID: snapshotID,
	}
}

// NewFromFile loads a seed dataset from a semicolon-delimited file.
// Each line holds supplier;category;subcategory;amount;date;location.
// Malformed lines are skipped.
func NewFromFile(path string) *Store {
	return New(readRecords(path), "seed:"+path)
}

// ListRecords returns the current snapshot.
func (s *Store) ListRecords(_ context.Context) ([]core.Record, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.records...), s.snapshotID, nil
}

// ReplaceRecords swaps in a new snapshot.
func (s *Store) ReplaceRecords(_ context.Context, records []core.Record, snapshotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]core.Record(nil), records...)
	s.snapshotID = snapshotID
	return nil
}

// LoadFilterSpec returns the saved filter state, nil if never saved.
func (s *Store) LoadFilterSpec(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spec == nil {
		return nil, nil
	}
	return append([]byte(nil), s.spec...), nil
}

// SaveFilterSpec persists the filter state.
func (s *Store) SaveFilterSpec(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spec = append([]byte(nil), data...)
	return nil
}

func readRecords(path string) []core.Record {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ";")
		if len(fields) < 6 {
			continue
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
		if err != nil {
			continue
		}
		r, err := core.NewRecord(core.Record{
			Supplier:    fields[0],
			Category:    fields[1],
			Subcategory: fields[2],
			Amount:      amount,
			Date:        strings.TrimSpace(fields[4]),
			Location:    fields[5],
		})
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}
