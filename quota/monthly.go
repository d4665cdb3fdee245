package quota

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
)

const monthlyPrefix = "posts:"

// MonthKey returns the UTC YYYY-MM key of t.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthlyStore persists per-month post counts in LevelDB.
type MonthlyStore struct {
	db *leveldb.DB
	mu sync.Mutex
}

// OpenMonthly opens or creates the store at path.
func OpenMonthly(path string) (*MonthlyStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open monthly quota %s: %w", path, err)
	}
	return &MonthlyStore{db: db}, nil
}

// Close releases the database.
func (s *MonthlyStore) Close() error {
	return s.db.Close()
}

// Get returns the count recorded for month (0 when none).
func (s *MonthlyStore) Get(month string) (int, error) {
	v, err := s.db.Get([]byte(monthlyPrefix+month), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", month, err)
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, fmt.Errorf("corrupt count for %s: %w", month, err)
	}
	return n, nil
}

// Add increments month by n and returns the new total.
func (s *MonthlyStore) Add(month string, n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.Get(month)
	if err != nil {
		return 0, err
	}
	total := cur + n
	if err := s.db.Put([]byte(monthlyPrefix+month), []byte(strconv.Itoa(total)), nil); err != nil {
		return 0, fmt.Errorf("put %s: %w", month, err)
	}
	return total, nil
}

// Exceeds reports whether month has reached limit. A non-positive limit never exceeds.
func (s *MonthlyStore) Exceeds(month string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	n, err := s.Get(month)
	if err != nil {
		return false, err
	}
	return n >= limit, nil
}
