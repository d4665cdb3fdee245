package quota

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	w := NewWindow(clock, 15*time.Minute)

	w.Record()
	clock.Advance(5 * time.Minute)
	w.Record()
	w.Record()
	assert.Equal(t, 3, w.Count())
	assert.Equal(t, 7, w.Remaining(10))
	assert.Equal(t, 10*time.Minute, w.ResetIn())

	clock.Advance(10 * time.Minute)
	assert.Equal(t, 2, w.Count(), "first event leaves the window at exactly 15m")

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 0, w.Count())
	assert.Equal(t, time.Duration(0), w.ResetIn())
}

func TestWindow_RemainingNeverNegative(t *testing.T) {
	w := NewWindow(clockwork.NewFakeClock(), 0)
	for range 5 {
		w.Record()
	}
	assert.Equal(t, 0, w.Remaining(3))
}

func TestWindow_Concurrent(t *testing.T) {
	w := NewWindow(clockwork.NewFakeClock(), time.Minute)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Record()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, w.Count())
}

func TestMonthlyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quota")
	s, err := OpenMonthly(path)
	require.NoError(t, err)

	n, err := s.Get("2024-05")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = s.Add("2024-05", 100)
	require.NoError(t, err)
	total, err := s.Add("2024-05", 47)
	require.NoError(t, err)
	assert.Equal(t, 147, total)

	over, err := s.Exceeds("2024-05", 147)
	require.NoError(t, err)
	assert.True(t, over)
	over, err = s.Exceeds("2024-05", 0)
	require.NoError(t, err)
	assert.False(t, over)

	require.NoError(t, s.Close())

	s, err = OpenMonthly(path)
	require.NoError(t, err)
	defer s.Close()
	n, err = s.Get("2024-05")
	require.NoError(t, err)
	assert.Equal(t, 147, n, "counts survive reopen")
}

func TestMonthKey(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	assert.Equal(t, "2024-04", MonthKey(time.Date(2024, 5, 1, 3, 0, 0, 0, loc)))
}
