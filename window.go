package xcrawler

import (
	"fmt"
	"net/url"
	"time"
)

// APITimeLayout is the start_time/end_time format the API accepts.
const APITimeLayout = "2006-01-02T15:04:05Z"

// Window is a UTC time range. Zero bounds are omitted from requests.
type Window struct {
	Start time.Time
	End   time.Time
}

// FormatAPITime renders t in UTC as YYYY-MM-DDTHH:MM:SSZ.
func FormatAPITime(t time.Time) string {
	return t.UTC().Format(APITimeLayout)
}

func (w Window) apply(params url.Values) {
	if !w.Start.IsZero() {
		params.Set("start_time", FormatAPITime(w.Start))
	}
	if !w.End.IsZero() {
		params.Set("end_time", FormatAPITime(w.End))
	}
}

func (w Window) String() string {
	return fmt.Sprintf("%s ~ %s", FormatAPITime(w.Start), FormatAPITime(w.End))
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Second)
}

// days returns the whole-day window from the start of first to the end of last.
func days(first, last time.Time) Window {
	return Window{Start: startOfDay(first), End: endOfDay(last)}
}

// DayOf covers the calendar day of t.
func DayOf(t time.Time) Window {
	return days(t, t)
}

// Today covers the current UTC day.
func Today(now time.Time) Window {
	return DayOf(now)
}

// ThisWeek covers Monday through Sunday of now's week.
func ThisWeek(now time.Time) Window {
	d := startOfDay(now)
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	return days(start, start.AddDate(0, 0, 6))
}

// ThisMonth covers now's calendar month.
func ThisMonth(now time.Time) Window {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return days(start, start.AddDate(0, 1, -1))
}

// ThisQuarter covers now's calendar quarter.
func ThisQuarter(now time.Time) Window {
	now = now.UTC()
	firstMonth := time.Month((int(now.Month())-1)/3*3 + 1)
	start := time.Date(now.Year(), firstMonth, 1, 0, 0, 0, 0, time.UTC)
	return days(start, start.AddDate(0, 3, -1))
}

// ThisHalf covers the first or second half of now's year.
func ThisHalf(now time.Time) Window {
	now = now.UTC()
	firstMonth := time.January
	if now.Month() > time.June {
		firstMonth = time.July
	}
	start := time.Date(now.Year(), firstMonth, 1, 0, 0, 0, 0, time.UTC)
	return days(start, start.AddDate(0, 6, -1))
}

// ThisYear covers now's calendar year.
func ThisYear(now time.Time) Window {
	now = now.UTC()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return days(start, start.AddDate(1, 0, -1))
}

// RecentDays covers the n days up to now (not day-aligned).
func RecentDays(now time.Time, n int) Window {
	now = now.UTC().Truncate(time.Second)
	return Window{Start: now.AddDate(0, 0, -n), End: now}
}

// Around covers whole days from n days before date to n days after it.
func Around(date time.Time, n int) Window {
	return days(date.AddDate(0, 0, -n), date.AddDate(0, 0, n))
}

// DateRange parses YYYY-MM-DD bounds; either may be empty to leave that side open.
func DateRange(start, end string) (Window, error) {
	var w Window
	if start != "" {
		t, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return Window{}, fmt.Errorf("parse start date: %w", err)
		}
		w.Start = startOfDay(t)
	}
	if end != "" {
		t, err := time.Parse(time.DateOnly, end)
		if err != nil {
			return Window{}, fmt.Errorf("parse end date: %w", err)
		}
		w.End = endOfDay(t)
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		return Window{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return w, nil
}

var presets = map[string]func(time.Time) Window{
	"this_day":     Today,
	"this_week":    ThisWeek,
	"this_month":   ThisMonth,
	"this_quarter": ThisQuarter,
	"this_half":    ThisHalf,
	"this_year":    ThisYear,
}

var recentDays = map[string]int{
	"last_day":     1,
	"last_week":    7,
	"last_month":   30,
	"last_quarter": 90,
	"last_half":    180,
	"last_year":    365,
}

// ParsePreset resolves a calendar preset name such as "this_week".
func ParsePreset(name string, now time.Time) (Window, error) {
	f, ok := presets[name]
	if !ok {
		return Window{}, fmt.Errorf("unknown preset %q", name)
	}
	return f(now), nil
}

// ParseRecent resolves a rolling preset name such as "last_month".
func ParseRecent(name string, now time.Time) (Window, error) {
	n, ok := recentDays[name]
	if !ok {
		return Window{}, fmt.Errorf("unknown recent range %q", name)
	}
	return RecentDays(now, n), nil
}
