package stats

import (
	"fmt"
	"strings"
	"time"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	// MaxTrendDays bounds an explicit trends window (about ten years).
	MaxTrendDays = 3660
)

// ParseGranularity defaults to day; anything unknown is an error.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case "", GranularityDay:
		return GranularityDay, nil
	case GranularityWeek:
		return GranularityWeek, nil
	case GranularityMonth:
		return GranularityMonth, nil
	default:
		return "", fmt.Errorf("invalid granularity %q", s)
	}
}

// PeriodKey buckets t in loc: YYYY-MM-DD, ISO week YYYY-Www, or YYYY-MM.
// Keys of one granularity sort chronologically as plain strings.
func PeriodKey(t time.Time, g Granularity, loc *time.Location) string {
	t = t.In(loc)
	switch g {
	case GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GranularityMonth:
		return t.Format(monthLayout)
	default:
		return t.Format(dateLayout)
	}
}

// StartOfDay is local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// WindowStart is where a trends window opens. days > 0 overrides the
// granularity default of 30 days, 12 weeks or one year.
func WindowStart(now time.Time, g Granularity, days int, loc *time.Location) time.Time {
	now = now.In(loc)
	var start time.Time
	switch {
	case days > 0:
		start = now.AddDate(0, 0, -days)
	case g == GranularityWeek:
		start = now.AddDate(0, 0, -12*7)
	case g == GranularityMonth:
		start = now.AddDate(-1, 0, 0)
	default:
		start = now.AddDate(0, 0, -30)
	}
	return StartOfDay(start, loc)
}

// MonthRange is [first day of month, first day of next month) in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
