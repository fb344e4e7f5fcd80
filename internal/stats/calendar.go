package stats

import (
	"math"
	"time"
)

const maxIntensity = 4

// BuildCalendar buckets a month of sets by local day. Every day of the
// month gets an entry, active or not.
func BuildCalendar(year int, month time.Month, records []SetRecord, loc *time.Location) CalendarStats {
	daysInMonth := DaysInMonth(year, month)

	type dayBucket struct {
		sets     int
		reps     int
		routines *routineTally
	}
	buckets := make(map[int]*dayBucket)

	summary := CalendarSummary{}
	for _, rec := range records {
		local := rec.LoggedAt.In(loc)
		if local.Year() != year || local.Month() != month {
			continue
		}
		b, ok := buckets[local.Day()]
		if !ok {
			b = &dayBucket{routines: newRoutineTally()}
			buckets[local.Day()] = b
		}
		b.sets++
		b.reps += rec.Reps
		b.routines.add(rec)

		summary.TotalSets++
		summary.TotalReps += rec.Reps
	}

	maxDayReps := 1
	for _, b := range buckets {
		if b.reps > maxDayReps {
			maxDayReps = b.reps
		}
	}

	days := make([]CalendarDay, 0, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, loc)
		day := CalendarDay{
			Date:      date.Format(dateLayout),
			Day:       d,
			DayOfWeek: int(date.Weekday()),
			Routines:  []RoutineBreakdown{},
		}
		if b, ok := buckets[d]; ok {
			day.Sets = b.sets
			day.Reps = b.reps
			day.Intensity = Intensity(b.reps, maxDayReps)
			day.Routines = b.routines.list()
		}
		days = append(days, day)
	}

	summary.ActiveDays = len(buckets)
	if summary.ActiveDays > 0 {
		summary.AverageRepsPerDay = int(math.Round(float64(summary.TotalReps) / float64(summary.ActiveDays)))
	}

	return CalendarStats{
		Year:    year,
		Month:   int(month),
		Days:    days,
		Summary: summary,
	}
}

// Intensity is ceil(reps / maxDayReps * 4) in integer arithmetic, so the
// busiest day is exactly 4 and any active day with reps is at least 1.
func Intensity(reps, maxDayReps int) int {
	if reps <= 0 || maxDayReps <= 0 {
		return 0
	}
	level := (reps*maxIntensity + maxDayReps - 1) / maxDayReps
	return min(level, maxIntensity)
}
