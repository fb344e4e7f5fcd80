package stats

import (
	"math"
	"time"
)

// BuildGeneral summarizes one day. records must be the day's sets ordered
// by loggedAt; week holds the totals of the seven days before the day.
func BuildGeneral(day time.Time, records []SetRecord, yesterday, week Totals) GeneralStats {
	exercises := newExerciseTally()
	routines := newRoutineTally()

	today := DayStats{}
	for _, rec := range records {
		today.TotalSets++
		today.TotalReps += rec.Reps
		exercises.add(rec)
		routines.add(rec)
	}
	today.Exercises = exercises.list()
	today.Routines = routines.list()

	return GeneralStats{
		Date:  day.Format(dateLayout),
		Today: today,
		Comparison: Comparison{
			Yesterday: yesterday,
			WeeklyAverage: Average{
				TotalSets: dailyAverage(week.TotalSets),
				TotalReps: dailyAverage(week.TotalReps),
			},
		},
	}
}

// dailyAverage spreads a weekly total over seven days, one decimal.
func dailyAverage(weekTotal int) float64 {
	return math.Round(float64(weekTotal)/7*10) / 10
}
