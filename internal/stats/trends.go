package stats

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// BuildTrends groups sets into periods. Only periods with at least one set
// appear; every exercise series is aligned with the timeline and zero-filled.
func BuildTrends(g Granularity, start, end time.Time, records []SetRecord, loc *time.Location) TrendStats {
	totals := map[string]int{}
	perExercise := map[uuid.UUID]map[string]int{}
	var (
		exerciseOrder []uuid.UUID
		names         = map[uuid.UUID]string{}
	)

	for _, rec := range records {
		key := PeriodKey(rec.LoggedAt, g, loc)
		totals[key] += rec.Reps

		if _, ok := perExercise[rec.ExerciseID]; !ok {
			perExercise[rec.ExerciseID] = map[string]int{}
			exerciseOrder = append(exerciseOrder, rec.ExerciseID)
		}
		perExercise[rec.ExerciseID][key] += rec.Reps
		names[rec.ExerciseID] = rec.ExerciseName
	}

	periods := make([]string, 0, len(totals))
	for key := range totals {
		periods = append(periods, key)
	}
	slices.Sort(periods)

	timeline := make([]TimelinePoint, 0, len(periods))
	for _, p := range periods {
		timeline = append(timeline, TimelinePoint{Period: p, TotalReps: totals[p]})
	}

	exercises := make([]ExerciseTrend, 0, len(exerciseOrder))
	for _, id := range exerciseOrder {
		data := make([]PeriodValue, 0, len(periods))
		for _, p := range periods {
			data = append(data, PeriodValue{Period: p, Reps: perExercise[id][p]})
		}
		exercises = append(exercises, ExerciseTrend{ID: id, Name: names[id], Data: data})
	}

	return TrendStats{
		Granularity: g,
		StartDate:   start.In(loc).Format(dateLayout),
		EndDate:     end.In(loc).Format(dateLayout),
		Timeline:    timeline,
		Exercises:   exercises,
	}
}
