package stats

import (
	"time"

	"github.com/google/uuid"
)

// SetRecord is one logged set flattened with its exercise and routine.
type SetRecord struct {
	SetID        uuid.UUID
	ExerciseID   uuid.UUID
	ExerciseName string
	MuscleGroup  string
	RoutineID    uuid.UUID
	RoutineName  string
	Reps         int
	LoggedAt     time.Time
}

type Totals struct {
	TotalSets int `json:"totalSets"`
	TotalReps int `json:"totalReps"`
}

type Average struct {
	TotalSets float64 `json:"totalSets"`
	TotalReps float64 `json:"totalReps"`
}

type ExerciseBreakdown struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	MuscleGroup string    `json:"muscleGroup"`
	Sets        int       `json:"sets"`
	Reps        int       `json:"reps"`
}

type RoutineBreakdown struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	TotalSets int                 `json:"totalSets"`
	TotalReps int                 `json:"totalReps"`
	Exercises []ExerciseBreakdown `json:"exercises"`
}

type GeneralStats struct {
	Date       string     `json:"date"`
	Today      DayStats   `json:"today"`
	Comparison Comparison `json:"comparison"`
}

type DayStats struct {
	TotalSets int                 `json:"totalSets"`
	TotalReps int                 `json:"totalReps"`
	Exercises []ExerciseBreakdown `json:"exercises"`
	Routines  []RoutineBreakdown  `json:"routines"`
}

type Comparison struct {
	Yesterday     Totals  `json:"yesterday"`
	WeeklyAverage Average `json:"weeklyAverage"`
}

type CalendarStats struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Days    []CalendarDay   `json:"days"`
	Summary CalendarSummary `json:"summary"`
}

type CalendarDay struct {
	Date      string             `json:"date"`
	Day       int                `json:"day"`
	DayOfWeek int                `json:"dayOfWeek"`
	Sets      int                `json:"sets"`
	Reps      int                `json:"reps"`
	Intensity int                `json:"intensity"`
	Routines  []RoutineBreakdown `json:"routines"`
}

type CalendarSummary struct {
	TotalSets         int `json:"totalSets"`
	TotalReps         int `json:"totalReps"`
	ActiveDays        int `json:"activeDays"`
	AverageRepsPerDay int `json:"averageRepsPerDay"`
}

type TrendStats struct {
	Granularity Granularity     `json:"granularity"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Timeline    []TimelinePoint `json:"timeline"`
	Exercises   []ExerciseTrend `json:"exercises"`
}

type TimelinePoint struct {
	Period    string `json:"period"`
	TotalReps int    `json:"totalReps"`
}

type ExerciseTrend struct {
	ID   uuid.UUID     `json:"id"`
	Name string        `json:"name"`
	Data []PeriodValue `json:"data"`
}

type PeriodValue struct {
	Period string `json:"period"`
	Reps   int    `json:"reps"`
}
