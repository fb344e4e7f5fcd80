package routines

import (
	"time"

	"github.com/google/uuid"
)

type Routine struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"userId"`
	Name         string            `json:"name"`
	DisplayOrder int               `json:"displayOrder"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	Exercises    []RoutineExercise `json:"exercises"`
}

// RoutineExercise is the slice of an exercise shown inside its routine.
type RoutineExercise struct {
	ID                   uuid.UUID `json:"id"`
	PredefinedExerciseID *int      `json:"predefinedExerciseId"`
	CustomName           *string   `json:"customName"`
	Name                 string    `json:"name"`
	MuscleGroup          string    `json:"muscleGroup"`
	DisplayOrder         int       `json:"displayOrder"`
}

type RoutineUpdate struct {
	Name         *string
	DisplayOrder *int
}

func (u RoutineUpdate) IsEmpty() bool {
	return u.Name == nil && u.DisplayOrder == nil
}
