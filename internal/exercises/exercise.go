package exercises

import (
	"time"

	"github.com/google/uuid"
)

// CustomMuscleGroup labels exercises that are not from the catalog.
const CustomMuscleGroup = "Custom"

type Exercise struct {
	ID                   uuid.UUID `json:"id"`
	RoutineID            uuid.UUID `json:"routineId"`
	PredefinedExerciseID *int      `json:"predefinedExerciseId"`
	CustomName           *string   `json:"customName"`
	Name                 string    `json:"name"`
	MuscleGroup          string    `json:"muscleGroup"`
	DisplayOrder         int       `json:"displayOrder"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// NewExercise holds the identity of an exercise being added to a routine.
// Exactly one of PredefinedExerciseID and CustomName is set.
// NewExercise is appended after the routine's exercises unless DisplayOrder is set.
type NewExercise struct {
	RoutineID            uuid.UUID
	PredefinedExerciseID *int
	CustomName           *string
	DisplayOrder         *int
}

// ExerciseUpdate changes only the non-nil fields. Setting one identity field
// replaces the other, so an exercise can switch between catalog and custom.
type ExerciseUpdate struct {
	RoutineID            *uuid.UUID
	PredefinedExerciseID *int
	CustomName           *string
	DisplayOrder         *int
}

func (u ExerciseUpdate) IsEmpty() bool {
	return u.RoutineID == nil && u.PredefinedExerciseID == nil && u.CustomName == nil && u.DisplayOrder == nil
}

// identity resolves the exercise identity after applying the update.
func (u ExerciseUpdate) identity(predefinedID *int, customName *string) (*int, *string) {
	switch {
	case u.PredefinedExerciseID != nil:
		return u.PredefinedExerciseID, nil
	case u.CustomName != nil:
		return nil, u.CustomName
	default:
		return predefinedID, customName
	}
}
