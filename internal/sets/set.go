package sets

import (
	"time"

	"github.com/google/uuid"
)

type Set struct {
	ID         uuid.UUID   `json:"id"`
	ExerciseID uuid.UUID   `json:"exerciseId"`
	UserID     uuid.UUID   `json:"userId"`
	Reps       int         `json:"reps"`
	Note       *string     `json:"note"`
	LoggedAt   time.Time   `json:"loggedAt"`
	CreatedAt  time.Time   `json:"createdAt"`
	Exercise   SetExercise `json:"exercise"`
}

// SetExercise describes the exercise a set belongs to.
type SetExercise struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	MuscleGroup string    `json:"muscleGroup"`
	RoutineID   uuid.UUID `json:"routineId"`
	RoutineName string    `json:"routineName"`
}

type NewSet struct {
	ExerciseID uuid.UUID
	Reps       int
	Note       *string
	LoggedAt   time.Time
}

// SetUpdate changes only what is set. NoteSet with a nil Note clears the note.
type SetUpdate struct {
	Reps     *int
	NoteSet  bool
	Note     *string
	LoggedAt *time.Time
}

func (u SetUpdate) IsEmpty() bool {
	return u.Reps == nil && !u.NoteSet && u.LoggedAt == nil
}

// Filter narrows a set listing. From is inclusive, To exclusive.
type Filter struct {
	ExerciseID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// LastSet is the most recent set of an exercise. Reps and Note are null
// when nothing was logged yet.
type LastSet struct {
	Reps     *int       `json:"reps"`
	Note     *string    `json:"note"`
	LoggedAt *time.Time `json:"loggedAt,omitempty"`
}
