package stats

import "github.com/google/uuid"

// exerciseTally sums sets per exercise id, keeping first-seen order.
type exerciseTally struct {
	order []uuid.UUID
	byID  map[uuid.UUID]*ExerciseBreakdown
}

func newExerciseTally() *exerciseTally {
	return &exerciseTally{
		byID: map[uuid.UUID]*ExerciseBreakdown{},
	}
}

func (t *exerciseTally) add(rec SetRecord) {
	ex, ok := t.byID[rec.ExerciseID]
	if !ok {
		ex = &ExerciseBreakdown{
			ID:          rec.ExerciseID,
			Name:        rec.ExerciseName,
			MuscleGroup: rec.MuscleGroup,
		}
		t.byID[rec.ExerciseID] = ex
		t.order = append(t.order, rec.ExerciseID)
	}
	ex.Sets++
	ex.Reps += rec.Reps
}

func (t *exerciseTally) list() []ExerciseBreakdown {
	out := make([]ExerciseBreakdown, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.byID[id])
	}
	return out
}

// routineTally groups sets per routine, then per exercise within it.
type routineTally struct {
	order     []uuid.UUID
	routines  map[uuid.UUID]*RoutineBreakdown
	exercises map[uuid.UUID]*exerciseTally
}

func newRoutineTally() *routineTally {
	return &routineTally{
		routines:  map[uuid.UUID]*RoutineBreakdown{},
		exercises: map[uuid.UUID]*exerciseTally{},
	}
}

func (t *routineTally) add(rec SetRecord) {
	r, ok := t.routines[rec.RoutineID]
	if !ok {
		r = &RoutineBreakdown{
			ID:   rec.RoutineID,
			Name: rec.RoutineName,
		}
		t.routines[rec.RoutineID] = r
		t.exercises[rec.RoutineID] = newExerciseTally()
		t.order = append(t.order, rec.RoutineID)
	}
	r.TotalSets++
	r.TotalReps += rec.Reps
	t.exercises[rec.RoutineID].add(rec)
}

func (t *routineTally) list() []RoutineBreakdown {
	out := make([]RoutineBreakdown, 0, len(t.order))
	for _, id := range t.order {
		r := *t.routines[id]
		r.Exercises = t.exercises[id].list()
		out = append(out, r)
	}
	return out
}
