package stats

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

var testLocation = time.FixedZone("CET", 3600)

type fixture struct {
	routineA, routineB uuid.UUID
	pushups, squats    uuid.UUID
	sledPush           uuid.UUID
}

func newFixture() fixture {
	return fixture{
		routineA: uuid.New(),
		routineB: uuid.New(),
		pushups:  uuid.New(),
		squats:   uuid.New(),
		sledPush: uuid.New(),
	}
}

func (f fixture) record(exerciseID uuid.UUID, reps int, at time.Time) SetRecord {
	rec := SetRecord{
		SetID:      uuid.New(),
		ExerciseID: exerciseID,
		Reps:       reps,
		LoggedAt:   at,
	}
	switch exerciseID {
	case f.pushups:
		rec.ExerciseName, rec.MuscleGroup = "Push-ups", "Chest"
		rec.RoutineID, rec.RoutineName = f.routineA, "Upper"
	case f.squats:
		rec.ExerciseName, rec.MuscleGroup = "Squats", "Legs"
		rec.RoutineID, rec.RoutineName = f.routineB, "Lower"
	default:
		rec.ExerciseName, rec.MuscleGroup = "Sled Push", "Custom"
		rec.RoutineID, rec.RoutineName = f.routineB, "Lower"
	}
	return rec
}

// randomRecords spreads n sets over [from, to) with a seeded faker.
func (f fixture) randomRecords(faker *gofakeit.Faker, n int, from, to time.Time) []SetRecord {
	exerciseIDs := []uuid.UUID{f.pushups, f.squats, f.sledPush}
	records := make([]SetRecord, 0, n)
	for i := 0; i < n; i++ {
		at := faker.DateRange(from, to.Add(-time.Second))
		records = append(records, f.record(exerciseIDs[faker.Number(0, 2)], faker.Number(0, 60), at))
	}
	return records
}

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, testLocation)
}
