// Package main seeds the predefined exercise catalog and, with -mock, a dev
// user with a couple of routines and two weeks of logged sets.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/catalog"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/exercises"
	"github.com/2beens/fittrack/internal/routines"
	"github.com/2beens/fittrack/internal/sets"
	"github.com/2beens/fittrack/internal/users"
)

const mockDays = 14

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	mock := flag.Bool("mock", false, "also create the dev test user with mock workout data")
	migrate := flag.Bool("migrate", true, "apply db migrations before seeding")
	fakerSeed := flag.Int64("faker-seed", 0, "seed for mock data, 0 means random")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}
	if *mock && cfg.IsProduction() {
		log.Fatalln("mock data is not allowed in production")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("FITTRACK_DB_PASS"),
	})
	if err != nil {
		log.Fatalf("db pool: %s", err)
	}
	defer dbPool.Close()

	if *migrate {
		if err := db.Migrate(ctx, dbPool); err != nil {
			log.Fatalf("migrate: %s", err)
		}
	}

	catalogRepo := catalog.NewRepo(dbPool)
	inserted, err := catalogRepo.Seed(ctx)
	if err != nil {
		log.Fatalf("seed catalog: %s", err)
	}
	log.Infof("catalog seeded, %d new predefined exercises", inserted)

	if !*mock {
		return
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("location: %s", err)
	}

	if err := seedMockData(ctx, dbPool, catalogRepo, gofakeit.New(*fakerSeed), loc); err != nil {
		log.Fatalf("seed mock data: %s", err)
	}
}

type mockRoutine struct {
	name string
	// first catalog exercise of each muscle group
	muscleGroups []string
	customNames  []string
}

var mockRoutines = []mockRoutine{
	{name: "Upper Body", muscleGroups: []string{"Chest", "Back", "Arms"}},
	{name: "Legs & Core", muscleGroups: []string{"Legs", "Core"}, customNames: []string{"Wall Sit"}},
}

func seedMockData(
	ctx context.Context,
	dbPool *pgxpool.Pool,
	catalogRepo *catalog.Repo,
	faker *gofakeit.Faker,
	loc *time.Location,
) error {
	user, err := users.NewRepo(dbPool).FindOrCreate(ctx, users.ExternalProfile{
		Provider:   users.ProviderDev,
		ProviderID: "dev-" + users.DevUserEmail,
		Email:      users.DevUserEmail,
		Name:       "Test User",
	})
	if err != nil {
		return err
	}
	log.Infof("dev user: %s [%s]", user.Email, user.ID)

	routinesRepo := routines.NewRepo(dbPool)
	existing, err := routinesRepo.List(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Warnf("dev user already has %d routines, skipping mock data", len(existing))
		return nil
	}

	groups, err := catalogRepo.List(ctx)
	if err != nil {
		return err
	}
	firstByGroup := map[string]int{}
	for _, g := range groups {
		if len(g.Exercises) > 0 {
			firstByGroup[g.Name] = g.Exercises[0].ID
		}
	}

	exercisesRepo := exercises.NewRepo(dbPool)
	var routineExercises [][]uuid.UUID
	for _, mr := range mockRoutines {
		routine, err := routinesRepo.Create(ctx, user.ID, mr.name, nil)
		if err != nil {
			return err
		}

		var ids []uuid.UUID
		for _, group := range mr.muscleGroups {
			predefinedID, ok := firstByGroup[group]
			if !ok {
				log.Warnf("muscle group %s not in catalog", group)
				continue
			}
			ex, err := exercisesRepo.Create(ctx, user.ID, exercises.NewExercise{
				RoutineID:            routine.ID,
				PredefinedExerciseID: &predefinedID,
			})
			if err != nil {
				return err
			}
			ids = append(ids, ex.ID)
		}
		for _, name := range mr.customNames {
			ex, err := exercisesRepo.Create(ctx, user.ID, exercises.NewExercise{
				RoutineID:  routine.ID,
				CustomName: &name,
			})
			if err != nil {
				return err
			}
			ids = append(ids, ex.ID)
		}

		routineExercises = append(routineExercises, ids)
		log.Infof("routine %s with %d exercises", routine.Name, len(ids))
	}

	setsRepo := sets.NewRepo(dbPool)
	today := time.Now().In(loc)
	logged := 0
	for daysAgo := mockDays; daysAgo >= 1; daysAgo-- {
		// rest days
		if faker.Number(1, 10) <= 3 {
			continue
		}

		day := today.AddDate(0, 0, -daysAgo)
		sessionStart := time.Date(day.Year(), day.Month(), day.Day(), faker.Number(7, 19), faker.Number(0, 59), 0, 0, loc)
		offset := 0
		for _, exerciseID := range routineExercises[daysAgo%len(routineExercises)] {
			for i := 0; i < faker.Number(2, 4); i++ {
				offset += faker.Number(1, 4)
				var note *string
				if faker.Number(1, 10) == 1 {
					n := faker.Sentence(4)
					note = &n
				}
				if _, err := setsRepo.Create(ctx, user.ID, sets.NewSet{
					ExerciseID: exerciseID,
					Reps:       faker.Number(5, 25),
					Note:       note,
					LoggedAt:   sessionStart.Add(time.Duration(offset) * time.Minute),
				}); err != nil {
					return err
				}
				logged++
			}
		}
	}
	log.Infof("logged %d mock sets over the last %d days", logged, mockDays)

	return nil
}
