package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Constraint names checked by the repos when mapping unique violations.
const (
	ConstraintRoutineUserName       = "routines_user_name_key"
	ConstraintExerciseRoutineDefRef = "exercises_routine_predefined_key"
	ConstraintExerciseRoutineCustom = "exercises_routine_custom_name_key"
	ConstraintUserEmail             = "users_email_key"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS users (
	id			UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email		TEXT NOT NULL,
	name		TEXT NOT NULL DEFAULT '',
	avatar_url	TEXT,
	provider	TEXT NOT NULL,
	provider_id	TEXT NOT NULL,
	role		TEXT NOT NULL DEFAULT 'user',
	created_at	TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at	TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT users_email_key UNIQUE (email),
	CONSTRAINT users_provider_key UNIQUE (provider, provider_id)
);

CREATE TABLE IF NOT EXISTS muscle_groups (
	id		SERIAL PRIMARY KEY,
	name	TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS predefined_exercises (
	id				SERIAL PRIMARY KEY,
	muscle_group_id	INT NOT NULL REFERENCES muscle_groups(id) ON DELETE CASCADE,
	name			TEXT NOT NULL,
	CONSTRAINT predefined_exercises_group_name_key UNIQUE (muscle_group_id, name)
);

CREATE TABLE IF NOT EXISTS routines (
	id				UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id			UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name			TEXT NOT NULL,
	display_order	INT NOT NULL DEFAULT 0,
	created_at		TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at		TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT routines_user_name_key UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS exercises (
	id						UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	routine_id				UUID NOT NULL REFERENCES routines(id) ON DELETE CASCADE,
	predefined_exercise_id	INT REFERENCES predefined_exercises(id) ON DELETE RESTRICT,
	custom_name				TEXT,
	display_order			INT NOT NULL DEFAULT 0,
	created_at				TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at				TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT exercises_exactly_one_identity CHECK (
		(predefined_exercise_id IS NOT NULL AND custom_name IS NULL) OR
		(predefined_exercise_id IS NULL AND custom_name IS NOT NULL)
	),
	CONSTRAINT exercises_routine_predefined_key UNIQUE (routine_id, predefined_exercise_id),
	CONSTRAINT exercises_routine_custom_name_key UNIQUE (routine_id, custom_name)
);

CREATE TABLE IF NOT EXISTS sets (
	id			UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	exercise_id	UUID NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
	user_id		UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	reps		INT NOT NULL CHECK (reps >= 0),
	note		TEXT,
	logged_at	TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_at	TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_routines_user_id ON routines(user_id);
CREATE INDEX IF NOT EXISTS idx_exercises_routine_id ON exercises(routine_id);
CREATE INDEX IF NOT EXISTS idx_sets_user_logged_at ON sets(user_id, logged_at);
CREATE INDEX IF NOT EXISTS idx_sets_exercise_logged_at ON sets(exercise_id, logged_at DESC);
`

// Migrate creates missing tables and indexes. Safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
