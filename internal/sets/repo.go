package sets

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrSetNotFound      = errors.New("set not found")
	ErrExerciseNotFound = errors.New("exercise not found")
)

const setSelect = `
	SELECT s.id, s.exercise_id, s.user_id, s.reps, s.note, s.logged_at, s.created_at,
		COALESCE(pe.name, e.custom_name, ''), COALESCE(mg.name, 'Custom'), r.id, r.name
	FROM sets s
	JOIN exercises e ON e.id = s.exercise_id
	JOIN routines r ON r.id = e.routine_id
	LEFT JOIN predefined_exercises pe ON pe.id = e.predefined_exercise_id
	LEFT JOIN muscle_groups mg ON mg.id = pe.muscle_group_id`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns the user's sets, newest first.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, filter Filter) (_ []Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var exerciseFilter *string
	if filter.ExerciseID != nil {
		s := filter.ExerciseID.String()
		exerciseFilter = &s
		span.SetAttributes(attribute.String("exercise.id", s))
	}

	rows, err := r.db.Query(ctx, setSelect+`
		WHERE s.user_id = $1
			AND ($2::uuid IS NULL OR s.exercise_id = $2::uuid)
			AND ($3::timestamptz IS NULL OR s.logged_at >= $3)
			AND ($4::timestamptz IS NULL OR s.logged_at < $4)
		ORDER BY s.logged_at DESC`,
		userID, exerciseFilter, filter.From, filter.To,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	sets, err := pgx.CollectRows(rows, scanSet)
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}
	return sets, nil
}

func (r *Repo) Get(ctx context.Context, userID, id uuid.UUID) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("set.id", id.String()))

	rows, err := r.db.Query(ctx, setSelect+`
		WHERE s.id = $1 AND s.user_id = $2`,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	set, err := pgx.CollectExactlyOneRow(rows, scanSet)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("collect row: %w", err)
	}
	return &set, nil
}

// Create logs a set. The exercise must belong to one of the user's routines.
func (r *Repo) Create(ctx context.Context, userID uuid.UUID, newSet NewSet) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", newSet.ExerciseID.String()))

	var id uuid.UUID
	err = r.db.QueryRow(ctx, `
		INSERT INTO sets (exercise_id, user_id, reps, note, logged_at)
		SELECT e.id, r.user_id, $3, $4, $5
		FROM exercises e
		JOIN routines r ON r.id = e.routine_id
		WHERE e.id = $1 AND r.user_id = $2
		RETURNING id`,
		newSet.ExerciseID, userID, newSet.Reps, newSet.Note, newSet.LoggedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	span.SetAttributes(attribute.String("set.id", id.String()))
	return r.Get(ctx, userID, id)
}

func (r *Repo) Update(ctx context.Context, userID, id uuid.UUID, update SetUpdate) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("set.id", id.String()))

	tag, err := r.db.Exec(ctx, `
		UPDATE sets
		SET reps = COALESCE($3, reps),
			note = CASE WHEN $4 THEN $5 ELSE note END,
			logged_at = COALESCE($6, logged_at)
		WHERE id = $1 AND user_id = $2`,
		id, userID, update.Reps, update.NoteSet, update.Note, update.LoggedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrSetNotFound
	}

	return r.Get(ctx, userID, id)
}

func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("set.id", id.String()))

	tag, err := r.db.Exec(ctx, `DELETE FROM sets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}
	return nil
}

// Last returns the newest set of an owned exercise.
func (r *Repo) Last(ctx context.Context, userID, exerciseID uuid.UUID) (_ *LastSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.last")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", exerciseID.String()))

	var owned bool
	if err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM exercises e
			JOIN routines r ON r.id = e.routine_id
			WHERE e.id = $1 AND r.user_id = $2
		)`,
		exerciseID, userID,
	).Scan(&owned); err != nil {
		return nil, fmt.Errorf("check exercise: %w", err)
	}
	if !owned {
		return nil, ErrExerciseNotFound
	}

	var last LastSet
	err = r.db.QueryRow(ctx, `
		SELECT reps, note, logged_at
		FROM sets
		WHERE exercise_id = $1 AND user_id = $2
		ORDER BY logged_at DESC
		LIMIT 1`,
		exerciseID, userID,
	).Scan(&last.Reps, &last.Note, &last.LoggedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &LastSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last set: %w", err)
	}
	return &last, nil
}

func scanSet(row pgx.CollectableRow) (Set, error) {
	var s Set
	err := row.Scan(
		&s.ID, &s.ExerciseID, &s.UserID, &s.Reps, &s.Note, &s.LoggedAt, &s.CreatedAt,
		&s.Exercise.Name, &s.Exercise.MuscleGroup, &s.Exercise.RoutineID, &s.Exercise.RoutineName,
	)
	s.Exercise.ID = s.ExerciseID
	return s, err
}
