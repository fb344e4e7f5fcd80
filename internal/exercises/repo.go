package exercises

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrExerciseNotFound           = errors.New("exercise not found")
	ErrRoutineNotFound            = errors.New("routine not found")
	ErrPredefinedExerciseNotFound = errors.New("predefined exercise not found")
	ErrDuplicateExercise          = errors.New("exercise already exists in this routine")
	ErrInvalidIdentity            = errors.New("exactly one of predefinedExerciseId and customName is required")
)

const exerciseSelect = `
	SELECT e.id, e.routine_id, e.predefined_exercise_id, e.custom_name,
		COALESCE(pe.name, e.custom_name, ''), COALESCE(mg.name, '` + CustomMuscleGroup + `'),
		e.display_order, e.created_at, e.updated_at
	FROM exercises e
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

// List returns the user's exercises, optionally narrowed to one routine.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, routineID *uuid.UUID) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var routineFilter *string
	if routineID != nil {
		s := routineID.String()
		routineFilter = &s
		span.SetAttributes(attribute.String("routine.id", s))
	}

	rows, err := r.db.Query(ctx, exerciseSelect+`
		WHERE r.user_id = $1 AND ($2::uuid IS NULL OR e.routine_id = $2::uuid)
		ORDER BY r.display_order, r.created_at, e.display_order, e.created_at`,
		userID, routineFilter,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	exercises, err := pgx.CollectRows(rows, scanExercise)
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}
	return exercises, nil
}

func (r *Repo) Get(ctx context.Context, userID, id uuid.UUID) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id.String()))

	return getExercise(ctx, r.db, userID, id)
}

// Create appends the exercise to the routine. The routine row is locked so
// concurrent creates get distinct display orders.
func (r *Repo) Create(ctx context.Context, userID uuid.UUID, ex NewExercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", ex.RoutineID.String()))

	if (ex.PredefinedExerciseID == nil) == (ex.CustomName == nil) {
		return nil, ErrInvalidIdentity
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	if err := lockOwnedRoutine(ctx, tx, userID, ex.RoutineID); err != nil {
		return nil, err
	}
	if err := checkPredefinedExists(ctx, tx, ex.PredefinedExerciseID); err != nil {
		return nil, err
	}

	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
		INSERT INTO exercises (routine_id, predefined_exercise_id, custom_name, display_order)
		SELECT $1, $2, $3, COALESCE($4::int, MAX(display_order) + 1, 0)
		FROM exercises WHERE routine_id = $1
		RETURNING id`,
		ex.RoutineID, ex.PredefinedExerciseID, ex.CustomName, ex.DisplayOrder,
	).Scan(&id); err != nil {
		return nil, mapWriteErr(err)
	}

	created, err := getExercise(ctx, tx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	span.SetAttributes(attribute.String("exercise.id", id.String()))
	return created, nil
}

func (r *Repo) Update(ctx context.Context, userID, id uuid.UUID, update ExerciseUpdate) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id.String()))

	if update.PredefinedExerciseID != nil && update.CustomName != nil {
		return nil, ErrInvalidIdentity
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	var (
		routineID    uuid.UUID
		predefinedID *int
		customName   *string
	)
	err = tx.QueryRow(ctx, `
		SELECT e.routine_id, e.predefined_exercise_id, e.custom_name
		FROM exercises e
		JOIN routines r ON r.id = e.routine_id
		WHERE e.id = $1 AND r.user_id = $2
		FOR UPDATE OF e`,
		id, userID,
	).Scan(&routineID, &predefinedID, &customName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load exercise: %w", err)
	}

	if update.RoutineID != nil && *update.RoutineID != routineID {
		if err := lockOwnedRoutine(ctx, tx, userID, *update.RoutineID); err != nil {
			return nil, err
		}
		routineID = *update.RoutineID
	}
	if err := checkPredefinedExists(ctx, tx, update.PredefinedExerciseID); err != nil {
		return nil, err
	}

	predefinedID, customName = update.identity(predefinedID, customName)
	if _, err := tx.Exec(ctx, `
		UPDATE exercises
		SET routine_id = $2,
			predefined_exercise_id = $3,
			custom_name = $4,
			display_order = COALESCE($5, display_order),
			updated_at = now()
		WHERE id = $1`,
		id, routineID, predefinedID, customName, update.DisplayOrder,
	); err != nil {
		return nil, mapWriteErr(err)
	}

	updated, err := getExercise(ctx, tx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id.String()))

	// sets go with it (ON DELETE CASCADE)
	tag, err := r.db.Exec(ctx, `
		DELETE FROM exercises e
		USING routines r
		WHERE e.id = $1 AND r.id = e.routine_id AND r.user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getExercise(ctx context.Context, q querier, userID, id uuid.UUID) (*Exercise, error) {
	rows, err := q.Query(ctx, exerciseSelect+`
		WHERE e.id = $1 AND r.user_id = $2`,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	ex, err := pgx.CollectExactlyOneRow(rows, scanExercise)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("collect row: %w", err)
	}
	return &ex, nil
}

func lockOwnedRoutine(ctx context.Context, tx pgx.Tx, userID, routineID uuid.UUID) error {
	var one int
	err := tx.QueryRow(ctx,
		`SELECT 1 FROM routines WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		routineID, userID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRoutineNotFound
	}
	if err != nil {
		return fmt.Errorf("lock routine: %w", err)
	}
	return nil
}

func checkPredefinedExists(ctx context.Context, tx pgx.Tx, predefinedID *int) error {
	if predefinedID == nil {
		return nil
	}
	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM predefined_exercises WHERE id = $1)`,
		*predefinedID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check predefined exercise: %w", err)
	}
	if !exists {
		return ErrPredefinedExerciseNotFound
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		log.Errorf("exercises: rollback: %s", err)
	}
}

func mapWriteErr(err error) error {
	switch {
	case pkg.IsUniqueViolationError(err):
		switch pkg.ConstraintName(err) {
		case db.ConstraintExerciseRoutineDefRef, db.ConstraintExerciseRoutineCustom:
			return ErrDuplicateExercise
		}
	case pkg.IsForeignKeyViolationError(err):
		return ErrPredefinedExerciseNotFound
	case pkg.IsCheckViolationError(err):
		return ErrInvalidIdentity
	}
	return fmt.Errorf("write exercise: %w", err)
}

func scanExercise(row pgx.CollectableRow) (Exercise, error) {
	var ex Exercise
	err := row.Scan(
		&ex.ID, &ex.RoutineID, &ex.PredefinedExerciseID, &ex.CustomName,
		&ex.Name, &ex.MuscleGroup, &ex.DisplayOrder, &ex.CreatedAt, &ex.UpdatedAt,
	)
	return ex, err
}
