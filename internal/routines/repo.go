package routines

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
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrRoutineNotFound      = errors.New("routine not found")
	ErrDuplicateRoutineName = errors.New("routine with this name already exists")
)

const routineColumns = `r.id, r.user_id, r.name, r.display_order, r.created_at, r.updated_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) List(ctx context.Context, userID uuid.UUID) (_ []Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID.String()))

	rows, err := r.db.Query(ctx, `
		SELECT `+routineColumns+`
		FROM routines r
		WHERE r.user_id = $1
		ORDER BY r.display_order, r.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	routines, err := pgx.CollectRows(rows, scanRoutine)
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}

	if err := r.attachExercises(ctx, userID, routines); err != nil {
		return nil, err
	}
	return routines, nil
}

func (r *Repo) Get(ctx context.Context, userID, id uuid.UUID) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", id.String()))

	rows, err := r.db.Query(ctx, `
		SELECT `+routineColumns+`
		FROM routines r
		WHERE r.id = $1 AND r.user_id = $2`,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	routine, err := pgx.CollectExactlyOneRow(rows, scanRoutine)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoutineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("collect row: %w", err)
	}

	list := []Routine{routine}
	if err := r.attachExercises(ctx, userID, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Create places the routine at displayOrder, or after the user's existing
// ones when it is nil.
func (r *Repo) Create(ctx context.Context, userID uuid.UUID, name string, displayOrder *int) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		INSERT INTO routines AS r (user_id, name, display_order)
		SELECT $1, $2, COALESCE($3::int, MAX(display_order) + 1, 0)
		FROM routines WHERE user_id = $1
		RETURNING `+routineColumns,
		userID, name, displayOrder,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	routine, err := pgx.CollectExactlyOneRow(rows, scanRoutine)
	if err != nil {
		return nil, mapWriteErr(err)
	}

	span.SetAttributes(attribute.String("routine.id", routine.ID.String()))
	routine.Exercises = []RoutineExercise{}
	return &routine, nil
}

func (r *Repo) Update(ctx context.Context, userID, id uuid.UUID, update RoutineUpdate) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", id.String()))

	tag, err := r.db.Exec(ctx, `
		UPDATE routines
		SET name = COALESCE($3, name),
			display_order = COALESCE($4, display_order),
			updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		id, userID, update.Name, update.DisplayOrder,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrRoutineNotFound
	}

	return r.Get(ctx, userID, id)
}

func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", id.String()))

	// exercises and their sets go with it (ON DELETE CASCADE)
	tag, err := r.db.Exec(ctx, `DELETE FROM routines WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoutineNotFound
	}
	return nil
}

func (r *Repo) attachExercises(ctx context.Context, userID uuid.UUID, routines []Routine) error {
	if len(routines) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(routines))
	ids := make([]string, 0, len(routines))
	for i := range routines {
		routines[i].Exercises = []RoutineExercise{}
		index[routines[i].ID] = i
		ids = append(ids, routines[i].ID.String())
	}

	rows, err := r.db.Query(ctx, `
		SELECT e.routine_id, e.id, e.predefined_exercise_id, e.custom_name,
			COALESCE(pe.name, e.custom_name, ''), COALESCE(mg.name, 'Custom'), e.display_order
		FROM exercises e
		JOIN routines r ON r.id = e.routine_id
		LEFT JOIN predefined_exercises pe ON pe.id = e.predefined_exercise_id
		LEFT JOIN muscle_groups mg ON mg.id = pe.muscle_group_id
		WHERE r.user_id = $1 AND e.routine_id = ANY($2::uuid[])
		ORDER BY e.display_order, e.created_at`,
		userID, ids,
	)
	if err != nil {
		return fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			routineID uuid.UUID
			ex        RoutineExercise
		)
		if err := rows.Scan(
			&routineID, &ex.ID, &ex.PredefinedExerciseID, &ex.CustomName,
			&ex.Name, &ex.MuscleGroup, &ex.DisplayOrder,
		); err != nil {
			return fmt.Errorf("scan exercise: %w", err)
		}
		if i, ok := index[routineID]; ok {
			routines[i].Exercises = append(routines[i].Exercises, ex)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("exercise rows: %w", err)
	}
	return nil
}

func mapWriteErr(err error) error {
	if pkg.IsUniqueViolationError(err) && pkg.ConstraintName(err) == db.ConstraintRoutineUserName {
		return ErrDuplicateRoutineName
	}
	return fmt.Errorf("write routine: %w", err)
}

func scanRoutine(row pgx.CollectableRow) (Routine, error) {
	var rt Routine
	err := row.Scan(&rt.ID, &rt.UserID, &rt.Name, &rt.DisplayOrder, &rt.CreatedAt, &rt.UpdatedAt)
	return rt, err
}
