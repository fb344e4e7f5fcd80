package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// RecordFilter narrows the sets read for trends. Zero value means all.
type RecordFilter struct {
	ExerciseIDs []uuid.UUID
	RoutineID   *uuid.UUID
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Records reads the user's sets logged in [from, to), oldest first.
func (r *Repo) Records(ctx context.Context, userID uuid.UUID, from, to time.Time, filter RecordFilter) (_ []SetRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.stats.records")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("from", from.Format(time.RFC3339)),
		attribute.String("to", to.Format(time.RFC3339)),
	)

	exerciseIDs := make([]string, 0, len(filter.ExerciseIDs))
	for _, id := range filter.ExerciseIDs {
		exerciseIDs = append(exerciseIDs, id.String())
	}
	var routineID *string
	if filter.RoutineID != nil {
		s := filter.RoutineID.String()
		routineID = &s
	}

	rows, err := r.db.Query(ctx, `
		SELECT s.id, e.id, COALESCE(pe.name, e.custom_name, ''), COALESCE(mg.name, 'Custom'),
			r.id, r.name, s.reps, s.logged_at
		FROM sets s
		JOIN exercises e ON e.id = s.exercise_id
		JOIN routines r ON r.id = e.routine_id
		LEFT JOIN predefined_exercises pe ON pe.id = e.predefined_exercise_id
		LEFT JOIN muscle_groups mg ON mg.id = pe.muscle_group_id
		WHERE s.user_id = $1
			AND s.logged_at >= $2 AND s.logged_at < $3
			AND (cardinality($4::uuid[]) = 0 OR s.exercise_id = ANY($4::uuid[]))
			AND ($5::uuid IS NULL OR e.routine_id = $5::uuid)
		ORDER BY s.logged_at, s.created_at`,
		userID, from, to, exerciseIDs, routineID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SetRecord, error) {
		var rec SetRecord
		err := row.Scan(
			&rec.SetID, &rec.ExerciseID, &rec.ExerciseName, &rec.MuscleGroup,
			&rec.RoutineID, &rec.RoutineName, &rec.Reps, &rec.LoggedAt,
		)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

// Totals counts sets and sums reps logged in [from, to).
func (r *Repo) Totals(ctx context.Context, userID uuid.UUID, from, to time.Time) (_ Totals, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.stats.totals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var totals Totals
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(reps), 0)
		FROM sets
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3`,
		userID, from, to,
	).Scan(&totals.TotalSets, &totals.TotalReps); err != nil {
		return Totals{}, fmt.Errorf("query totals: %w", err)
	}
	return totals, nil
}
