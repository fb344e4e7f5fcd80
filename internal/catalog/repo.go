package catalog

import (
	"context"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns all muscle groups with their exercises, both alphabetically.
func (r *Repo) List(ctx context.Context) (_ []MuscleGroup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT mg.id, mg.name, pe.id, pe.name
		FROM muscle_groups mg
		LEFT JOIN predefined_exercises pe ON pe.muscle_group_id = mg.id
		ORDER BY mg.name, pe.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var groups []MuscleGroup
	for rows.Next() {
		var (
			groupID   int
			groupName string
			exID      *int
			exName    *string
		)
		if err := rows.Scan(&groupID, &groupName, &exID, &exName); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}

		if len(groups) == 0 || groups[len(groups)-1].ID != groupID {
			groups = append(groups, MuscleGroup{ID: groupID, Name: groupName, Exercises: []PredefinedExercise{}})
		}
		if exID != nil && exName != nil {
			g := &groups[len(groups)-1]
			g.Exercises = append(g.Exercises, PredefinedExercise{ID: *exID, Name: *exName, MuscleGroupID: groupID})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if groups == nil {
		groups = []MuscleGroup{}
	}
	return groups, nil
}

// Seed inserts the catalog, skipping entries that already exist.
func (r *Repo) Seed(ctx context.Context) (inserted int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.seed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, entry := range Seed {
		var groupID int
		err = tx.QueryRow(ctx, `
			INSERT INTO muscle_groups (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			entry.MuscleGroup,
		).Scan(&groupID)
		if err != nil {
			return 0, fmt.Errorf("upsert muscle group %s: %w", entry.MuscleGroup, err)
		}

		for _, name := range entry.Exercises {
			tag, err := tx.Exec(ctx, `
				INSERT INTO predefined_exercises (muscle_group_id, name) VALUES ($1, $2)
				ON CONFLICT ON CONSTRAINT predefined_exercises_group_name_key DO NOTHING`,
				groupID, name,
			)
			if err != nil {
				return 0, fmt.Errorf("insert predefined exercise %s: %w", name, err)
			}
			inserted += int(tag.RowsAffected())
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
