package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidProfile = errors.New("invalid external profile")
)

const userColumns = `id, email, name, avatar_url, provider, provider_id, role, created_at, updated_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getById")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", id.String()))

	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByEmail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	return scanUser(row)
}

// FindOrCreate resolves a provider login to a local user: first by provider
// identity, then by email (linking the provider), otherwise a new user is created.
func (r *Repo) FindOrCreate(ctx context.Context, profile ExternalProfile) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.findOrCreate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("provider", profile.Provider))

	if profile.Provider == "" || profile.ProviderID == "" || profile.Email == "" {
		return nil, ErrInvalidProfile
	}
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	avatar := pkg.TrimToNil(&profile.AvatarURL)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	user, err := scanUser(tx.QueryRow(ctx, `
		UPDATE users SET name = $3, avatar_url = COALESCE($4, avatar_url), updated_at = now()
		WHERE provider = $1 AND provider_id = $2
		RETURNING `+userColumns,
		profile.Provider, profile.ProviderID, profile.Name, avatar,
	))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("find by provider: %w", err)
	}

	if user == nil {
		user, err = scanUser(tx.QueryRow(ctx, `
			UPDATE users SET provider = $2, provider_id = $3, avatar_url = COALESCE(avatar_url, $4), updated_at = now()
			WHERE email = $1
			RETURNING `+userColumns,
			email, profile.Provider, profile.ProviderID, avatar,
		))
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("link by email: %w", err)
		}
	}

	if user == nil {
		user, err = scanUser(tx.QueryRow(ctx, `
			INSERT INTO users (email, name, avatar_url, provider, provider_id, role)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+userColumns,
			email, profile.Name, avatar, profile.Provider, profile.ProviderID, RoleUser,
		))
		if err != nil {
			return nil, fmt.Errorf("insert user: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	return user, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.AvatarURL,
		&u.Provider, &u.ProviderID, &u.Role,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
