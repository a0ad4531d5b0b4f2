package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSessionRepository implements domain.SessionRepository over PostgreSQL.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository.
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Save stores a session.
func (r *PostgresSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx,
		`INSERT INTO sessions (token, role, username, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		session.Token(),
		session.Role().String(),
		session.Username(),
		session.ExpiresAt().UTC(),
		session.CreatedAt().UTC(),
	)
	return err
}

// FindByToken retrieves a session by token.
func (r *PostgresSessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT token, role, username, expires_at, created_at FROM sessions WHERE token = $1`,
		token,
	)

	var (
		tok       string
		role      string
		username  string
		expiresAt time.Time
		createdAt time.Time
	)
	if err := row.Scan(&tok, &role, &username, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateSession(tok, parsedRole, username, expiresAt, createdAt), nil
}

// Delete removes a session by token.
func (r *PostgresSessionRepository) Delete(ctx context.Context, token string) error {
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteExpired removes sessions past their expiry.
func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
