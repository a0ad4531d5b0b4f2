package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
)

// SQLiteSessionRepository implements domain.SessionRepository over SQLite.
type SQLiteSessionRepository struct {
	db *sql.DB
}

// NewSQLiteSessionRepository creates a new SQLiteSessionRepository.
func NewSQLiteSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// Save stores a session.
func (r *SQLiteSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`INSERT INTO sessions (token, role, username, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		session.Token(),
		session.Role().String(),
		session.Username(),
		session.ExpiresAt().UTC().Format(time.RFC3339),
		session.CreatedAt().UTC().Format(time.RFC3339),
	)
	return err
}

// FindByToken retrieves a session by token.
func (r *SQLiteSessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT token, role, username, expires_at, created_at FROM sessions WHERE token = ?`,
		token,
	)

	var (
		tok       string
		role      string
		username  string
		expiresAt string
		createdAt string
	)
	if err := row.Scan(&tok, &role, &username, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	expires, _ := time.Parse(time.RFC3339, expiresAt)
	created, _ := time.Parse(time.RFC3339, createdAt)

	return domain.RehydrateSession(tok, parsedRole, username, expires, created), nil
}

// Delete removes a session by token.
func (r *SQLiteSessionRepository) Delete(ctx context.Context, token string) error {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// DeleteExpired removes sessions past their expiry.
func (r *SQLiteSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	result, err := q.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
