package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type accountRow struct {
	username  string
	hash      string
	createdAt time.Time
}

// PostgresAccountRepository implements domain.AccountRepository over PostgreSQL.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository.
func NewPostgresAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// Save stores a new account.
func (r *PostgresAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (username, password_hash, created_at) VALUES ($1, $2, $3)`,
			accountTable(account.Role())),
		account.Username().String(),
		account.PasswordHash(),
		account.CreatedAt().UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrUsernameTaken
		}
		return err
	}
	return nil
}

// FindByUsername retrieves an account by role and username.
func (r *PostgresAccountRepository) FindByUsername(ctx context.Context, role domain.Role, username string) (*domain.Account, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	row := exec.QueryRow(ctx,
		fmt.Sprintf(`SELECT username, password_hash, created_at FROM %s WHERE username = $1`,
			accountTable(role)),
		username,
	)

	var account accountRow
	if err := row.Scan(&account.username, &account.hash, &account.createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	parsedUsername, err := domain.NewUsername(account.username)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateAccount(role, parsedUsername, account.hash, account.createdAt), nil
}
