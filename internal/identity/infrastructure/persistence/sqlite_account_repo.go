package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
)

// SQLiteAccountRepository implements domain.AccountRepository over SQLite.
// Patients and caregivers live in separate tables keyed by username.
type SQLiteAccountRepository struct {
	db *sql.DB
}

// NewSQLiteAccountRepository creates a new SQLiteAccountRepository.
func NewSQLiteAccountRepository(db *sql.DB) *SQLiteAccountRepository {
	return &SQLiteAccountRepository{db: db}
}

func accountTable(role domain.Role) string {
	if role == domain.RoleCaregiver {
		return "caregivers"
	}
	return "patients"
}

// Save stores a new account.
func (r *SQLiteAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (username, password_hash, created_at) VALUES (?, ?, ?)`,
			accountTable(account.Role())),
		account.Username().String(),
		account.PasswordHash(),
		account.CreatedAt().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrUsernameTaken
		}
		return err
	}
	return nil
}

// FindByUsername retrieves an account by role and username.
func (r *SQLiteAccountRepository) FindByUsername(ctx context.Context, role domain.Role, username string) (*domain.Account, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	row := q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT username, password_hash, created_at FROM %s WHERE username = ?`,
			accountTable(role)),
		username,
	)

	var (
		name      string
		hash      string
		createdAt string
	)
	if err := row.Scan(&name, &hash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	parsedUsername, err := domain.NewUsername(name)
	if err != nil {
		return nil, err
	}
	created, _ := time.Parse(time.RFC3339, createdAt)

	return domain.RehydrateAccount(role, parsedUsername, hash, created), nil
}
