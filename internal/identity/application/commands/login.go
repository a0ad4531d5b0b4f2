package commands

import (
	"context"
	"errors"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/vaxsched/internal/shared/application"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/outbox"
)

// LoginCommand contains the credentials for a login attempt.
type LoginCommand struct {
	Role     domain.Role
	Username string
	Password string
}

// LoginResult contains the minted session.
type LoginResult struct {
	Session *domain.Session
}

// LoginHandler verifies credentials and starts a session.
type LoginHandler struct {
	accountRepo domain.AccountRepository
	sessionRepo domain.SessionRepository
	outboxRepo  outbox.Repository
	sessionTTL  time.Duration
}

// NewLoginHandler creates a new LoginHandler.
func NewLoginHandler(accountRepo domain.AccountRepository, sessionRepo domain.SessionRepository, outboxRepo outbox.Repository, sessionTTL time.Duration) *LoginHandler {
	return &LoginHandler{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		outboxRepo:  outboxRepo,
		sessionTTL:  sessionTTL,
	}
}

// Handle executes the LoginCommand. Failed lookups and bad passwords both
// surface as ErrInvalidCredentials so the caller cannot probe usernames.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	account, err := h.accountRepo.FindByUsername(ctx, cmd.Role, cmd.Username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(cmd.Password, account.PasswordHash())
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, domain.ErrInvalidCredentials
	}

	session := domain.NewSession(cmd.Role, account.Username().String(), h.sessionTTL)
	if err := h.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	event := domain.NewSessionStarted(cmd.Role, account.Username().String())
	event.SetMetadata(sharedApplication.NewEventMetadata(ctx, account.Username().String()))
	msg, err := outbox.NewMessage(event)
	if err != nil {
		return nil, err
	}
	if err := h.outboxRepo.Save(ctx, msg); err != nil {
		return nil, err
	}

	return &LoginResult{Session: session}, nil
}
