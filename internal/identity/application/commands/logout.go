package commands

import (
	"context"

	"github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/vaxsched/internal/shared/application"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/outbox"
)

// LogoutCommand ends the session identified by the token.
type LogoutCommand struct {
	Token string
}

// LogoutHandler handles the LogoutCommand.
type LogoutHandler struct {
	sessionRepo domain.SessionRepository
	outboxRepo  outbox.Repository
}

// NewLogoutHandler creates a new LogoutHandler.
func NewLogoutHandler(sessionRepo domain.SessionRepository, outboxRepo outbox.Repository) *LogoutHandler {
	return &LogoutHandler{
		sessionRepo: sessionRepo,
		outboxRepo:  outboxRepo,
	}
}

// Handle executes the LogoutCommand.
func (h *LogoutHandler) Handle(ctx context.Context, cmd LogoutCommand) error {
	session, err := h.sessionRepo.FindByToken(ctx, cmd.Token)
	if err != nil {
		return err
	}

	if err := h.sessionRepo.Delete(ctx, session.Token()); err != nil {
		return err
	}

	event := domain.NewSessionEnded(session.Role(), session.Username())
	event.SetMetadata(sharedApplication.NewEventMetadata(ctx, session.Username()))
	msg, err := outbox.NewMessage(event)
	if err != nil {
		return err
	}
	return h.outboxRepo.Save(ctx, msg)
}
