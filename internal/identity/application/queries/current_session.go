package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/identity/domain"
)

// CurrentSessionQuery resolves a token to its live session.
type CurrentSessionQuery struct {
	Token string
}

// CurrentSessionHandler handles the CurrentSessionQuery.
type CurrentSessionHandler struct {
	sessionRepo domain.SessionRepository
}

// NewCurrentSessionHandler creates a new CurrentSessionHandler.
func NewCurrentSessionHandler(sessionRepo domain.SessionRepository) *CurrentSessionHandler {
	return &CurrentSessionHandler{sessionRepo: sessionRepo}
}

// Handle returns the session for the token. Expired sessions are removed
// and reported as ErrSessionExpired.
func (h *CurrentSessionHandler) Handle(ctx context.Context, query CurrentSessionQuery) (*domain.Session, error) {
	if query.Token == "" {
		return nil, domain.ErrNotLoggedIn
	}

	session, err := h.sessionRepo.FindByToken(ctx, query.Token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired(time.Now().UTC()) {
		_ = h.sessionRepo.Delete(ctx, session.Token())
		return nil, domain.ErrSessionExpired
	}

	return session, nil
}
