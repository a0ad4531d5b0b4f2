package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	identityQueries "github.com/felixgeelhaar/vaxsched/internal/identity/application/queries"
	identityDomain "github.com/felixgeelhaar/vaxsched/internal/identity/domain"
)

// readSessionToken returns the persisted session token, or "" when no
// session file exists.
func readSessionToken(app *App) (string, error) {
	data, err := os.ReadFile(app.SessionFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func writeSessionToken(app *App, token string) error {
	if err := os.MkdirAll(filepath.Dir(app.SessionFilePath), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(app.SessionFilePath, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func clearSessionToken(app *App) error {
	if err := os.Remove(app.SessionFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// currentSession resolves the persisted token to a live session. A stale
// token file left behind by an expired session is cleaned up on the way.
func currentSession(ctx context.Context, app *App) (*identityDomain.Session, error) {
	token, err := readSessionToken(app)
	if err != nil {
		return nil, err
	}

	session, err := app.CurrentSessionHandler.Handle(ctx, identityQueries.CurrentSessionQuery{Token: token})
	if err != nil {
		if errors.Is(err, identityDomain.ErrSessionExpired) || errors.Is(err, identityDomain.ErrSessionNotFound) {
			_ = clearSessionToken(app)
		}
		return nil, err
	}
	return session, nil
}

// requireRole resolves the current session and enforces the given role.
func requireRole(ctx context.Context, app *App, role identityDomain.Role) (*identityDomain.Session, error) {
	session, err := currentSession(ctx, app)
	if err != nil {
		return nil, err
	}
	if session.Role() != role {
		return nil, fmt.Errorf("this command requires a %s login", role)
	}
	return session, nil
}

// ensureLoggedOut rejects a login attempt while another session is active.
func ensureLoggedOut(ctx context.Context, app *App) error {
	_, err := currentSession(ctx, app)
	if err == nil {
		return identityDomain.ErrAlreadyLoggedIn
	}
	if errors.Is(err, identityDomain.ErrNotLoggedIn) ||
		errors.Is(err, identityDomain.ErrSessionExpired) ||
		errors.Is(err, identityDomain.ErrSessionNotFound) {
		return nil
	}
	return err
}
