package commands

import (
	"context"

	"github.com/alexedwards/argon2id"
	"github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/vaxsched/internal/shared/application"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/outbox"
)

// RegisterAccountCommand contains the data needed to create an account.
type RegisterAccountCommand struct {
	Role     domain.Role
	Username string
	Password string
}

// RegisterAccountResult contains the result of account registration.
type RegisterAccountResult struct {
	Role     domain.Role
	Username string
}

// RegisterAccountHandler handles the RegisterAccountCommand.
type RegisterAccountHandler struct {
	accountRepo domain.AccountRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
}

// NewRegisterAccountHandler creates a new RegisterAccountHandler.
func NewRegisterAccountHandler(accountRepo domain.AccountRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
	}
}

// Handle executes the RegisterAccountCommand.
func (h *RegisterAccountHandler) Handle(ctx context.Context, cmd RegisterAccountCommand) (*RegisterAccountResult, error) {
	username, err := domain.NewUsername(cmd.Username)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePasswordStrength(cmd.Password); err != nil {
		return nil, err
	}

	hash, err := argon2id.CreateHash(cmd.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, err
	}

	account := domain.NewAccount(cmd.Role, username, hash)

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.accountRepo.Save(txCtx, account); err != nil {
			return err
		}

		events := account.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, username.String()))

		msgs := make([]*outbox.Message, 0, len(events))
		for _, event := range events {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return nil, err
	}

	account.ClearDomainEvents()

	return &RegisterAccountResult{Role: account.Role(), Username: username.String()}, nil
}
