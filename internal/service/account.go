package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/workguide/guide-server/internal/domain"
	"github.com/workguide/guide-server/internal/id"
	"github.com/workguide/guide-server/internal/store"
	"github.com/workguide/guide-server/internal/validation"
)

// AccountService mirrors identity-provider accounts by email.
type AccountService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(store *store.Store, validator *validation.Validator, logger *slog.Logger) *AccountService {
	return &AccountService{store: store, validator: validator, logger: logger}
}

// AccountInput identifies an account by email.
type AccountInput struct {
	Email string `json:"email" yaml:"email" validate:"required,email"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty" validate:"max=200"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty" validate:"max=50"`
}

// Get returns an account by ID.
func (s *AccountService) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	a, err := s.store.Accounts.Get(ctx, accountID)
	if err != nil {
		return nil, translate(err, "account %s not found", accountID)
	}
	return a, nil
}

// List returns every account.
func (s *AccountService) List(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.store.Accounts.All(ctx)
	return accounts, translate(err, "list accounts")
}

// GetOrCreate returns the account with the input's email, creating it with
// zero visits if absent. An existing account is returned unchanged.
func (s *AccountService) GetOrCreate(ctx context.Context, input AccountInput) (*domain.Account, bool, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, false, err
	}

	for range getOrCreateAttempts {
		existing, err := s.store.Accounts.GetByIndex(ctx, "email", input.Email)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, false, translate(err, "look up account %q", input.Email)
		}

		accountID, err := id.Generate(id.Account)
		if err != nil {
			return nil, false, err
		}
		now := time.Now()
		a := &domain.Account{
			ID:        accountID,
			Email:     strings.TrimSpace(input.Email),
			Name:      strings.TrimSpace(input.Name),
			Role:      input.Role,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.store.Accounts.Create(ctx, a.ID, a)
		if err == nil {
			s.logger.Info("account created", "account_id", a.ID, "email", a.Email)
			return a, true, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return nil, false, translate(err, "create account %q", input.Email)
		}
	}

	return nil, false, translate(store.ErrConflict, "account %q is being created concurrently", input.Email)
}
