package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/workguide/guide-server/internal/domain"
	"github.com/workguide/guide-server/internal/service"
)

func (s *Server) registerAccountRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAccounts",
		Method:      http.MethodGet,
		Path:        "/api/v1/accounts",
		Summary:     "List accounts",
		Description: "Returns every account mirrored from the identity provider",
		Tags:        []string{"Accounts"},
	}, s.handleListAccounts)

	huma.Register(s.api, huma.Operation{
		OperationID: "ensureAccount",
		Method:      http.MethodPost,
		Path:        "/api/v1/accounts",
		Summary:     "Ensure account",
		Description: "Returns the account with the given email, creating it if absent",
		Tags:        []string{"Accounts"},
	}, s.handleEnsureAccount)
}

// === DTOs ===

// EnsureAccountInput wraps the account request for Huma.
type EnsureAccountInput struct {
	Body service.AccountInput
}

// AccountOutput wraps one account. Status is 201 when it was created.
type AccountOutput struct {
	Status int
	Body   *domain.Account
}

// AccountListResponse contains all accounts.
type AccountListResponse struct {
	Accounts []*domain.Account `json:"accounts"`
}

// AccountListOutput wraps the account list for Huma.
type AccountListOutput struct {
	Body AccountListResponse
}

// === Handlers ===

func (s *Server) handleListAccounts(ctx context.Context, _ *struct{}) (*AccountListOutput, error) {
	accounts, err := s.services.Account.List(ctx)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	return &AccountListOutput{Body: AccountListResponse{Accounts: accounts}}, nil
}

func (s *Server) handleEnsureAccount(ctx context.Context, input *EnsureAccountInput) (*AccountOutput, error) {
	a, created, err := s.services.Account.GetOrCreate(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return &AccountOutput{Status: status, Body: a}, nil
}
