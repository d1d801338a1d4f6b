package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/davena/flowcast/flowcast-backend/internal/middleware"
	"github.com/davena/flowcast/flowcast-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService     *service.AccountService
	calculationService *service.CalculationService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService, calculationService *service.CalculationService) *AccountHandler {
	return &AccountHandler{
		accountService:     accountService,
		calculationService: calculationService,
	}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	Name            string `json:"name"`
	Currency        string `json:"currency,omitempty"`
	InitialBalance  string `json:"initialBalance,omitempty"`
	IncludeInTotals *bool  `json:"includeInTotals,omitempty"`
}

// UpdateAccountRequest represents the update account request body
type UpdateAccountRequest struct {
	Name            *string `json:"name,omitempty"`
	InitialBalance  *string `json:"initialBalance,omitempty"`
	IsActive        *bool   `json:"isActive,omitempty"`
	IncludeInTotals *bool   `json:"includeInTotals,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID              int32  `json:"id"`
	WorkspaceID     int32  `json:"workspaceId"`
	Name            string `json:"name"`
	Currency        string `json:"currency"`
	InitialBalance  string `json:"initialBalance"`
	IsActive        bool   `json:"isActive"`
	IncludeInTotals bool   `json:"includeInTotals"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// AccountBalanceResponse represents one account's computed balance
type AccountBalanceResponse struct {
	AccountID      int32  `json:"accountId"`
	InitialBalance string `json:"initialBalance"`
	CurrentBalance string `json:"currentBalance"`
	Error          string `json:"error,omitempty"`
}

func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:              account.ID,
		WorkspaceID:     account.WorkspaceID,
		Name:            account.Name,
		Currency:        account.Currency,
		InitialBalance:  account.InitialBalance.StringFixed(2),
		IsActive:        account.IsActive,
		IncludeInTotals: account.IncludeInTotals,
		CreatedAt:       account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       account.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	initialBalance := decimal.Zero
	if req.InitialBalance != "" {
		var err error
		initialBalance, err = decimal.NewFromString(req.InitialBalance)
		if err != nil {
			return NewValidationError(c, "Invalid initial balance", []ValidationError{
				{Field: "initialBalance", Message: "Must be a valid decimal number"},
			})
		}
	}

	includeInTotals := true
	if req.IncludeInTotals != nil {
		includeInTotals = *req.IncludeInTotals
	}

	input := service.CreateAccountInput{
		Name:            req.Name,
		Currency:        req.Currency,
		InitialBalance:  initialBalance,
		IncludeInTotals: includeInTotals,
	}

	account, err := h.accountService.CreateAccount(workspaceID, input)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 255 characters or less"},
			})
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to create account")
		return NewInternalError(c, "Failed to create account")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("account_id", account.ID).Str("name", account.Name).Msg("Account created")

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	includeInactive := c.QueryParam("includeInactive") == "true"

	accounts, err := h.accountService.GetAccounts(workspaceID, includeInactive)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get accounts")
		return NewInternalError(c, "Failed to get accounts")
	}

	response := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toAccountResponse(account)
	}

	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.GetAccountByID(workspaceID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("account_id", id).Msg("Failed to get account")
		return NewInternalError(c, "Failed to get account")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// GetBalances handles GET /api/v1/accounts/balances
func (h *AccountHandler) GetBalances(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	includeInactive := c.QueryParam("includeInactive") == "true"

	balances, err := h.calculationService.AccountBalances(workspaceID, includeInactive)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to calculate balances")
		return NewInternalError(c, "Failed to calculate balances")
	}

	response := make([]AccountBalanceResponse, len(balances))
	for i, balance := range balances {
		entry := AccountBalanceResponse{
			AccountID:      balance.AccountID,
			InitialBalance: balance.InitialBalance.StringFixed(2),
			CurrentBalance: balance.CurrentBalance.StringFixed(2),
		}
		if balance.Err != nil {
			entry.Error = "balance computation failed"
		}
		response[i] = entry
	}

	return c.JSON(http.StatusOK, response)
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateAccountInput{
		Name:            req.Name,
		IsActive:        req.IsActive,
		IncludeInTotals: req.IncludeInTotals,
	}
	if req.InitialBalance != nil {
		balance, err := decimal.NewFromString(*req.InitialBalance)
		if err != nil {
			return NewValidationError(c, "Invalid initial balance", []ValidationError{
				{Field: "initialBalance", Message: "Must be a valid decimal number"},
			})
		}
		input.InitialBalance = &balance
	}

	account, err := h.accountService.UpdateAccount(workspaceID, int32(id), input)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 255 characters or less"},
			})
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("account_id", id).Msg("Failed to update account")
		return NewInternalError(c, "Failed to update account")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// DeleteAccount handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := h.accountService.DeleteAccount(workspaceID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("account_id", id).Msg("Failed to delete account")
		return NewInternalError(c, "Failed to delete account")
	}

	log.Info().Int32("workspace_id", workspaceID).Int("account_id", id).Msg("Account deleted")

	return c.NoContent(http.StatusNoContent)
}
