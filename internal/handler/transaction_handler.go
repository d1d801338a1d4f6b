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

const dateLayout = "2006-01-02"

// TransactionHandler handles ledger entry HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	AccountID      int32   `json:"accountId"`
	Category       *string `json:"category,omitempty"`
	Description    string  `json:"description"`
	GrossAmount    string  `json:"grossAmount"`
	Type           string  `json:"type"`
	Status         string  `json:"status,omitempty"`
	IsHypothetical bool    `json:"isHypothetical,omitempty"`
	CompetenceDate string  `json:"competenceDate"`
	PaymentDate    *string `json:"paymentDate,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID               int32   `json:"id"`
	WorkspaceID      int32   `json:"workspaceId"`
	AccountID        int32   `json:"accountId"`
	Category         *string `json:"category,omitempty"`
	Description      string  `json:"description"`
	GrossAmount      string  `json:"grossAmount"`
	Type             string  `json:"type"`
	Status           string  `json:"status"`
	IsHypothetical   bool    `json:"isHypothetical"`
	CompetenceDate   string  `json:"competenceDate"`
	PaymentDate      *string `json:"paymentDate,omitempty"`
	Source           string  `json:"source"`
	GenerationBatch  *string `json:"generationBatch,omitempty"`
	RecurrenceRuleID *int32  `json:"recurrenceRuleId,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents a page of transactions
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:               t.ID,
		WorkspaceID:      t.WorkspaceID,
		AccountID:        t.AccountID,
		Category:         t.Category,
		Description:      t.Description,
		GrossAmount:      t.GrossAmount.StringFixed(2),
		Type:             string(t.Type),
		Status:           string(t.Status),
		IsHypothetical:   t.IsHypothetical,
		CompetenceDate:   t.CompetenceDate.Format(dateLayout),
		Source:           t.Source,
		RecurrenceRuleID: t.RecurrenceRuleID,
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        t.UpdatedAt.Format(time.RFC3339),
	}
	if t.PaymentDate != nil {
		d := t.PaymentDate.Format(dateLayout)
		resp.PaymentDate = &d
	}
	if t.GenerationBatch != nil {
		b := t.GenerationBatch.String()
		resp.GenerationBatch = &b
	}
	return resp
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.GrossAmount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "grossAmount", Message: "Must be a valid decimal number"},
		})
	}

	competenceDate, err := time.Parse(dateLayout, req.CompetenceDate)
	if err != nil {
		return NewValidationError(c, "Invalid competence date", []ValidationError{
			{Field: "competenceDate", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}

	var paymentDate *time.Time
	if req.PaymentDate != nil {
		d, err := time.Parse(dateLayout, *req.PaymentDate)
		if err != nil {
			return NewValidationError(c, "Invalid payment date", []ValidationError{
				{Field: "paymentDate", Message: "Must be a date in YYYY-MM-DD format"},
			})
		}
		paymentDate = &d
	}

	input := service.CreateTransactionInput{
		AccountID:      req.AccountID,
		Category:       req.Category,
		Description:    req.Description,
		GrossAmount:    amount,
		Type:           domain.TransactionType(req.Type),
		Status:         domain.TransactionStatus(req.Status),
		IsHypothetical: req.IsHypothetical,
		CompetenceDate: competenceDate,
		PaymentDate:    paymentDate,
	}

	transaction, err := h.transactionService.CreateTransaction(workspaceID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "description", Message: "Description is required"},
			})
		case errors.Is(err, domain.ErrNameTooLong):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "description", Message: "Description must be 500 characters or less"},
			})
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "grossAmount", Message: "Amount must be at least 0.01"},
			})
		case errors.Is(err, domain.ErrInvalidTransactionType):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Type must be income or expense"},
			})
		case errors.Is(err, domain.ErrInvalidStatus):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "status", Message: "Status must be one of: pending, scheduled, paid, cancelled"},
			})
		case errors.Is(err, domain.ErrAccountNotFound):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "accountId", Message: "Account does not exist"},
			})
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int32("transaction_id", transaction.ID).
		Str("type", string(transaction.Type)).
		Msg("Transaction created")

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	result, err := h.transactionService.GetTransactions(workspaceID, filters)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get transactions")
		return NewInternalError(c, "Failed to get transactions")
	}

	response := PaginatedTransactionsResponse{
		Data:       make([]TransactionResponse, len(result.Data)),
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}
	for i, t := range result.Data {
		response.Data[i] = toTransactionResponse(t)
	}

	return c.JSON(http.StatusOK, response)
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransactionByID(workspaceID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

func parseTransactionFilters(c echo.Context) (*domain.TransactionFilters, error) {
	filters := &domain.TransactionFilters{}

	if v := c.QueryParam("accountId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid accountId filter")
		}
		accountID := int32(id)
		filters.AccountID = &accountID
	}
	if v := c.QueryParam("startDate"); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, errors.New("invalid startDate filter")
		}
		filters.StartDate = &d
	}
	if v := c.QueryParam("endDate"); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, errors.New("invalid endDate filter")
		}
		filters.EndDate = &d
	}
	if v := c.QueryParam("type"); v != "" {
		t := domain.TransactionType(v)
		filters.Type = &t
	}
	if v := c.QueryParam("status"); v != "" {
		s := domain.TransactionStatus(v)
		filters.Status = &s
	}
	if v := c.QueryParam("hypothetical"); v != "" {
		hypothetical := v == "true"
		filters.IsHypothetical = &hypothetical
	}
	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return nil, errors.New("invalid page")
		}
		filters.Page = int32(page)
	}
	if v := c.QueryParam("pageSize"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			return nil, errors.New("invalid pageSize")
		}
		filters.PageSize = int32(size)
	}

	return filters, nil
}
