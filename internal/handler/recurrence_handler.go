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

// RecurrenceHandler handles recurrence rule HTTP requests
type RecurrenceHandler struct {
	recurrenceService *service.RecurrenceService
	generationService *service.GenerationService
}

// NewRecurrenceHandler creates a new RecurrenceHandler
func NewRecurrenceHandler(recurrenceService *service.RecurrenceService, generationService *service.GenerationService) *RecurrenceHandler {
	return &RecurrenceHandler{
		recurrenceService: recurrenceService,
		generationService: generationService,
	}
}

// CreateRuleRequest represents the create rule request body
type CreateRuleRequest struct {
	AccountID              int32   `json:"accountId"`
	Category               *string `json:"category,omitempty"`
	Description            string  `json:"description"`
	GrossAmount            string  `json:"grossAmount"`
	Type                   string  `json:"type"`
	Frequency              string  `json:"frequency"`
	DayOfMonth             *int    `json:"dayOfMonth,omitempty"`
	StartDate              string  `json:"startDate"`
	EndDate                *string `json:"endDate,omitempty"`
	GenerateAsHypothetical bool    `json:"generateAsHypothetical,omitempty"`
}

// UpdateRuleRequest represents the update rule request body
type UpdateRuleRequest struct {
	Description            *string `json:"description,omitempty"`
	GrossAmount            *string `json:"grossAmount,omitempty"`
	Frequency              *string `json:"frequency,omitempty"`
	DayOfMonth             *int    `json:"dayOfMonth,omitempty"`
	EndDate                *string `json:"endDate,omitempty"`
	IsActive               *bool   `json:"isActive,omitempty"`
	GenerateAsHypothetical *bool   `json:"generateAsHypothetical,omitempty"`
}

// GenerateRequest represents the generate request body
type GenerateRequest struct {
	LookaheadDays int `json:"lookaheadDays,omitempty"`
}

// RuleResponse represents a recurrence rule in API responses
type RuleResponse struct {
	ID                     int32   `json:"id"`
	WorkspaceID            int32   `json:"workspaceId"`
	AccountID              int32   `json:"accountId"`
	Category               *string `json:"category,omitempty"`
	Description            string  `json:"description"`
	GrossAmount            string  `json:"grossAmount"`
	Type                   string  `json:"type"`
	Frequency              string  `json:"frequency"`
	DayOfMonth             *int    `json:"dayOfMonth,omitempty"`
	StartDate              string  `json:"startDate"`
	EndDate                *string `json:"endDate,omitempty"`
	LastGeneratedDate      *string `json:"lastGeneratedDate,omitempty"`
	IsActive               bool    `json:"isActive"`
	GenerateAsHypothetical bool    `json:"generateAsHypothetical"`
	CreatedAt              string  `json:"createdAt"`
	UpdatedAt              string  `json:"updatedAt"`
}

func toRuleResponse(r *domain.RecurrenceRule) RuleResponse {
	resp := RuleResponse{
		ID:                     r.ID,
		WorkspaceID:            r.WorkspaceID,
		AccountID:              r.AccountID,
		Category:               r.Category,
		Description:            r.Description,
		GrossAmount:            r.GrossAmount.StringFixed(2),
		Type:                   string(r.Type),
		Frequency:              string(r.Frequency),
		DayOfMonth:             r.DayOfMonth,
		StartDate:              r.StartDate.Format(dateLayout),
		IsActive:               r.IsActive,
		GenerateAsHypothetical: r.GenerateAsHypothetical,
		CreatedAt:              r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              r.UpdatedAt.Format(time.RFC3339),
	}
	if r.EndDate != nil {
		d := r.EndDate.Format(dateLayout)
		resp.EndDate = &d
	}
	if r.LastGeneratedDate != nil {
		d := r.LastGeneratedDate.Format(dateLayout)
		resp.LastGeneratedDate = &d
	}
	return resp
}

func ruleValidationResponse(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description is required"},
		}), true
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description must be 500 characters or less"},
		}), true
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "grossAmount", Message: "Amount must be at least 0.01"},
		}), true
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be income or expense"},
		}), true
	case errors.Is(err, domain.ErrInvalidFrequency):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "frequency", Message: "Frequency must be one of: daily, weekly, biweekly, monthly, bimonthly, quarterly, semiannual, annual"},
		}), true
	case errors.Is(err, domain.ErrInvalidDayOfMonth):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "dayOfMonth", Message: "Day of month must be between 1 and 31"},
		}), true
	case errors.Is(err, domain.ErrInvalidDateRange):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "endDate", Message: "End date must not be before start date"},
		}), true
	case errors.Is(err, domain.ErrAccountNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account does not exist"},
		}), true
	}
	return nil, false
}

// CreateRule handles POST /api/v1/recurrence-rules
func (h *RecurrenceHandler) CreateRule(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateRuleRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.GrossAmount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "grossAmount", Message: "Must be a valid decimal number"},
		})
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return NewValidationError(c, "Invalid start date", []ValidationError{
			{Field: "startDate", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}

	var endDate *time.Time
	if req.EndDate != nil {
		d, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			return NewValidationError(c, "Invalid end date", []ValidationError{
				{Field: "endDate", Message: "Must be a date in YYYY-MM-DD format"},
			})
		}
		endDate = &d
	}

	input := service.CreateRuleInput{
		AccountID:              req.AccountID,
		Category:               req.Category,
		Description:            req.Description,
		GrossAmount:            amount,
		Type:                   domain.TransactionType(req.Type),
		Frequency:              domain.Frequency(req.Frequency),
		DayOfMonth:             req.DayOfMonth,
		StartDate:              startDate,
		EndDate:                endDate,
		GenerateAsHypothetical: req.GenerateAsHypothetical,
	}

	rule, err := h.recurrenceService.CreateRule(workspaceID, input)
	if err != nil {
		if resp, handled := ruleValidationResponse(c, err); handled {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to create recurrence rule")
		return NewInternalError(c, "Failed to create recurrence rule")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int32("rule_id", rule.ID).
		Str("frequency", string(rule.Frequency)).
		Msg("Recurrence rule created")

	return c.JSON(http.StatusCreated, toRuleResponse(rule))
}

// GetRules handles GET /api/v1/recurrence-rules
func (h *RecurrenceHandler) GetRules(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var activeOnly *bool
	if v := c.QueryParam("active"); v != "" {
		active := v == "true"
		activeOnly = &active
	}

	rules, err := h.recurrenceService.GetRules(workspaceID, activeOnly)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get recurrence rules")
		return NewInternalError(c, "Failed to get recurrence rules")
	}

	response := make([]RuleResponse, len(rules))
	for i, rule := range rules {
		response[i] = toRuleResponse(rule)
	}

	return c.JSON(http.StatusOK, response)
}

// GetRule handles GET /api/v1/recurrence-rules/:id
func (h *RecurrenceHandler) GetRule(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid rule ID", nil)
	}

	rule, err := h.recurrenceService.GetRuleByID(workspaceID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrRecurrenceRuleNotFound) {
			return NewNotFoundError(c, "Recurrence rule not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("rule_id", id).Msg("Failed to get recurrence rule")
		return NewInternalError(c, "Failed to get recurrence rule")
	}

	return c.JSON(http.StatusOK, toRuleResponse(rule))
}

// UpdateRule handles PUT /api/v1/recurrence-rules/:id
func (h *RecurrenceHandler) UpdateRule(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid rule ID", nil)
	}

	var req UpdateRuleRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateRuleInput{
		Description:            req.Description,
		DayOfMonth:             req.DayOfMonth,
		IsActive:               req.IsActive,
		GenerateAsHypothetical: req.GenerateAsHypothetical,
	}
	if req.GrossAmount != nil {
		amount, err := decimal.NewFromString(*req.GrossAmount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "grossAmount", Message: "Must be a valid decimal number"},
			})
		}
		input.GrossAmount = &amount
	}
	if req.Frequency != nil {
		frequency := domain.Frequency(*req.Frequency)
		input.Frequency = &frequency
	}
	if req.EndDate != nil {
		d, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			return NewValidationError(c, "Invalid end date", []ValidationError{
				{Field: "endDate", Message: "Must be a date in YYYY-MM-DD format"},
			})
		}
		input.EndDate = &d
	}

	rule, err := h.recurrenceService.UpdateRule(workspaceID, int32(id), input)
	if err != nil {
		if errors.Is(err, domain.ErrRecurrenceRuleNotFound) {
			return NewNotFoundError(c, "Recurrence rule not found")
		}
		if resp, handled := ruleValidationResponse(c, err); handled {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("rule_id", id).Msg("Failed to update recurrence rule")
		return NewInternalError(c, "Failed to update recurrence rule")
	}

	return c.JSON(http.StatusOK, toRuleResponse(rule))
}

// DeleteRule handles DELETE /api/v1/recurrence-rules/:id
func (h *RecurrenceHandler) DeleteRule(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid rule ID", nil)
	}

	if err := h.recurrenceService.DeleteRule(workspaceID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrRecurrenceRuleNotFound) {
			return NewNotFoundError(c, "Recurrence rule not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("rule_id", id).Msg("Failed to delete recurrence rule")
		return NewInternalError(c, "Failed to delete recurrence rule")
	}

	log.Info().Int32("workspace_id", workspaceID).Int("rule_id", id).Msg("Recurrence rule deleted")

	return c.NoContent(http.StatusNoContent)
}

// Generate handles POST /api/v1/recurrence-rules/generate
func (h *RecurrenceHandler) Generate(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	stats, err := h.generationService.GenerateDue(workspaceID, req.LookaheadDays)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to generate recurring transactions")
		return NewInternalError(c, "Failed to generate recurring transactions")
	}

	return c.JSON(http.StatusOK, stats)
}
