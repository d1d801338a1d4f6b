package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/davena/flowcast/flowcast-backend/internal/middleware"
	"github.com/davena/flowcast/flowcast-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ForecastHandler handles forecast HTTP requests
type ForecastHandler struct {
	forecastService *service.ForecastService
}

// NewForecastHandler creates a new ForecastHandler
func NewForecastHandler(forecastService *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecastService: forecastService}
}

// ForecastRequest represents the forecast request body
type ForecastRequest struct {
	Months                *int    `json:"months,omitempty"`
	StartDate             *string `json:"startDate,omitempty"`
	AccountIDs            []int32 `json:"accountIds,omitempty"`
	IncludeHypothetical   *bool   `json:"includeHypothetical,omitempty"`
	IncludeRecurring      *bool   `json:"includeRecurring,omitempty"`
	UseHistoricalAverages *bool   `json:"useHistoricalAverages,omitempty"`
	HistoricalMonths      *int    `json:"historicalMonths,omitempty"`
}

// ForecastPeriodResponse represents one forecast period
type ForecastPeriodResponse struct {
	PeriodStart          string `json:"periodStart"`
	PeriodEnd            string `json:"periodEnd"`
	PeriodLabel          string `json:"periodLabel"`
	ProjectedIncome      string `json:"projectedIncome"`
	ProjectedExpenses    string `json:"projectedExpenses"`
	NetCashflow          string `json:"netCashflow"`
	CumulativeBalance    string `json:"cumulativeBalance"`
	HypotheticalIncome   string `json:"hypotheticalIncome"`
	HypotheticalExpenses string `json:"hypotheticalExpenses"`
}

// ForecastResponse represents the forecast response body
type ForecastResponse struct {
	StartDate              string                   `json:"startDate"`
	EndDate                string                   `json:"endDate"`
	Months                 int                      `json:"months"`
	StartingBalance        string                   `json:"startingBalance"`
	EndingBalance          string                   `json:"endingBalance"`
	TotalProjectedIncome   string                   `json:"totalProjectedIncome"`
	TotalProjectedExpenses string                   `json:"totalProjectedExpenses"`
	NetChange              string                   `json:"netChange"`
	Periods                []ForecastPeriodResponse `json:"periods"`
	Warnings               []string                 `json:"warnings"`
}

func toForecastResponse(result *domain.ForecastResult) ForecastResponse {
	response := ForecastResponse{
		StartDate:              result.StartDate.Format(dateLayout),
		EndDate:                result.EndDate.Format(dateLayout),
		Months:                 result.Months,
		StartingBalance:        result.StartingBalance.StringFixed(2),
		EndingBalance:          result.EndingBalance.StringFixed(2),
		TotalProjectedIncome:   result.TotalProjectedIncome.StringFixed(2),
		TotalProjectedExpenses: result.TotalProjectedExpenses.StringFixed(2),
		NetChange:              result.NetChange.StringFixed(2),
		Periods:                make([]ForecastPeriodResponse, len(result.Periods)),
		Warnings:               result.Warnings,
	}
	for i, p := range result.Periods {
		response.Periods[i] = ForecastPeriodResponse{
			PeriodStart:          p.PeriodStart.Format(dateLayout),
			PeriodEnd:            p.PeriodEnd.Format(dateLayout),
			PeriodLabel:          p.PeriodLabel,
			ProjectedIncome:      p.ProjectedIncome.StringFixed(2),
			ProjectedExpenses:    p.ProjectedExpenses.StringFixed(2),
			NetCashflow:          p.NetCashflow.StringFixed(2),
			CumulativeBalance:    p.CumulativeBalance.StringFixed(2),
			HypotheticalIncome:   p.HypotheticalIncome.StringFixed(2),
			HypotheticalExpenses: p.HypotheticalExpenses.StringFixed(2),
		}
	}
	return response
}

// CreateForecast handles POST /api/v1/forecasts
func (h *ForecastHandler) CreateForecast(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req ForecastRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.DefaultForecastInput()
	if req.Months != nil {
		input.Months = *req.Months
	}
	if req.StartDate != nil {
		startDate, err := time.Parse(dateLayout, *req.StartDate)
		if err != nil {
			return NewValidationError(c, "Invalid start date", []ValidationError{
				{Field: "startDate", Message: "Must be a date in YYYY-MM-DD format"},
			})
		}
		input.StartDate = &startDate
	}
	input.AccountIDs = req.AccountIDs
	if req.IncludeHypothetical != nil {
		input.IncludeHypothetical = *req.IncludeHypothetical
	}
	if req.IncludeRecurring != nil {
		input.IncludeRecurring = *req.IncludeRecurring
	}
	if req.UseHistoricalAverages != nil {
		input.UseHistoricalAverages = *req.UseHistoricalAverages
	}
	if req.HistoricalMonths != nil {
		input.HistoricalMonths = *req.HistoricalMonths
	}

	return h.forecast(c, workspaceID, input)
}

// GetForecast handles GET /api/v1/forecasts. Query parsing is lenient:
// unparsable values fall back to defaults instead of rejecting the request.
func (h *ForecastHandler) GetForecast(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	input := service.DefaultForecastInput()

	if v := c.QueryParam("months"); v != "" {
		if months, err := strconv.Atoi(v); err == nil {
			input.Months = months
		}
	}
	if v := c.QueryParam("historicalMonths"); v != "" {
		if months, err := strconv.Atoi(v); err == nil {
			input.HistoricalMonths = months
		}
	}
	if v := c.QueryParam("startDate"); v != "" {
		if startDate, err := time.Parse(dateLayout, v); err == nil {
			input.StartDate = &startDate
		}
	}
	if v := c.QueryParam("accountIds"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return NewValidationError(c, "Invalid accountIds", []ValidationError{
					{Field: "accountIds", Message: "Must be a comma-separated list of integers"},
				})
			}
			input.AccountIDs = append(input.AccountIDs, int32(id))
		}
	}
	if v := c.QueryParam("includeHypothetical"); v != "" {
		input.IncludeHypothetical = v == "true"
	}
	if v := c.QueryParam("includeRecurring"); v != "" {
		input.IncludeRecurring = v == "true"
	}
	if v := c.QueryParam("useHistoricalAverages"); v != "" {
		input.UseHistoricalAverages = v == "true"
	}

	return h.forecast(c, workspaceID, input)
}

func (h *ForecastHandler) forecast(c echo.Context, workspaceID int32, input service.ForecastInput) error {
	result, err := h.forecastService.Forecast(workspaceID, input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidForecastMonths) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "months", Message: "Months must be between 1 and 24"},
			})
		}
		if errors.Is(err, domain.ErrInvalidHistoryMonths) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "historicalMonths", Message: "Historical months must be between 1 and 24"},
			})
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to generate forecast")
		return NewInternalError(c, "Failed to generate forecast")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int("months", result.Months).
		Int("warnings", len(result.Warnings)).
		Msg("Forecast generated")

	return c.JSON(http.StatusOK, toForecastResponse(result))
}
