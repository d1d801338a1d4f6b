package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/davena/flowcast/flowcast-backend/internal/service"
	"github.com/davena/flowcast/flowcast-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func newTransactionHandler() (*TransactionHandler, *testutil.MockAccountRepository, *testutil.MockTransactionRepository) {
	accountRepo := testutil.NewMockAccountRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	accountRepo.AddAccount(&domain.Account{
		ID:          1,
		WorkspaceID: 1,
		Name:        "Checking",
		IsActive:    true,
	})
	handler := NewTransactionHandler(service.NewTransactionService(transactionRepo, accountRepo))
	return handler, accountRepo, transactionRepo
}

func TestCreateTransaction_Success(t *testing.T) {
	e := echo.New()
	handler, _, _ := newTransactionHandler()

	body := `{
		"accountId": 1,
		"description": "Office rent",
		"grossAmount": "1200.00",
		"type": "expense",
		"competenceDate": "2025-03-01"
	}`
	c, rec := newJSONRequest(e, http.MethodPost, "/api/v1/transactions", body, 1)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.GrossAmount != "1200.00" {
		t.Errorf("Expected gross amount 1200.00, got %s", response.GrossAmount)
	}
	if response.Status != string(domain.StatusPending) {
		t.Errorf("Expected default status pending, got %s", response.Status)
	}
	if response.Source != domain.SourceManual {
		t.Errorf("Expected source manual, got %s", response.Source)
	}
	if response.CompetenceDate != "2025-03-01" {
		t.Errorf("Expected competence date 2025-03-01, got %s", response.CompetenceDate)
	}
}

func TestCreateTransaction_ValidationErrors(t *testing.T) {
	e := echo.New()
	handler, _, _ := newTransactionHandler()

	tests := []struct {
		name string
		body string
	}{
		{"missing description", `{"accountId": 1, "grossAmount": "10.00", "type": "income", "competenceDate": "2025-03-01"}`},
		{"bad amount", `{"accountId": 1, "description": "x", "grossAmount": "nope", "type": "income", "competenceDate": "2025-03-01"}`},
		{"zero amount", `{"accountId": 1, "description": "x", "grossAmount": "0.00", "type": "income", "competenceDate": "2025-03-01"}`},
		{"bad type", `{"accountId": 1, "description": "x", "grossAmount": "10.00", "type": "transfer", "competenceDate": "2025-03-01"}`},
		{"bad status", `{"accountId": 1, "description": "x", "grossAmount": "10.00", "type": "income", "status": "maybe", "competenceDate": "2025-03-01"}`},
		{"bad date", `{"accountId": 1, "description": "x", "grossAmount": "10.00", "type": "income", "competenceDate": "01/03/2025"}`},
		{"unknown account", `{"accountId": 42, "description": "x", "grossAmount": "10.00", "type": "income", "competenceDate": "2025-03-01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONRequest(e, http.MethodPost, "/api/v1/transactions", tt.body, 1)
			if err := handler.CreateTransaction(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetTransactions_Pagination(t *testing.T) {
	e := echo.New()
	handler, _, transactionRepo := newTransactionHandler()

	for i := 0; i < 5; i++ {
		transactionRepo.AddTransaction(&domain.Transaction{
			WorkspaceID:    1,
			AccountID:      1,
			Description:    fmt.Sprintf("entry %d", i),
			GrossAmount:    decimal.NewFromInt(10),
			Type:           domain.TransactionTypeExpense,
			Status:         domain.StatusPaid,
			CompetenceDate: mustDate(t, "2025-01-10"),
		})
	}

	c, rec := newJSONRequest(e, http.MethodGet, "/api/v1/transactions?page=2&pageSize=2", "", 1)
	if err := handler.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response PaginatedTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.TotalItems != 5 {
		t.Errorf("Expected 5 total items, got %d", response.TotalItems)
	}
	if response.Page != 2 || response.PageSize != 2 {
		t.Errorf("Expected page 2 size 2, got page %d size %d", response.Page, response.PageSize)
	}
	if len(response.Data) != 2 {
		t.Errorf("Expected 2 items on page, got %d", len(response.Data))
	}
	if response.TotalPages != 3 {
		t.Errorf("Expected 3 total pages, got %d", response.TotalPages)
	}
}

func TestGetTransactions_Filters(t *testing.T) {
	e := echo.New()
	handler, _, transactionRepo := newTransactionHandler()

	transactionRepo.AddTransaction(&domain.Transaction{
		WorkspaceID:    1,
		AccountID:      1,
		Description:    "salary",
		GrossAmount:    decimal.NewFromInt(100),
		Type:           domain.TransactionTypeIncome,
		Status:         domain.StatusPaid,
		CompetenceDate: mustDate(t, "2025-01-10"),
	})
	transactionRepo.AddTransaction(&domain.Transaction{
		WorkspaceID:    1,
		AccountID:      1,
		Description:    "rent",
		GrossAmount:    decimal.NewFromInt(50),
		Type:           domain.TransactionTypeExpense,
		Status:         domain.StatusPending,
		CompetenceDate: mustDate(t, "2025-02-10"),
	})

	c, rec := newJSONRequest(e, http.MethodGet, "/api/v1/transactions?type=income&startDate=2025-01-01&endDate=2025-01-31", "", 1)
	if err := handler.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response PaginatedTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Data) != 1 {
		t.Fatalf("Expected 1 filtered item, got %d", len(response.Data))
	}
	if response.Data[0].Description != "salary" {
		t.Errorf("Expected salary, got %s", response.Data[0].Description)
	}
}

func TestGetTransactions_InvalidDateFilter(t *testing.T) {
	e := echo.New()
	handler, _, _ := newTransactionHandler()

	c, rec := newJSONRequest(e, http.MethodGet, "/api/v1/transactions?startDate=yesterday", "", 1)
	if err := handler.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetTransaction_WorkspaceIsolation(t *testing.T) {
	e := echo.New()
	handler, _, transactionRepo := newTransactionHandler()

	created, err := transactionRepo.Create(&domain.Transaction{
		WorkspaceID:    2,
		AccountID:      9,
		Description:    "foreign",
		GrossAmount:    decimal.NewFromInt(10),
		Type:           domain.TransactionTypeIncome,
		Status:         domain.StatusPaid,
		CompetenceDate: mustDate(t, "2025-01-10"),
	})
	if err != nil {
		t.Fatalf("Failed to seed transaction: %v", err)
	}

	c, rec := newJSONRequest(e, http.MethodGet, "/api/v1/transactions/1", "", 1)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", created.ID))

	if err := handler.GetTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
