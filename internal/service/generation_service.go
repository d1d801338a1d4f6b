package service

import (
	"fmt"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/davena/flowcast/flowcast-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultGenerationLookaheadDays is how far ahead of today transactions are
// materialized when no explicit lookahead is configured.
const DefaultGenerationLookaheadDays = 90

// GenerationService materializes pending transactions from active recurrence
// rules. Each run is tagged with a batch id so generated rows can be traced
// back to the run that created them.
type GenerationService struct {
	transactionRepo domain.TransactionRepository
	ruleRepo        domain.RecurrenceRuleRepository
	now             func() time.Time
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(transactionRepo domain.TransactionRepository, ruleRepo domain.RecurrenceRuleRepository) *GenerationService {
	return &GenerationService{
		transactionRepo: transactionRepo,
		ruleRepo:        ruleRepo,
		now:             time.Now,
	}
}

// GenerationStats summarizes one generation run
type GenerationStats struct {
	BatchID             uuid.UUID `json:"batchId"`
	RulesProcessed      int       `json:"rulesProcessed"`
	TransactionsCreated int       `json:"transactionsCreated"`
	Errors              int       `json:"errors"`
}

// GenerateDue materializes transactions for every active rule with
// occurrences between today and today plus lookaheadDays. Occurrences dated
// before today are never back-filled; the walk starts at today regardless of
// how far behind the rule's watermark is. A failing rule is logged and
// counted but does not stop the run.
func (s *GenerationService) GenerateDue(workspaceID int32, lookaheadDays int) (*GenerationStats, error) {
	if lookaheadDays <= 0 {
		lookaheadDays = DefaultGenerationLookaheadDays
	}

	today := util.DateOnly(s.now())
	horizon := today.AddDate(0, 0, lookaheadDays)

	rules, err := s.ruleRepo.ListActiveOverlapping(workspaceID, today, horizon, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list active recurrence rules: %w", err)
	}

	stats := &GenerationStats{BatchID: uuid.New()}
	for _, rule := range rules {
		created, err := s.processRule(rule, today, horizon, stats.BatchID)
		stats.RulesProcessed++
		stats.TransactionsCreated += created
		if err != nil {
			stats.Errors++
			log.Error().
				Err(err).
				Int32("workspace_id", workspaceID).
				Int32("rule_id", rule.ID).
				Msg("Failed to generate transactions for recurrence rule")
		}
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Str("batch_id", stats.BatchID.String()).
		Int("rules_processed", stats.RulesProcessed).
		Int("transactions_created", stats.TransactionsCreated).
		Int("errors", stats.Errors).
		Msg("Recurring transaction generation completed")

	return stats, nil
}

func (s *GenerationService) processRule(rule *domain.RecurrenceRule, today, horizon time.Time, batchID uuid.UUID) (int, error) {
	cursor := util.DateOnly(rule.StartDate)
	if rule.LastGeneratedDate != nil {
		cursor = util.DateOnly(*rule.LastGeneratedDate)
	}

	// Never back-fill: occurrences before today are skipped, the walk
	// resumes from yesterday so an occurrence landing on today still fires.
	if cursor.Before(today) {
		cursor = today.AddDate(0, 0, -1)
	}

	created := 0
	for range maxGenerationSteps {
		next, ok := rule.NextOccurrence(cursor)
		if !ok || next.After(horizon) {
			break
		}

		ruleID := rule.ID
		batch := batchID
		transaction := &domain.Transaction{
			WorkspaceID:      rule.WorkspaceID,
			AccountID:        rule.AccountID,
			Category:         rule.Category,
			Description:      rule.Description,
			GrossAmount:      rule.GrossAmount,
			Type:             rule.Type,
			Status:           domain.StatusPending,
			IsHypothetical:   rule.GenerateAsHypothetical,
			CompetenceDate:   next,
			Source:           domain.SourceRecurring,
			GenerationBatch:  &batch,
			RecurrenceRuleID: &ruleID,
		}
		if _, err := s.transactionRepo.Create(transaction); err != nil {
			return created, fmt.Errorf("failed to create transaction for %s: %w", next.Format("2006-01-02"), err)
		}
		if err := s.ruleRepo.AdvanceWatermark(rule.WorkspaceID, rule.ID, next); err != nil {
			return created, fmt.Errorf("failed to advance watermark to %s: %w", next.Format("2006-01-02"), err)
		}

		created++
		cursor = next
	}

	return created, nil
}

// maxGenerationSteps bounds the per-rule generation walk. A daily rule over
// the default 90 day lookahead needs 90 steps, so the cap only trips on
// misconfigured lookaheads.
const maxGenerationSteps = 2000
