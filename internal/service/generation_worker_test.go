package service

import (
	"context"
	"testing"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGenerationWorker() (*GenerationWorker, *testutil.MockTransactionRepository, *testutil.MockRecurrenceRuleRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	ruleRepo := testutil.NewMockRecurrenceRuleRepository()

	generationService := NewGenerationService(transactionRepo, ruleRepo)

	logger := zerolog.Nop() // Silent logger for tests

	config := GenerationWorkerConfig{
		Interval:      100 * time.Millisecond, // Fast interval for testing
		LookaheadDays: 30,
	}

	worker := NewGenerationWorker(generationService, []int32{testWorkspaceID}, logger, config)
	return worker, transactionRepo, ruleRepo
}

func TestGenerationWorker_NewGenerationWorker(t *testing.T) {
	worker, _, _ := setupGenerationWorker()

	assert.NotNil(t, worker)
	assert.Equal(t, 100*time.Millisecond, worker.interval)
	assert.Equal(t, 30, worker.lookaheadDays)
	assert.False(t, worker.IsRunning())
}

func TestGenerationWorker_DefaultConfig(t *testing.T) {
	config := DefaultGenerationWorkerConfig()

	assert.Equal(t, 6*time.Hour, config.Interval)
	assert.Equal(t, DefaultGenerationLookaheadDays, config.LookaheadDays)
}

func TestGenerationWorker_StartStop(t *testing.T) {
	worker, _, _ := setupGenerationWorker()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	assert.True(t, worker.IsRunning())

	worker.Stop()

	assert.False(t, worker.IsRunning())
}

func TestGenerationWorker_StartTwice(t *testing.T) {
	worker, _, _ := setupGenerationWorker()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Starting twice should be idempotent
	worker.Start(ctx)
	worker.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	assert.True(t, worker.IsRunning())

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestGenerationWorker_StopWithoutStart(t *testing.T) {
	worker, _, _ := setupGenerationWorker()

	// Stop without starting should not panic
	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestGenerationWorker_ContextCancellation(t *testing.T) {
	worker, _, _ := setupGenerationWorker()

	ctx, cancel := context.WithCancel(context.Background())

	worker.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	assert.True(t, worker.IsRunning())

	cancel()
	time.Sleep(50 * time.Millisecond)

	assert.False(t, worker.IsRunning())
}

func TestGenerationWorker_GenerateWorkspace(t *testing.T) {
	worker, transactionRepo, ruleRepo := setupGenerationWorker()
	worker.generationService.now = func() time.Time { return date(2025, time.February, 10) }

	// Horizon is 30 days out, so only the March 1st occurrence fits.
	ruleRepo.AddRule(monthlyRule("100.00", 1))

	stats, err := worker.GenerateWorkspace(testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TransactionsCreated)
	assert.Len(t, transactionRepo.Transactions, 1)
}

func TestGenerationWorker_BackgroundPassGenerates(t *testing.T) {
	worker, transactionRepo, ruleRepo := setupGenerationWorker()
	worker.generationService.now = func() time.Time { return date(2025, time.February, 10) }

	ruleRepo.AddRule(monthlyRule("100.00", 1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	worker.Stop()

	assert.GreaterOrEqual(t, len(transactionRepo.Transactions), 1)
}

func TestGenerationWorker_DefaultsForInvalidConfig(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	ruleRepo := testutil.NewMockRecurrenceRuleRepository()

	generationService := NewGenerationService(transactionRepo, ruleRepo)
	logger := zerolog.Nop()

	config := GenerationWorkerConfig{
		Interval:      0,
		LookaheadDays: -1,
	}

	worker := NewGenerationWorker(generationService, []int32{testWorkspaceID}, logger, config)

	assert.Equal(t, 6*time.Hour, worker.interval)
	assert.Equal(t, DefaultGenerationLookaheadDays, worker.lookaheadDays)
}
