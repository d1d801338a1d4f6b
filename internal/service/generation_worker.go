package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// GenerationWorker is a background worker that periodically materializes
// recurring transactions for every known workspace.
type GenerationWorker struct {
	generationService *GenerationService
	workspaceIDs      []int32
	logger            zerolog.Logger
	interval          time.Duration
	lookaheadDays     int
	stopCh            chan struct{}
	doneCh            chan struct{}
	mu                sync.Mutex
	running           bool
}

// GenerationWorkerConfig holds configuration for the generation worker
type GenerationWorkerConfig struct {
	Interval      time.Duration // How often to run generation
	LookaheadDays int           // How many days ahead to materialize
}

// DefaultGenerationWorkerConfig returns sensible defaults
func DefaultGenerationWorkerConfig() GenerationWorkerConfig {
	return GenerationWorkerConfig{
		Interval:      6 * time.Hour,
		LookaheadDays: DefaultGenerationLookaheadDays,
	}
}

// NewGenerationWorker creates a new generation worker
func NewGenerationWorker(
	generationService *GenerationService,
	workspaceIDs []int32,
	logger zerolog.Logger,
	config GenerationWorkerConfig,
) *GenerationWorker {
	if config.Interval <= 0 {
		config.Interval = 6 * time.Hour
	}
	if config.LookaheadDays <= 0 {
		config.LookaheadDays = DefaultGenerationLookaheadDays
	}

	return &GenerationWorker{
		generationService: generationService,
		workspaceIDs:      workspaceIDs,
		logger:            logger.With().Str("component", "generation_worker").Logger(),
		interval:          config.Interval,
		lookaheadDays:     config.LookaheadDays,
		stopCh:            make(chan struct{}),
		doneCh:            make(chan struct{}),
	}
}

// Start begins the background generation loop
func (w *GenerationWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Int("lookahead_days", w.lookaheadDays).
		Int("workspaces", len(w.workspaceIDs)).
		Msg("Starting generation worker")

	go w.run(ctx)
}

// Stop gracefully stops the generation worker
func (w *GenerationWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping generation worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Generation worker stopped")
}

// run is the main loop for the generation worker
func (w *GenerationWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Run immediately on startup
	w.generateAllWorkspaces(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-w.stopCh:
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-ticker.C:
			w.generateAllWorkspaces(ctx)
		}
	}
}

// generateAllWorkspaces runs one generation pass over every workspace
func (w *GenerationWorker) generateAllWorkspaces(ctx context.Context) {
	w.logger.Debug().Msg("Starting generation pass for all workspaces")
	startTime := time.Now()

	totalCreated := 0
	totalErrors := 0

	for _, workspaceID := range w.workspaceIDs {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Context cancelled, stopping generation pass")
			return
		case <-w.stopCh:
			w.logger.Info().Msg("Stop signal received, stopping generation pass")
			return
		default:
		}

		stats, err := w.generationService.GenerateDue(workspaceID, w.lookaheadDays)
		if err != nil {
			w.logger.Error().
				Err(err).
				Int32("workspace_id", workspaceID).
				Msg("Failed to generate recurring transactions for workspace")
			totalErrors++
			continue
		}

		totalCreated += stats.TransactionsCreated
		totalErrors += stats.Errors

		if stats.TransactionsCreated > 0 {
			w.logger.Debug().
				Int32("workspace_id", workspaceID).
				Str("batch_id", stats.BatchID.String()).
				Int("created", stats.TransactionsCreated).
				Msg("Generated recurring transactions for workspace")
		}
	}

	elapsed := time.Since(startTime)
	w.logger.Info().
		Int("workspaces", len(w.workspaceIDs)).
		Int("total_created", totalCreated).
		Int("total_errors", totalErrors).
		Dur("elapsed", elapsed).
		Msg("Completed generation pass")
}

// GenerateWorkspace manually triggers generation for a specific workspace.
// Called when a recurrence rule is created or updated.
func (w *GenerationWorker) GenerateWorkspace(workspaceID int32) (*GenerationStats, error) {
	w.logger.Debug().Int32("workspace_id", workspaceID).Msg("Manual generation triggered")
	return w.generationService.GenerateDue(workspaceID, w.lookaheadDays)
}

// IsRunning returns whether the worker is currently running
func (w *GenerationWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
