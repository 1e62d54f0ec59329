package service

import (
	"context"
	"time"

	"app/internal/repository"

	"github.com/rs/zerolog"
)

// RefundWorker drains the credit refund outbox: compensating writes that
// failed inline are retried here until they succeed or exhaust their attempt
// budget, at which point the entry is abandoned and logged for operators.
type RefundWorker struct {
	profileRepo  repository.ProfileRepository
	outbox       repository.RefundOutboxRepository
	pollInterval time.Duration
	maxAttempts  int
	batchSize    int
	logger       zerolog.Logger
}

// NewRefundWorker creates a RefundWorker.
func NewRefundWorker(
	profileRepo repository.ProfileRepository,
	outbox repository.RefundOutboxRepository,
	pollInterval time.Duration,
	maxAttempts, batchSize int,
	logger zerolog.Logger,
) *RefundWorker {
	return &RefundWorker{
		profileRepo:  profileRepo,
		outbox:       outbox,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		batchSize:    batchSize,
		logger:       logger.With().Str("worker", "RefundWorker").Logger(),
	}
}

// Run polls the outbox until the context is cancelled.
func (w *RefundWorker) Run(ctx context.Context) {
	w.logger.Info().Dur("poll_interval", w.pollInterval).Msg("Starting credit refund worker")
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Shutting down credit refund worker")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain processes one batch of pending refunds.
func (w *RefundWorker) drain(ctx context.Context) {
	refunds, err := w.outbox.ListPending(ctx, w.batchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to list pending credit refunds")
		return
	}
	for _, refund := range refunds {
		if err := w.profileRepo.RefundCredit(ctx, refund.ProfileID); err != nil {
			abandon := refund.Attempts+1 >= w.maxAttempts
			if abandon {
				w.logger.Error().
					Int64("refund_id", refund.ID).
					Str("profile_id", refund.ProfileID).
					Int("attempts", refund.Attempts+1).
					Err(err).
					Msg("Abandoning credit refund after exhausting retries")
			}
			if markErr := w.outbox.MarkFailed(ctx, refund.ID, err.Error(), abandon); markErr != nil {
				w.logger.Error().Err(markErr).Int64("refund_id", refund.ID).Msg("Failed to record refund failure")
			}
			continue
		}
		if err := w.outbox.MarkDone(ctx, refund.ID); err != nil {
			w.logger.Error().Err(err).Int64("refund_id", refund.ID).Msg("Failed to mark refund done")
			continue
		}
		w.logger.Info().Int64("refund_id", refund.ID).Str("profile_id", refund.ProfileID).Msg("Credit refund applied")
	}
}
