package service

import (
	"context"
	"errors"
	"fmt"

	"app/internal/entitlement"
	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// ErrProfileNotFound is returned when the authenticated user has no profile
// row. A valid token without a profile is a store-side inconsistency, not a
// client error.
var ErrProfileNotFound = errors.New("profile not found")

// EntitlementDeniedError is returned when the policy refuses the request.
// No downstream call is attempted and no mutation remains applied.
type EntitlementDeniedError struct {
	Reason entitlement.DenyReason
}

func (e *EntitlementDeniedError) Error() string {
	return fmt.Sprintf("entitlement denied: %s", e.Reason)
}

// ChatService gates a prompt on the entitlement policy and forwards it to the
// inference gateway.
type ChatService interface {
	Chat(ctx context.Context, userID, prompt string) (string, error)
}

type chatService struct {
	profileRepo repository.ProfileRepository
	policy      entitlement.Policy
	generator   TextGenerator
	outbox      repository.RefundOutboxRepository
	logger      zerolog.Logger
}

// NewChatService creates a ChatService.
func NewChatService(
	profileRepo repository.ProfileRepository,
	policy entitlement.Policy,
	generator TextGenerator,
	outbox repository.RefundOutboxRepository,
	logger zerolog.Logger,
) ChatService {
	return &chatService{
		profileRepo: profileRepo,
		policy:      policy,
		generator:   generator,
		outbox:      outbox,
		logger:      logger.With().Str("service", "ChatService").Logger(),
	}
}

func (s *chatService) Chat(ctx context.Context, userID, prompt string) (string, error) {
	profile, err := s.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("fetching profile: %w", err)
	}
	if profile == nil {
		return "", fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
	}

	decision, err := s.policy.Consume(ctx, profile)
	if err != nil {
		return "", fmt.Errorf("evaluating entitlement: %w", err)
	}
	if !decision.Allow {
		return "", &EntitlementDeniedError{Reason: decision.DenyReason}
	}

	text, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		if decision.PostAction == entitlement.PostActionDecrementCredit {
			s.compensate(ctx, profile, err)
		}
		return "", fmt.Errorf("generating text: %w", err)
	}
	return text, nil
}

// compensate restores the debited credit after an inference failure. If the
// restoring write itself fails the obligation is parked in the refund outbox
// so the worker can retry it; a refund is never silently dropped.
func (s *chatService) compensate(ctx context.Context, profile *model.Profile, cause error) {
	refundErr := s.policy.Refund(ctx, profile)
	if refundErr == nil {
		return
	}
	s.logger.Error().Err(refundErr).
		Str("profile_id", profile.ID).
		AnErr("inference_error", cause).
		Msg("Failed to refund chat credit, parking in outbox")
	if err := s.outbox.Enqueue(ctx, profile.ID, refundErr.Error()); err != nil {
		// Last resort: the obligation is only recorded in the log.
		s.logger.Error().Err(err).Str("profile_id", profile.ID).Msg("Failed to enqueue credit refund")
	}
}
