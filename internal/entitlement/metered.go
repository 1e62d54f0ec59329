package entitlement

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

type meteredPolicy struct {
	store  CreditStore
	logger zerolog.Logger
}

// NewMeteredPolicy returns the consumable-credit variant: pro profiles pass
// unconditionally, everyone else spends one chat credit per request.
func NewMeteredPolicy(store CreditStore, logger zerolog.Logger) Policy {
	return &meteredPolicy{
		store:  store,
		logger: logger.With().Str("policy", "metered").Logger(),
	}
}

func (m *meteredPolicy) Evaluate(p *model.Profile) Decision {
	if p.PlanType == model.PlanPro {
		return Decision{Allow: true, PostAction: PostActionNone}
	}
	if p.ChatCredits <= 0 {
		return Decision{Allow: false, DenyReason: DenyNoCredits, PostAction: PostActionNone}
	}
	return Decision{Allow: true, PostAction: PostActionDecrementCredit}
}

// Consume debits via the store's conditional decrement rather than re-checking
// the snapshot, so the balance can never be driven below zero by interleaved
// requests.
func (m *meteredPolicy) Consume(ctx context.Context, p *model.Profile) (Decision, error) {
	if p.PlanType == model.PlanPro {
		return Decision{Allow: true, PostAction: PostActionNone}, nil
	}
	remaining, err := m.store.ConsumeCredit(ctx, p.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNoCredits) {
			return Decision{Allow: false, DenyReason: DenyNoCredits, PostAction: PostActionNone}, nil
		}
		return Decision{}, fmt.Errorf("consuming chat credit: %w", err)
	}
	m.logger.Debug().Str("profile_id", p.ID).Int("remaining", remaining).Msg("Chat credit debited")
	return Decision{Allow: true, PostAction: PostActionDecrementCredit}, nil
}

func (m *meteredPolicy) Refund(ctx context.Context, p *model.Profile) error {
	if p.PlanType == model.PlanPro {
		return nil
	}
	if err := m.store.RefundCredit(ctx, p.ID); err != nil {
		return fmt.Errorf("refunding chat credit: %w", err)
	}
	return nil
}
