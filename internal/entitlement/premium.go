package entitlement

import (
	"context"

	"app/internal/model"

	"github.com/rs/zerolog"
)

type premiumPolicy struct {
	logger zerolog.Logger
}

// NewPremiumPolicy returns the boolean variant: access follows the profile's
// premium flag and nothing is ever consumed, so no request mutates the store.
func NewPremiumPolicy(logger zerolog.Logger) Policy {
	return &premiumPolicy{
		logger: logger.With().Str("policy", "premium").Logger(),
	}
}

func (b *premiumPolicy) Evaluate(p *model.Profile) Decision {
	if p.IsPremium {
		return Decision{Allow: true, PostAction: PostActionNone}
	}
	return Decision{Allow: false, DenyReason: DenyNotPremium, PostAction: PostActionNone}
}

func (b *premiumPolicy) Consume(ctx context.Context, p *model.Profile) (Decision, error) {
	return b.Evaluate(p), nil
}

func (b *premiumPolicy) Refund(ctx context.Context, p *model.Profile) error {
	return nil
}
