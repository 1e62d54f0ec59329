// Package entitlement decides whether a profile may consume a paid chat
// request, and owns the credit mutations around the downstream call.
package entitlement

import (
	"context"
	"fmt"

	"app/internal/config"
	"app/internal/model"

	"github.com/rs/zerolog"
)

// DenyReason explains a denied decision.
type DenyReason string

const (
	DenyNoCredits  DenyReason = "no_credits"
	DenyNotPremium DenyReason = "not_premium"
)

// PostAction records the mutation that was applied before the downstream
// call, so the caller knows whether a failed call needs compensation.
type PostAction string

const (
	PostActionNone            PostAction = "none"
	PostActionDecrementCredit PostAction = "decrement_credit"
)

// Decision is the per-request outcome of evaluating a profile.
type Decision struct {
	Allow      bool
	DenyReason DenyReason
	PostAction PostAction
}

// CreditStore is the slice of the profile store the metered policy mutates.
type CreditStore interface {
	ConsumeCredit(ctx context.Context, id string) (int, error)
	RefundCredit(ctx context.Context, id string) error
}

// Policy gates access to the inference gateway. Consume applies any debit
// before the downstream call; Refund compensates after a downstream failure
// and must only be called when the decision carried PostActionDecrementCredit.
type Policy interface {
	// Evaluate computes the decision from the profile snapshot alone, without
	// touching the store.
	Evaluate(p *model.Profile) Decision
	// Consume computes the decision and applies the debit, if any, atomically
	// against the store.
	Consume(ctx context.Context, p *model.Profile) (Decision, error)
	// Refund restores the credit debited by Consume.
	Refund(ctx context.Context, p *model.Profile) error
}

// NewPolicy selects the policy variant for the configured entitlement mode.
func NewPolicy(mode string, store CreditStore, logger zerolog.Logger) (Policy, error) {
	switch mode {
	case config.EntitlementModeMetered:
		return NewMeteredPolicy(store, logger), nil
	case config.EntitlementModePremium:
		return NewPremiumPolicy(logger), nil
	default:
		return nil, fmt.Errorf("unknown entitlement mode %q", mode)
	}
}
