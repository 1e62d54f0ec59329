package service

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"errors"
	"fmt"

	"app/internal/config"
	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

var (
	// ErrMalformedPayload is returned when the webhook's data field is not a
	// decodable Ko-fi event. Distinct from a benign not-applicable event.
	ErrMalformedPayload = errors.New("malformed webhook payload")
	// ErrInvalidToken is returned when the event's verification token does not
	// match the configured shared secret. Unverified events are never acted on
	// and never acknowledged as success.
	ErrInvalidToken = errors.New("invalid verification token")
)

// planUpgrade is the target state a recognized tier maps to.
type planUpgrade struct {
	Plan    model.PlanType
	Credits int
}

// Recognized Ko-fi tier names, matched exactly as the storefront sends them.
var tierUpgrades = map[string]planUpgrade{
	"스탠다드 플랜": {Plan: model.PlanStandard, Credits: 200},
	"프로 플랜":   {Plan: model.PlanPro, Credits: 999999},
}

// KofiService reconciles Ko-fi payment notifications into profile upgrades.
type KofiService interface {
	// ProcessWebhook decodes and applies one webhook delivery. A nil return
	// means the sender should be acknowledged with success, including when the
	// event was not applicable or the store write failed.
	ProcessWebhook(ctx context.Context, payload string) error
}

type kofiService struct {
	profileRepo       repository.ProfileRepository
	verificationToken string
	entitlementMode   string
	logger            zerolog.Logger
}

// NewKofiService creates a KofiService.
func NewKofiService(profileRepo repository.ProfileRepository, verificationToken, entitlementMode string, logger zerolog.Logger) KofiService {
	return &kofiService{
		profileRepo:       profileRepo,
		verificationToken: verificationToken,
		entitlementMode:   entitlementMode,
		logger:            logger.With().Str("service", "KofiService").Logger(),
	}
}

func (s *kofiService) ProcessWebhook(ctx context.Context, payload string) error {
	var event model.KofiEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if !hmac.Equal([]byte(event.VerificationToken), []byte(s.verificationToken)) {
		return ErrInvalidToken
	}

	if !event.IsSubscriptionPayment {
		s.logger.Debug().Str("type", event.Type).Msg("Ignoring non-subscription Ko-fi event")
		return nil
	}

	upgrade, ok := tierUpgrades[event.TierName]
	if !ok {
		s.logger.Warn().Str("tier_name", event.TierName).Msg("Unrecognized Ko-fi tier, ignoring")
		return nil
	}

	s.logger.Info().Str("email", event.Email).Str("tier_name", event.TierName).Msg("Applying Ko-fi subscription upgrade")

	var err error
	if s.entitlementMode == config.EntitlementModePremium {
		err = s.profileRepo.SetPremiumByEmail(ctx, event.Email)
	} else {
		err = s.profileRepo.UpgradeByEmail(ctx, event.Email, upgrade.Plan, upgrade.Credits)
	}
	if err != nil {
		// The sender is still acknowledged: Ko-fi retries are not wanted and
		// the upgrade is a plain assignment a later delivery can re-apply.
		s.logger.Error().Err(err).Str("email", event.Email).Msg("Failed to apply Ko-fi subscription upgrade")
	}
	return nil
}
