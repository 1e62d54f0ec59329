package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Entitlement modes accepted by ENTITLEMENT_MODE.
const (
	EntitlementModeMetered = "metered"
	EntitlementModePremium = "premium"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	StaticDir   string `envconfig:"STATIC_DIR" default:"./public"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Supabase settings
	SupabaseURL        string `envconfig:"SUPABASE_URL" required:"true"`
	SupabaseServiceKey string `envconfig:"SUPABASE_SERVICE_KEY" required:"true"`
	SupabaseJWTSecret  string `envconfig:"SUPABASE_JWT_SECRET" required:"true"`

	// Gemini settings
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" required:"true"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash-latest"`

	// Ko-fi webhook settings
	KofiVerificationToken string `envconfig:"KOFI_VERIFICATION_TOKEN" required:"true"`

	// Entitlement settings
	EntitlementMode   string `envconfig:"ENTITLEMENT_MODE" default:"metered"`
	SignupChatCredits int    `envconfig:"SIGNUP_CHAT_CREDITS" default:"5"`

	// Credit refund worker settings
	RefundPollIntervalSec int `envconfig:"REFUND_POLL_INTERVAL_SEC" default:"15"`
	RefundMaxAttempts     int `envconfig:"REFUND_MAX_ATTEMPTS" default:"5"`
	RefundBatchSize       int `envconfig:"REFUND_BATCH_SIZE" default:"10"`
}

// RefundPollInterval returns the refund worker cadence as a duration.
func (c *Config) RefundPollInterval() time.Duration {
	return time.Duration(c.RefundPollIntervalSec) * time.Second
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.EntitlementMode != EntitlementModeMetered && cfg.EntitlementMode != EntitlementModePremium {
		return nil, fmt.Errorf("invalid ENTITLEMENT_MODE %q", cfg.EntitlementMode)
	}
	return &cfg, nil
}
