package model

// KofiEvent is the JSON document Ko-fi posts inside the form-encoded "data"
// field of its webhook. Only the fields the reconciler consults are decoded.
type KofiEvent struct {
	VerificationToken          string `json:"verification_token"`
	MessageID                  string `json:"message_id"`
	Type                       string `json:"type"`
	IsSubscriptionPayment      bool   `json:"is_subscription_payment"`
	IsFirstSubscriptionPayment bool   `json:"is_first_subscription_payment"`
	TierName                   string `json:"tier_name"`
	Email                      string `json:"email"`
}
