package model

import "time"

// PlanType is the subscription tier stored on a profile.
type PlanType string

const (
	PlanFree     PlanType = "free"
	PlanStandard PlanType = "standard"
	PlanPro      PlanType = "pro"
)

// Profile holds the per-user record backing entitlement decisions. The ID is
// assigned by the identity provider at signup and never reassigned. In metered
// deployments ChatCredits gates chat access for non-pro plans; in premium
// deployments only IsPremium is consulted.
type Profile struct {
	ID          string    `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	DisplayName string    `db:"display_name" json:"display_name"`
	PlanType    PlanType  `db:"plan_type" json:"plan_type"`
	ChatCredits int       `db:"chat_credits" json:"chat_credits"`
	IsPremium   bool      `db:"is_premium" json:"is_premium"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
