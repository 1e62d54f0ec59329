package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoCredits is returned by ConsumeCredit when the profile has no chat
// credits left to debit.
var ErrNoCredits = errors.New("no_chat_credits")

// ProfileRepository defines methods for accessing user profiles.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, p *model.Profile) error
	GetProfileByID(ctx context.Context, id string) (*model.Profile, error)
	// ConsumeCredit atomically debits one chat credit iff the profile still has
	// one, returning the remaining balance. Returns ErrNoCredits when the
	// balance is already zero (or below).
	ConsumeCredit(ctx context.Context, id string) (int, error)
	// RefundCredit restores a previously debited credit.
	RefundCredit(ctx context.Context, id string) error
	// UpgradeByEmail assigns the given plan and credit balance to the profile
	// with the given email. Matching no profile is not an error.
	UpgradeByEmail(ctx context.Context, email string, plan model.PlanType, credits int) error
	// SetPremiumByEmail flips the premium flag on the profile with the given
	// email. Matching no profile is not an error.
	SetPremiumByEmail(ctx context.Context, email string) error
}

type profileRepo struct {
	pool *pgxpool.Pool
}

// NewProfileRepo creates a new ProfileRepository.
func NewProfileRepo(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepo{pool: pool}
}

func (r *profileRepo) CreateProfile(ctx context.Context, p *model.Profile) error {
	const q = `
		INSERT INTO profiles (id, email, display_name, plan_type, chat_credits, is_premium)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, q, p.ID, p.Email, p.DisplayName, p.PlanType, p.ChatCredits, p.IsPremium).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating profile for user %s: %w", p.ID, err)
	}
	return nil
}

func (r *profileRepo) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	const q = `
		SELECT id, email, display_name, plan_type, chat_credits, is_premium, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	var p model.Profile
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID,
		&p.Email,
		&p.DisplayName,
		&p.PlanType,
		&p.ChatCredits,
		&p.IsPremium,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching profile %s: %w", id, err)
	}
	return &p, nil
}

// ConsumeCredit issues a single conditional update so that two concurrent
// requests against a one-credit profile cannot both be granted: the WHERE
// clause only matches while a credit remains.
func (r *profileRepo) ConsumeCredit(ctx context.Context, id string) (int, error) {
	const q = `
		UPDATE profiles
		SET chat_credits = chat_credits - 1, updated_at = NOW()
		WHERE id = $1 AND chat_credits > 0
		RETURNING chat_credits
	`
	var remaining int
	err := r.pool.QueryRow(ctx, q, id).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoCredits
		}
		return 0, fmt.Errorf("consuming credit for profile %s: %w", id, err)
	}
	return remaining, nil
}

// RefundCredit increments rather than writing back an absolute balance, so a
// refund can never clobber debits issued by concurrent requests.
func (r *profileRepo) RefundCredit(ctx context.Context, id string) error {
	const q = `
		UPDATE profiles
		SET chat_credits = chat_credits + 1, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("refunding credit for profile %s: %w", id, err)
	}
	return nil
}

func (r *profileRepo) UpgradeByEmail(ctx context.Context, email string, plan model.PlanType, credits int) error {
	const q = `
		UPDATE profiles
		SET plan_type = $2, chat_credits = $3, updated_at = NOW()
		WHERE email = $1
	`
	if _, err := r.pool.Exec(ctx, q, email, plan, credits); err != nil {
		return fmt.Errorf("upgrading profile %s to plan %s: %w", email, plan, err)
	}
	return nil
}

func (r *profileRepo) SetPremiumByEmail(ctx context.Context, email string) error {
	const q = `
		UPDATE profiles
		SET is_premium = TRUE, updated_at = NOW()
		WHERE email = $1
	`
	if _, err := r.pool.Exec(ctx, q, email); err != nil {
		return fmt.Errorf("setting premium for profile %s: %w", email, err)
	}
	return nil
}
