package service

import (
	"context"
	"fmt"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// AuthService handles signup and sign-in against the identity provider,
// keeping the profile store in lockstep.
type AuthService interface {
	// SignUp creates the identity record, then the profile. If the profile
	// insert fails the identity is deleted again so no identity ever exists
	// without a profile.
	SignUp(ctx context.Context, email, password, name string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
}

type authService struct {
	identity      IdentityClient
	profileRepo   repository.ProfileRepository
	signupCredits int
	logger        zerolog.Logger
}

// NewAuthService creates an AuthService. signupCredits is the chat credit
// balance granted to new free-plan profiles.
func NewAuthService(identity IdentityClient, profileRepo repository.ProfileRepository, signupCredits int, logger zerolog.Logger) AuthService {
	return &authService{
		identity:      identity,
		profileRepo:   profileRepo,
		signupCredits: signupCredits,
		logger:        logger.With().Str("service", "AuthService").Logger(),
	}
}

func (s *authService) SignUp(ctx context.Context, email, password, name string) (*Identity, error) {
	id, err := s.identity.SignUp(ctx, email, password, name)
	if err != nil {
		return nil, fmt.Errorf("creating identity: %w", err)
	}

	profile := &model.Profile{
		ID:          id.ID,
		Email:       email,
		DisplayName: name,
		PlanType:    model.PlanFree,
		ChatCredits: s.signupCredits,
	}
	if err := s.profileRepo.CreateProfile(ctx, profile); err != nil {
		// Roll back the identity so signup stays all-or-nothing.
		if delErr := s.identity.DeleteUser(ctx, id.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("user_id", id.ID).Msg("Failed to roll back identity after profile insert failure")
		}
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	s.logger.Info().Str("user_id", id.ID).Msg("User signed up")
	return id, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	session, err := s.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return session, nil
}
