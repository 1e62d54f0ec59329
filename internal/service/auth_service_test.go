package service

import (
	"context"
	"errors"
	"testing"

	"app/internal/model"

	"github.com/rs/zerolog"
)

func TestSignUpCreatesIdentityAndProfile(t *testing.T) {
	identity := &fakeIdentityClient{nextID: "uid-1"}
	repo := newFakeProfileRepo()
	svc := NewAuthService(identity, repo, 5, zerolog.Nop())

	id, err := svc.SignUp(context.Background(), "a@b.com", "hunter22", "Alice")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if id.ID != "uid-1" {
		t.Fatalf("expected identity uid-1, got %s", id.ID)
	}

	p, _ := repo.GetProfileByID(context.Background(), "uid-1")
	if p == nil {
		t.Fatal("expected profile to be created")
	}
	if p.PlanType != model.PlanFree || p.ChatCredits != 5 {
		t.Fatalf("expected free plan with 5 credits, got %s/%d", p.PlanType, p.ChatCredits)
	}
	if p.Email != "a@b.com" || p.DisplayName != "Alice" {
		t.Fatalf("unexpected profile fields: %+v", p)
	}
}

func TestSignUpRollsBackIdentityOnProfileFailure(t *testing.T) {
	identity := &fakeIdentityClient{nextID: "uid-1"}
	repo := newFakeProfileRepo()
	repo.createErr = errors.New("duplicate key value violates unique constraint")
	svc := NewAuthService(identity, repo, 5, zerolog.Nop())

	if _, err := svc.SignUp(context.Background(), "a@b.com", "hunter22", "Alice"); err == nil {
		t.Fatal("expected profile insert failure to surface")
	}
	if len(identity.deleteCalls) != 1 || identity.deleteCalls[0] != "uid-1" {
		t.Fatalf("expected identity uid-1 to be rolled back, got %v", identity.deleteCalls)
	}
}

func TestSignUpIdentityRejection(t *testing.T) {
	identity := &fakeIdentityClient{signUpErr: errors.New("User already registered")}
	repo := newFakeProfileRepo()
	svc := NewAuthService(identity, repo, 5, zerolog.Nop())

	if _, err := svc.SignUp(context.Background(), "a@b.com", "hunter22", "Alice"); err == nil {
		t.Fatal("expected identity rejection to surface")
	}
	if len(repo.profiles) != 0 {
		t.Fatal("no profile may be created when identity signup fails")
	}
	if len(identity.deleteCalls) != 0 {
		t.Fatal("nothing to roll back when identity signup fails")
	}
}

func TestSignInPassesThroughSession(t *testing.T) {
	identity := &fakeIdentityClient{
		session: &Session{AccessToken: "tok", TokenType: "bearer", ExpiresIn: 3600},
	}
	svc := NewAuthService(identity, newFakeProfileRepo(), 5, zerolog.Nop())

	session, err := svc.SignIn(context.Background(), "a@b.com", "hunter22")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if session.AccessToken != "tok" {
		t.Fatalf("expected access token to pass through, got %q", session.AccessToken)
	}
}

func TestSignInBadCredentials(t *testing.T) {
	identity := &fakeIdentityClient{signInErr: ErrInvalidCredentials}
	svc := NewAuthService(identity, newFakeProfileRepo(), 5, zerolog.Nop())

	_, err := svc.SignIn(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
