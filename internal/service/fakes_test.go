package service

import (
	"context"
	"fmt"

	"app/internal/model"
	"app/internal/repository"
)

// fakeProfileRepo is an in-memory ProfileRepository shared by the service
// tests.
type fakeProfileRepo struct {
	profiles map[string]*model.Profile

	createErr   error
	consumeErr  error
	refundErr   error
	refundCalls int

	upgradeCalls []upgradeCall
	premiumCalls []string
}

type upgradeCall struct {
	email   string
	plan    model.PlanType
	credits int
}

func newFakeProfileRepo(profiles ...*model.Profile) *fakeProfileRepo {
	m := make(map[string]*model.Profile)
	for _, p := range profiles {
		m[p.ID] = p
	}
	return &fakeProfileRepo{profiles: m}
}

func (f *fakeProfileRepo) CreateProfile(ctx context.Context, p *model.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfileRepo) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (f *fakeProfileRepo) ConsumeCredit(ctx context.Context, id string) (int, error) {
	if f.consumeErr != nil {
		return 0, f.consumeErr
	}
	p, ok := f.profiles[id]
	if !ok || p.ChatCredits <= 0 {
		return 0, repository.ErrNoCredits
	}
	p.ChatCredits--
	return p.ChatCredits, nil
}

func (f *fakeProfileRepo) RefundCredit(ctx context.Context, id string) error {
	f.refundCalls++
	if f.refundErr != nil {
		return f.refundErr
	}
	if p, ok := f.profiles[id]; ok {
		p.ChatCredits++
	}
	return nil
}

func (f *fakeProfileRepo) UpgradeByEmail(ctx context.Context, email string, plan model.PlanType, credits int) error {
	f.upgradeCalls = append(f.upgradeCalls, upgradeCall{email: email, plan: plan, credits: credits})
	for _, p := range f.profiles {
		if p.Email == email {
			p.PlanType = plan
			p.ChatCredits = credits
		}
	}
	return nil
}

func (f *fakeProfileRepo) SetPremiumByEmail(ctx context.Context, email string) error {
	f.premiumCalls = append(f.premiumCalls, email)
	for _, p := range f.profiles {
		if p.Email == email {
			p.IsPremium = true
		}
	}
	return nil
}

func (f *fakeProfileRepo) writes() int {
	return len(f.upgradeCalls) + len(f.premiumCalls)
}

// fakeIdentityClient fakes the GoTrue auth API.
type fakeIdentityClient struct {
	signUpErr   error
	signInErr   error
	session     *Session
	nextID      string
	deleteCalls []string
	deleteErr   error
}

func (f *fakeIdentityClient) SignUp(ctx context.Context, email, password, name string) (*Identity, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &Identity{ID: f.nextID, Email: email}, nil
}

func (f *fakeIdentityClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.session, nil
}

func (f *fakeIdentityClient) DeleteUser(ctx context.Context, userID string) error {
	f.deleteCalls = append(f.deleteCalls, userID)
	return f.deleteErr
}

// fakeGenerator fakes the inference gateway.
type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", fmt.Errorf("%w: %v", ErrInferenceUnavailable, f.err)
	}
	return f.text, nil
}

// fakeOutbox fakes the refund outbox repository.
type fakeOutbox struct {
	entries    []model.CreditRefund
	enqueueErr error
	nextID     int64

	doneIDs []int64
	failed  []outboxFailure
}

type outboxFailure struct {
	id      int64
	abandon bool
}

func (f *fakeOutbox) Enqueue(ctx context.Context, profileID, lastError string) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.nextID++
	f.entries = append(f.entries, model.CreditRefund{
		ID:        f.nextID,
		ProfileID: profileID,
		Status:    model.RefundStatusPending,
		LastError: &lastError,
	})
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]model.CreditRefund, error) {
	var pending []model.CreditRefund
	for _, e := range f.entries {
		if e.Status == model.RefundStatusPending && len(pending) < limit {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

func (f *fakeOutbox) MarkDone(ctx context.Context, id int64) error {
	f.doneIDs = append(f.doneIDs, id)
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].Status = model.RefundStatusDone
		}
	}
	return nil
}

func (f *fakeOutbox) MarkFailed(ctx context.Context, id int64, lastError string, abandon bool) error {
	f.failed = append(f.failed, outboxFailure{id: id, abandon: abandon})
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].Attempts++
			if abandon {
				f.entries[i].Status = model.RefundStatusAbandoned
			}
		}
	}
	return nil
}
