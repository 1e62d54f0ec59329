package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidCredentials is returned by SignInWithPassword when the identity
// provider rejects the email/password pair.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Identity is the identity-provider record created at signup.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the token bundle returned by a password sign-in.
type Session struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	User         *Identity `json:"user,omitempty"`
}

// IdentityClient wraps the identity provider's auth API.
type IdentityClient interface {
	SignUp(ctx context.Context, email, password, name string) (*Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// DeleteUser removes an identity via the admin API. Used to roll back a
	// signup whose profile insert failed.
	DeleteUser(ctx context.Context, userID string) error
}

type goTrueClient struct {
	client     *http.Client
	baseURL    string
	serviceKey string
}

// NewGoTrueClient creates an IdentityClient against a Supabase project's
// GoTrue endpoint. The service key is used both as the apikey header and as
// the bearer for admin calls.
func NewGoTrueClient(supabaseURL, serviceKey string) IdentityClient {
	return &goTrueClient{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:    strings.TrimRight(supabaseURL, "/") + "/auth/v1",
		serviceKey: serviceKey,
	}
}

func (c *goTrueClient) SignUp(ctx context.Context, email, password, name string) (*Identity, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     map[string]string{"display_name": name},
	}
	var out Identity
	if err := c.do(ctx, http.MethodPost, "/signup", body, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("identity provider returned no user for signup")
	}
	return &out, nil
}

func (c *goTrueClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var out Session
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", body, &out)
	if err != nil {
		var apiErr *goTrueError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Message)
		}
		return nil, err
	}
	return &out, nil
}

func (c *goTrueClient) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+userID, nil, nil)
}

// goTrueError carries the provider's status and message for callers that
// distinguish rejection from unavailability.
type goTrueError struct {
	Status  int
	Message string
}

func (e *goTrueError) Error() string {
	return fmt.Sprintf("identity provider returned %d: %s", e.Status, e.Message)
}

func (c *goTrueClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling auth request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling identity provider: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading identity provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &goTrueError{Status: resp.StatusCode, Message: extractAuthError(raw)}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding identity provider response: %w", err)
		}
	}
	return nil
}

// extractAuthError pulls a human-readable message from the several error
// shapes GoTrue responds with.
func extractAuthError(raw []byte) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &e); err == nil {
		switch {
		case e.Msg != "":
			return e.Msg
		case e.Message != "":
			return e.Message
		case e.ErrorDescription != "":
			return e.ErrorDescription
		}
	}
	return string(raw)
}
