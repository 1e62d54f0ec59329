package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoTrueSignUpSendsCredentialsAndMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/signup" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("apikey"); got != "service-key" {
			t.Errorf("expected apikey header, got %q", got)
		}
		var body struct {
			Email    string            `json:"email"`
			Password string            `json:"password"`
			Data     map[string]string `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding signup body: %v", err)
		}
		if body.Email != "a@b.com" || body.Password != "secret123" {
			t.Errorf("unexpected credentials %q/%q", body.Email, body.Password)
		}
		if body.Data["display_name"] != "Alice" {
			t.Errorf("expected display_name metadata, got %v", body.Data)
		}
		_, _ = w.Write([]byte(`{"id":"uid-1","email":"a@b.com"}`))
	}))
	defer srv.Close()

	c := NewGoTrueClient(srv.URL, "service-key")
	identity, err := c.SignUp(context.Background(), "a@b.com", "secret123", "Alice")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if identity.ID != "uid-1" || identity.Email != "a@b.com" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestGoTrueSignInMapsBadRequestToInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_description":"invalid login credentials"}`))
	}))
	defer srv.Close()

	c := NewGoTrueClient(srv.URL, "service-key")
	if _, err := c.SignInWithPassword(context.Background(), "a@b.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGoTrueSignInReturnsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600,"refresh_token":"ref","user":{"id":"uid-1","email":"a@b.com"}}`))
	}))
	defer srv.Close()

	c := NewGoTrueClient(srv.URL, "service-key")
	session, err := c.SignInWithPassword(context.Background(), "a@b.com", "secret123")
	if err != nil {
		t.Fatalf("SignInWithPassword returned error: %v", err)
	}
	if session.AccessToken != "tok" || session.User == nil || session.User.ID != "uid-1" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestGoTrueDeleteUserUsesAdminEndpoint(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewGoTrueClient(srv.URL, "service-key")
	if err := c.DeleteUser(context.Background(), "uid-1"); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/auth/v1/admin/users/uid-1" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer service-key" {
		t.Fatalf("expected service-key bearer, got %q", gotAuth)
	}
}

func TestExtractAuthErrorShapes(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`{"msg":"user already registered"}`, "user already registered"},
		{`{"message":"server error"}`, "server error"},
		{`{"error_description":"bad grant"}`, "bad grant"},
		{`plain text`, "plain text"},
	}
	for _, tc := range cases {
		if got := extractAuthError([]byte(tc.raw)); got != tc.want {
			t.Errorf("extractAuthError(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
