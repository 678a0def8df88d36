package reddit

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchToken(t *testing.T) {
	creds := Credentials{
		Username:     "alice",
		Password:     "hunter2",
		ClientID:     "client",
		ClientSecret: "secret",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/v1/access_token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		query := r.URL.Query()
		if query.Get("grant_type") != "password" || query.Get("username") != "alice" || query.Get("password") != "hunter2" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}

		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("client:secret"))
		if got := r.Header.Get("Authorization"); got != want {
			t.Errorf("Authorization = %q, want %q", got, want)
		}

		_, _ = w.Write([]byte(`{"access_token": "abc123", "token_type": "bearer", "expires_in": 86400, "scope": "*"}`))
	}))
	defer server.Close()

	auth := NewAuthenticator(creds, Options{AuthBaseURL: server.URL})
	token, err := auth.FetchToken(context.Background())
	if err != nil {
		t.Fatalf("FetchToken() error = %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q, want abc123", token)
	}
}

func TestFetchTokenFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		target error
	}{
		{"invalid grant in body", http.StatusOK, `{"error": "invalid_grant"}`, ErrNoAccessToken},
		{"empty token", http.StatusOK, `{"token_type": "bearer"}`, ErrNoAccessToken},
		{"bad client credentials", http.StatusUnauthorized, `{"message": "Unauthorized", "error": 401}`, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ``, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			auth := NewAuthenticator(Credentials{Username: "u", Password: "p"}, Options{AuthBaseURL: server.URL})
			token, err := auth.FetchToken(context.Background())
			if err == nil {
				t.Fatalf("expected error, got token %q", token)
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("expected errors.Is(%v, %v)", err, tt.target)
			}
		})
	}
}
