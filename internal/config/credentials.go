package config

import (
	"errors"
	"os"

	"github.com/jarv/snoogoat/internal/reddit"
)

// Credentials are compiled in with
//
//	-ldflags "-X github.com/jarv/snoogoat/internal/config.Username=..."
//
// and may be overridden from the environment.
var (
	Username     = ""
	Password     = ""
	ClientID     = ""
	ClientSecret = ""
)

// Environment variables that override the compiled-in credentials
const (
	EnvUsername     = "SNOOGOAT_USERNAME"
	EnvPassword     = "SNOOGOAT_PASSWORD"
	EnvClientID     = "SNOOGOAT_CLIENT_ID"
	EnvClientSecret = "SNOOGOAT_CLIENT_SECRET"
)

var ErrMissingCredentials = errors.New("reddit credentials are not configured")

// LoadCredentials returns the compiled-in credentials with any environment
// overrides applied.
func LoadCredentials() (reddit.Credentials, error) {
	creds := reddit.Credentials{
		Username:     envOr(EnvUsername, Username),
		Password:     envOr(EnvPassword, Password),
		ClientID:     envOr(EnvClientID, ClientID),
		ClientSecret: envOr(EnvClientSecret, ClientSecret),
	}

	if creds.Username == "" || creds.ClientID == "" {
		return creds, ErrMissingCredentials
	}
	return creds, nil
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
