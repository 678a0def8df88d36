package reddit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Credentials used for the password grant. ClientID and ClientSecret are the
// script app pair sent as Basic auth.
type Credentials struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
}

func (c Credentials) basicAuth() string {
	pair := c.ClientID + ":" + c.ClientSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(pair))
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator struct {
	baseURL     string
	credentials Credentials
	httpClient  *http.Client
}

func NewAuthenticator(creds Credentials, opts Options) *Authenticator {
	opts = opts.withDefaults()
	return &Authenticator{
		baseURL:     strings.TrimRight(opts.AuthBaseURL, "/"),
		credentials: creds,
		httpClient:  opts.httpClient(),
	}
}

// FetchToken performs a single password grant request. There is no retry and
// no refresh: the returned token is used until the process exits.
func (a *Authenticator) FetchToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "password")
	params.Set("username", a.credentials.Username)
	params.Set("password", a.credentials.Password)
	endpoint := a.baseURL + "/api/v1/access_token?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Authorization", a.credentials.basicAuth())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute token request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", newStatusError(resp, endpoint)
	}

	var tokenResponse TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	// reddit answers bad passwords with 200 and {"error": "invalid_grant"}
	if tokenResponse.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrNoAccessToken, tokenResponse.Error)
	}
	if tokenResponse.AccessToken == "" {
		return "", ErrNoAccessToken
	}

	return tokenResponse.AccessToken, nil
}
