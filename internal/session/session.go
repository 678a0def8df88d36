// Package session holds the access token shared by everything that talks to
// the API during one run of the program.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jarv/snoogoat/internal/logging"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNoToken is returned by Token when nothing has been acquired yet.
	ErrNoToken = errors.New("no access token held")
	// ErrTokenUnavailable is returned after the one acquisition attempt failed.
	ErrTokenUnavailable = errors.New("access token could not be acquired")
)

// TokenFetcher performs the actual token request.
type TokenFetcher interface {
	FetchToken(ctx context.Context) (string, error)
}

type tokenState int

const (
	stateIdle tokenState = iota
	stateFetching
	stateHeld
	stateFailed
)

// Session holds the bearer token. The token is fetched at most once while
// none is held; it is never refreshed or invalidated.
type Session struct {
	fetcher TokenFetcher
	group   singleflight.Group

	mu      sync.RWMutex
	state   tokenState
	token   string
	lastErr error
}

func New(fetcher TokenFetcher) *Session {
	return &Session{fetcher: fetcher}
}

// Token returns the held token without fetching.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != stateHeld {
		return "", ErrNoToken
	}
	return s.token, nil
}

// HasToken reports whether a token is held.
func (s *Session) HasToken() bool {
	_, err := s.Token()
	return err == nil
}

// Attempted reports whether an acquisition has been started.
func (s *Session) Attempted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state != stateIdle
}

// AcquireToken returns the held token, fetching it if this is the first
// call. Concurrent callers share a single request. Once that request has
// failed every later call returns ErrTokenUnavailable without another attempt.
func (s *Session) AcquireToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	switch s.state {
	case stateHeld:
		token := s.token
		s.mu.Unlock()
		return token, nil
	case stateFailed:
		err := s.lastErr
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	case stateIdle:
		s.state = stateFetching
	}
	s.mu.Unlock()

	v, err, shared := s.group.Do("token", func() (interface{}, error) {
		return s.fetchOnce(ctx)
	})
	if shared {
		logging.Debug("Joined in-flight token request")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Session) fetchOnce(ctx context.Context) (string, error) {
	s.mu.RLock()
	state, token, lastErr := s.state, s.token, s.lastErr
	s.mu.RUnlock()

	// Another caller finished the request before this one got scheduled
	switch state {
	case stateHeld:
		return token, nil
	case stateFailed:
		return "", fmt.Errorf("%w: %w", ErrTokenUnavailable, lastErr)
	}

	logging.Info("Requesting access token")
	token, err := s.fetcher.FetchToken(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = stateFailed
		s.lastErr = err
		logging.Error("Access token request failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}

	s.state = stateHeld
	s.token = token
	logging.Info("Access token acquired")
	return token, nil
}
