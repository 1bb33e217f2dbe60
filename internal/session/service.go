// Package session issues and validates storefront session tokens. The
// checkout customer identity is drawn from a validated session.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"storefront-cart/internal/domain"
	sessionrepo "storefront-cart/internal/repository/session"
)

var ErrInvalidSession = errors.New("invalid session")

type Service struct {
	repo sessionrepo.Repository
	ttl  time.Duration
}

func New(repo sessionrepo.Repository) *Service {
	return &Service{
		repo: repo,
		ttl:  30 * 24 * time.Hour,
	}
}

// Issue creates a session for the customer and returns its token.
func (s *Service) Issue(ctx context.Context, customerID string) (string, error) {
	expiresAt := time.Now().Add(s.ttl)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", err
		}
		err = s.repo.Create(ctx, sessionrepo.Session{
			Token:      token,
			CustomerID: customerID,
			ExpiresAt:  expiresAt,
		})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", err
	}
	return "", errors.New("token collision")
}

// Resolve returns the customer id behind a session token. Expired
// sessions are deleted and treated as invalid.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidSession
	}
	sess, err := s.repo.Get(ctx, token)
	if err != nil {
		return "", ErrInvalidSession
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.repo.Delete(ctx, token)
		return "", ErrInvalidSession
	}
	return sess.CustomerID, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
