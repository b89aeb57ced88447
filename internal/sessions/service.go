package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Service wraps repository operations with business logic
type Service struct {
	repo Repository
	ttl  time.Duration
}

func NewService(r Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{repo: r, ttl: ttl}
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreateSession stores a new refresh session and returns the refresh token
func (s *Service) CreateSession(ctx context.Context, userID string) (string, error) {
	r, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	sess := &Session{
		RefreshToken: r,
		UserID:       userID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", err
	}
	return r, nil
}

// ValidateRefresh returns the session if refresh token is valid and not expired
func (s *Service) ValidateRefresh(ctx context.Context, refresh string) (*Session, error) {
	sess, err := s.repo.GetByRefresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(time.Now().UTC()) {
		_ = s.repo.DeleteByRefresh(ctx, refresh)
		return nil, nil
	}
	return sess, nil
}

// Rotate consumes a refresh token and issues a replacement for the same
// user. It returns ("", nil, nil) when the token is unknown or expired. A
// token consumed by a concurrent call counts as unknown.
func (s *Service) Rotate(ctx context.Context, refresh string) (string, *Session, error) {
	sess, err := s.repo.Consume(ctx, refresh)
	if err != nil || sess == nil {
		return "", nil, err
	}
	if sess.Expired(time.Now().UTC()) {
		return "", nil, nil
	}
	next, err := s.CreateSession(ctx, sess.UserID)
	if err != nil {
		return "", nil, err
	}
	return next, sess, nil
}

func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	return s.repo.DeleteByRefresh(ctx, refresh)
}
