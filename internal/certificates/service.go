// Package certificates stores uploaded credential files and their metadata.
package certificates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/storage"
	"github.com/skillbridge/skillbridge/backend/api/pkg/logger"
	"github.com/skillbridge/skillbridge/backend/api/pkg/metrics"
	"github.com/skillbridge/skillbridge/backend/api/pkg/sanitize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const keyPrefix = "certificates"

var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

type Service struct {
	repo       Repository
	store      storage.ObjectStore
	maxBytes   int64
	presignTTL time.Duration
}

func NewService(r Repository, store storage.ObjectStore, maxBytes int64, presignTTL time.Duration) *Service {
	return &Service{repo: r, store: store, maxBytes: maxBytes, presignTTL: presignTTL}
}

// UploadInput describes one multipart certificate upload. ContentType is the
// type already sniffed from Body by the caller; when empty Upload sniffs it.
// A client-declared header must never be passed here.
type UploadInput struct {
	Title       string
	Issuer      string
	IssuedAt    *time.Time
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload validates and stores the file, then records its metadata.
func (s *Service) Upload(ctx context.Context, owner primitive.ObjectID, in UploadInput) (*models.Certificate, error) {
	title := sanitize.Text(in.Title)
	issuer := sanitize.Text(in.Issuer)
	var v apperrors.Validation
	v.Check(title != "" && utf8.RuneCountInString(title) <= 100, "title", "must be between 1 and 100 characters")
	v.Check(issuer != "" && utf8.RuneCountInString(issuer) <= 100, "issuer", "must be between 1 and 100 characters")
	v.Check(in.IssuedAt == nil || !in.IssuedAt.After(time.Now().Add(24*time.Hour)), "issuedAt", "cannot be in the future")
	v.Check(in.Size > 0, "file", "is required")
	v.Check(in.Size <= s.maxBytes, "file", fmt.Sprintf("must be at most %d bytes", s.maxBytes))
	if err := v.Err(); err != nil {
		return nil, err
	}

	ct, body := in.ContentType, in.Body
	if ct == "" {
		var err error
		if ct, body, err = storage.Sniff(in.Body); err != nil {
			return nil, err
		}
	}
	if !allowedTypes[ct] {
		return nil, apperrors.Invalid("file", "must be a PDF, PNG or JPEG")
	}

	key := storage.NewKey(keyPrefix, owner.Hex(), ct)
	if err := s.store.Upload(ctx, key, body, in.Size, ct); err != nil {
		return nil, err
	}
	c := &models.Certificate{
		Owner:       owner,
		Title:       title,
		Issuer:      issuer,
		IssuedAt:    in.IssuedAt,
		ObjectKey:   key,
		ContentType: ct,
		Size:        in.Size,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			logger.Warnf("orphaned certificate object %s: %v", key, rmErr)
		}
		return nil, err
	}
	metrics.Uploads.WithLabelValues("certificate").Inc()
	return c, nil
}

func (s *Service) List(ctx context.Context, owner primitive.ObjectID) ([]models.Certificate, error) {
	out, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Certificate{}
	}
	return out, nil
}

func (s *Service) owned(ctx context.Context, user, id primitive.ObjectID) (*models.Certificate, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("certificate %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if c.Owner != user {
		return nil, fmt.Errorf("certificate %s: %w", id.Hex(), apperrors.ErrForbidden)
	}
	return c, nil
}

// DownloadURL returns a short-lived presigned URL for the owner.
func (s *Service) DownloadURL(ctx context.Context, user, id primitive.ObjectID) (string, time.Time, error) {
	c, err := s.owned(ctx, user, id)
	if err != nil {
		return "", time.Time{}, err
	}
	u, err := s.store.PresignedURL(ctx, c.ObjectKey, s.presignTTL)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", time.Time{}, fmt.Errorf("certificate file %s: %w", id.Hex(), apperrors.ErrNotFound)
		}
		return "", time.Time{}, err
	}
	return u, time.Now().Add(s.presignTTL).UTC(), nil
}

// Delete removes the metadata and then the stored object.
func (s *Service) Delete(ctx context.Context, user, id primitive.ObjectID) error {
	c, err := s.owned(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, c.ObjectKey); err != nil {
		logger.Warnf("failed to remove certificate object %s: %v", c.ObjectKey, err)
	}
	return nil
}
