package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/pkg/sanitize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	maxNameLength     = 50
	maxBioLength      = 500
)

var validate = validator.New()

// Service encapsulates user-related business logic
type Service struct {
	repo     UserRepository
	hashCost int
	// dummyHash is compared against when the email is unknown so that both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewService(r UserRepository) *Service {
	s := &Service{repo: r, hashCost: bcrypt.DefaultCost}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("skillbridge-dummy-password"), bcrypt.MinCost)
	return s
}

// SignupInput is the data needed to create an account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Signup validates the input, hashes the password and stores the user.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	name := sanitize.Text(in.Name)
	email := sanitize.Email(in.Email)

	var v apperrors.Validation
	v.Check(name != "", "name", "is required")
	v.Check(utf8.RuneCountInString(name) <= maxNameLength, "name", "must be at most 50 characters")
	v.Check(validate.Var(email, "required,email") == nil, "email", "must be a valid email address")
	v.Check(len(in.Password) >= MinPasswordLength, "password", "must be at least 8 characters")
	v.Check(len(in.Password) <= 72, "password", "must be at most 72 bytes")
	v.Check(models.ValidRole(in.Role), "role", "must be student or mentor")
	if err := v.Err(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s: %w", email, apperrors.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     in.Role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user for a matching email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, sanitize.Email(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	return u, nil
}

// Get returns the user or ErrNotFound.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return u, nil
}

// ProfileUpdate holds optional base profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name *string
	Bio  *string
}

func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileUpdate) (*models.User, error) {
	set := bson.M{}
	var v apperrors.Validation
	if in.Name != nil {
		name := sanitize.Text(*in.Name)
		v.Check(name != "", "name", "is required")
		v.Check(utf8.RuneCountInString(name) <= maxNameLength, "name", "must be at most 50 characters")
		set["name"] = name
	}
	if in.Bio != nil {
		bio := sanitize.Text(*in.Bio)
		v.Check(utf8.RuneCountInString(bio) <= maxBioLength, "bio", "must be at most 500 characters")
		set["bio"] = bio
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}
	u, err := s.repo.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return u, nil
}

// SetAvatar records a new avatar and returns the object key it replaced.
func (s *Service) SetAvatar(ctx context.Context, id primitive.ObjectID, url, key string) (*models.User, string, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	u, err := s.repo.Update(ctx, id, bson.M{"avatarUrl": url, "avatarKey": key})
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return u, current.AvatarKey, nil
}

// Lookup loads the given users keyed by id. Missing ids are absent from the map.
func (s *Service) Lookup(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	out := make(map[primitive.ObjectID]*models.User, len(ids))
	uniq := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok || id.IsZero() {
			continue
		}
		out[id] = nil
		uniq = append(uniq, id)
	}
	found, err := s.repo.FindByIDs(ctx, uniq)
	if err != nil {
		return nil, err
	}
	for k := range out {
		delete(out, k)
	}
	for i := range found {
		out[found[i].ID] = &found[i]
	}
	return out, nil
}

// Summary returns the populated form of id using users from Lookup. A
// missing user renders with only its id.
func Summary(m map[primitive.ObjectID]*models.User, id primitive.ObjectID) models.UserSummary {
	if u, ok := m[id]; ok && u != nil {
		return u.Summary()
	}
	return models.UserSummary{ID: id}
}

// IsRole reports whether u has role r.
func IsRole(u *models.User, r string) bool {
	return u != nil && strings.EqualFold(u.Role, r)
}
