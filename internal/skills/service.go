// Package skills implements the skill exchange: shareable learning modules
// with enrollments and reviews.
package skills

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"github.com/skillbridge/skillbridge/backend/api/internal/users"
	"github.com/skillbridge/skillbridge/backend/api/pkg/metrics"
	"github.com/skillbridge/skillbridge/backend/api/pkg/sanitize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserLookup resolves user references for population.
type UserLookup interface {
	Lookup(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
}

type Service struct {
	repo  Repository
	users UserLookup
	now   func() time.Time
}

func NewService(r Repository, u UserLookup) *Service {
	return &Service{repo: r, users: u, now: func() time.Time { return time.Now().UTC() }}
}

// SkillInput carries create/update fields; nil pointers are left unchanged.
type SkillInput struct {
	Title       *string
	Description *string
	Category    *string
	Level       *string
}

func (in SkillInput) apply(s *models.Skill, v *apperrors.Validation) bson.M {
	set := bson.M{}
	if in.Title != nil {
		s.Title = sanitize.Text(*in.Title)
		n := utf8.RuneCountInString(s.Title)
		v.Check(n >= 3 && n <= 100, "title", "must be between 3 and 100 characters")
		set["title"] = s.Title
	}
	if in.Description != nil {
		s.Description = sanitize.Text(*in.Description)
		n := utf8.RuneCountInString(s.Description)
		v.Check(n >= 10 && n <= 2000, "description", "must be between 10 and 2000 characters")
		set["description"] = s.Description
	}
	if in.Category != nil {
		s.Category = strings.ToLower(sanitize.Text(*in.Category))
		v.Check(s.Category != "" && utf8.RuneCountInString(s.Category) <= 50, "category", "must be between 1 and 50 characters")
		set["category"] = s.Category
	}
	if in.Level != nil {
		s.Level = strings.ToLower(strings.TrimSpace(*in.Level))
		v.Check(models.ValidLevel(s.Level), "level", "must be beginner, intermediate or advanced")
		set["level"] = s.Level
	}
	return set
}

func (s *Service) Create(ctx context.Context, instructor primitive.ObjectID, in SkillInput) (*models.SkillView, error) {
	sk := &models.Skill{
		Instructor:  instructor,
		Level:       models.LevelBeginner,
		Enrollments: []models.Enrollment{},
		Reviews:     []models.Review{},
	}
	var v apperrors.Validation
	v.Check(in.Title != nil, "title", "is required")
	v.Check(in.Description != nil, "description", "is required")
	v.Check(in.Category != nil, "category", "is required")
	in.apply(sk, &v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sk); err != nil {
		return nil, err
	}
	return s.view(ctx, instructor, sk)
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.Skill, error) {
	sk, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sk == nil {
		return nil, fmt.Errorf("skill %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return sk, nil
}

// Get returns the skill as seen by viewer.
func (s *Service) Get(ctx context.Context, viewer, id primitive.ObjectID) (*models.SkillView, error) {
	sk, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, viewer, sk)
}

func (s *Service) List(ctx context.Context, viewer primitive.ObjectID, f Filter) (paging.Result[models.SkillView], error) {
	f.Query = strings.TrimSpace(f.Query)
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	f.Level = strings.ToLower(strings.TrimSpace(f.Level))
	if f.Level != "" && !models.ValidLevel(f.Level) {
		return paging.Result[models.SkillView]{}, apperrors.Invalid("level", "must be beginner, intermediate or advanced")
	}
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return paging.Result[models.SkillView]{}, err
	}
	views, err := s.views(ctx, viewer, list)
	if err != nil {
		return paging.Result[models.SkillView]{}, err
	}
	return paging.NewResult(views, total, f.Page), nil
}

// Enrolled lists the skills viewer is enrolled in.
func (s *Service) Enrolled(ctx context.Context, viewer primitive.ObjectID, page paging.Params) (paging.Result[models.SkillView], error) {
	return s.List(ctx, viewer, Filter{Enrolled: viewer, Page: page})
}

func (s *Service) ownedBy(ctx context.Context, user, id primitive.ObjectID) (*models.Skill, error) {
	sk, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sk.Instructor != user {
		return nil, fmt.Errorf("skill %s: %w", id.Hex(), apperrors.ErrForbidden)
	}
	return sk, nil
}

func (s *Service) Update(ctx context.Context, user, id primitive.ObjectID, in SkillInput) (*models.SkillView, error) {
	sk, err := s.ownedBy(ctx, user, id)
	if err != nil {
		return nil, err
	}
	var v apperrors.Validation
	set := in.apply(sk, &v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return s.view(ctx, user, sk)
	}
	updated, err := s.repo.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("skill %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return s.view(ctx, user, updated)
}

func (s *Service) Delete(ctx context.Context, user, id primitive.ObjectID) error {
	if _, err := s.ownedBy(ctx, user, id); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("skill %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

func (s *Service) Enroll(ctx context.Context, user, id primitive.ObjectID) (*models.SkillView, error) {
	sk, err := s.repo.Enroll(ctx, id, user, s.now())
	if err != nil {
		return nil, err
	}
	if sk == nil {
		current, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Instructor == user {
			return nil, fmt.Errorf("instructor cannot enroll in own skill: %w", apperrors.ErrForbidden)
		}
		return nil, fmt.Errorf("already enrolled in %s: %w", id.Hex(), apperrors.ErrConflict)
	}
	metrics.SkillEnrollments.Inc()
	return s.view(ctx, user, sk)
}

func (s *Service) Unenroll(ctx context.Context, user, id primitive.ObjectID) (*models.SkillView, error) {
	sk, err := s.repo.Unenroll(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if sk == nil {
		if _, err := s.load(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("not enrolled in %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return s.view(ctx, user, sk)
}

// Review records a 1..5 rating from an enrolled user.
func (s *Service) Review(ctx context.Context, user, id primitive.ObjectID, rating int, comment string) (*models.SkillView, error) {
	comment = sanitize.Text(comment)
	var v apperrors.Validation
	v.Check(rating >= 1 && rating <= 5, "rating", "must be between 1 and 5")
	v.Check(utf8.RuneCountInString(comment) <= 1000, "comment", "must be at most 1000 characters")
	if err := v.Err(); err != nil {
		return nil, err
	}
	sk, err := s.repo.AddReview(ctx, id, models.Review{User: user, Rating: rating, Comment: comment, CreatedAt: s.now()})
	if err != nil {
		return nil, err
	}
	if sk == nil {
		current, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		switch {
		case !current.IsEnrolled(user):
			return nil, fmt.Errorf("only enrolled users can review: %w", apperrors.ErrForbidden)
		case current.HasReviewed(user):
			return nil, fmt.Errorf("already reviewed %s: %w", id.Hex(), apperrors.ErrConflict)
		}
		// enrolment changed between the write and the read
		return nil, fmt.Errorf("review on %s not recorded: %w", id.Hex(), apperrors.ErrConflict)
	}
	return s.view(ctx, user, sk)
}

func (s *Service) view(ctx context.Context, viewer primitive.ObjectID, sk *models.Skill) (*models.SkillView, error) {
	views, err := s.views(ctx, viewer, []models.Skill{*sk})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) views(ctx context.Context, viewer primitive.ObjectID, list []models.Skill) ([]models.SkillView, error) {
	var ids []primitive.ObjectID
	for _, sk := range list {
		ids = append(ids, sk.Instructor)
		for _, r := range sk.Reviews {
			ids = append(ids, r.User)
		}
	}
	lookup, err := s.users.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.SkillView, 0, len(list))
	for i := range list {
		sk := &list[i]
		reviews := make([]models.ReviewView, 0, len(sk.Reviews))
		for _, r := range sk.Reviews {
			reviews = append(reviews, models.ReviewView{User: users.Summary(lookup, r.User), Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt})
		}
		out = append(out, models.SkillView{
			ID:              sk.ID,
			Title:           sk.Title,
			Description:     sk.Description,
			Category:        sk.Category,
			Level:           sk.Level,
			Instructor:      users.Summary(lookup, sk.Instructor),
			EnrollmentCount: len(sk.Enrollments),
			Enrolled:        sk.IsEnrolled(viewer),
			Reviews:         reviews,
			AverageRating:   models.AverageOf(sk.Reviews),
			CreatedAt:       sk.CreatedAt,
			UpdatedAt:       sk.UpdatedAt,
		})
	}
	return out, nil
}
