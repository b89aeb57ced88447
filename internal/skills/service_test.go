package skills

import (
	"context"
	"testing"
	"time"

	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRepo struct {
	skills map[primitive.ObjectID]*models.Skill
}

func newFakeRepo() *fakeRepo { return &fakeRepo{skills: map[primitive.ObjectID]*models.Skill{}} }

func clone(s *models.Skill) *models.Skill {
	cp := *s
	cp.Enrollments = append([]models.Enrollment(nil), s.Enrollments...)
	cp.Reviews = append([]models.Review(nil), s.Reviews...)
	return &cp
}

func (f *fakeRepo) Create(ctx context.Context, s *models.Skill) error {
	s.ID = primitive.NewObjectID()
	f.skills[s.ID] = clone(s)
	return nil
}
func (f *fakeRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Skill, error) {
	s, ok := f.skills[id]
	if !ok {
		return nil, nil
	}
	return clone(s), nil
}
func (f *fakeRepo) List(ctx context.Context, fl Filter) ([]models.Skill, int64, error) {
	var out []models.Skill
	for _, s := range f.skills {
		if !fl.Enrolled.IsZero() && !s.IsEnrolled(fl.Enrolled) {
			continue
		}
		if fl.Level != "" && s.Level != fl.Level {
			continue
		}
		out = append(out, *clone(s))
	}
	return out, int64(len(out)), nil
}
func (f *fakeRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Skill, error) {
	s, ok := f.skills[id]
	if !ok {
		return nil, nil
	}
	if v, ok := set["title"].(string); ok {
		s.Title = v
	}
	if v, ok := set["level"].(string); ok {
		s.Level = v
	}
	return clone(s), nil
}
func (f *fakeRepo) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := f.skills[id]
	delete(f.skills, id)
	return ok, nil
}
func (f *fakeRepo) Enroll(ctx context.Context, id, user primitive.ObjectID, at time.Time) (*models.Skill, error) {
	s, ok := f.skills[id]
	if !ok || s.Instructor == user || s.IsEnrolled(user) {
		return nil, nil
	}
	s.Enrollments = append(s.Enrollments, models.Enrollment{User: user, EnrolledAt: at})
	return clone(s), nil
}
func (f *fakeRepo) Unenroll(ctx context.Context, id, user primitive.ObjectID) (*models.Skill, error) {
	s, ok := f.skills[id]
	if !ok || !s.IsEnrolled(user) {
		return nil, nil
	}
	var kept []models.Enrollment
	for _, e := range s.Enrollments {
		if e.User != user {
			kept = append(kept, e)
		}
	}
	s.Enrollments = kept
	return clone(s), nil
}
func (f *fakeRepo) AddReview(ctx context.Context, id primitive.ObjectID, r models.Review) (*models.Skill, error) {
	s, ok := f.skills[id]
	if !ok || !s.IsEnrolled(r.User) || s.HasReviewed(r.User) {
		return nil, nil
	}
	s.Reviews = append(s.Reviews, r)
	s.AverageRating = models.AverageOf(s.Reviews)
	return clone(s), nil
}

type noUsers struct{}

func (noUsers) Lookup(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	return nil, nil
}

func ptr[T any](v T) *T { return &v }

func newSkill(t *testing.T, svc *Service, instructor primitive.ObjectID) *models.SkillView {
	t.Helper()
	sk, err := svc.Create(context.Background(), instructor, SkillInput{
		Title:       ptr("Intro to Go"),
		Description: ptr("Types, interfaces and goroutines"),
		Category:    ptr("Programming"),
		Level:       ptr("Intermediate"),
	})
	require.NoError(t, err)
	return sk
}

func TestCreateAndUpdate(t *testing.T) {
	svc := NewService(newFakeRepo(), noUsers{})
	ctx := context.Background()
	instructor := primitive.NewObjectID()

	sk := newSkill(t, svc, instructor)
	require.Equal(t, "programming", sk.Category)
	require.Equal(t, models.LevelIntermediate, sk.Level)
	require.Equal(t, instructor, sk.Instructor.ID)
	require.NotNil(t, sk.Reviews)

	_, err := svc.Create(ctx, instructor, SkillInput{Title: ptr("Go"), Level: ptr("guru")})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "title")
	require.Contains(t, verr.Fields, "level")
	require.Contains(t, verr.Fields, "category")

	_, err = svc.Update(ctx, primitive.NewObjectID(), sk.ID, SkillInput{Title: ptr("Stolen")})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	up, err := svc.Update(ctx, instructor, sk.ID, SkillInput{Level: ptr("advanced")})
	require.NoError(t, err)
	require.Equal(t, models.LevelAdvanced, up.Level)

	require.ErrorIs(t, svc.Delete(ctx, primitive.NewObjectID(), sk.ID), apperrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, instructor, sk.ID))
	_, err = svc.Get(ctx, instructor, sk.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEnrollment(t *testing.T) {
	svc := NewService(newFakeRepo(), noUsers{})
	ctx := context.Background()
	instructor, learner := primitive.NewObjectID(), primitive.NewObjectID()
	sk := newSkill(t, svc, instructor)

	_, err := svc.Enroll(ctx, instructor, sk.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	got, err := svc.Enroll(ctx, learner, sk.ID)
	require.NoError(t, err)
	require.True(t, got.Enrolled)
	require.Equal(t, 1, got.EnrollmentCount)

	_, err = svc.Enroll(ctx, learner, sk.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)

	enrolled, err := svc.Enrolled(ctx, learner, paging.Params{})
	require.NoError(t, err)
	require.Equal(t, int64(1), enrolled.Total)

	left, err := svc.Unenroll(ctx, learner, sk.ID)
	require.NoError(t, err)
	require.False(t, left.Enrolled)

	_, err = svc.Unenroll(ctx, learner, sk.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Enroll(ctx, learner, primitive.NewObjectID())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviews(t *testing.T) {
	svc := NewService(newFakeRepo(), noUsers{})
	ctx := context.Background()
	instructor := primitive.NewObjectID()
	a, b, outsider := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	sk := newSkill(t, svc, instructor)
	for _, u := range []primitive.ObjectID{a, b} {
		_, err := svc.Enroll(ctx, u, sk.ID)
		require.NoError(t, err)
	}

	_, err := svc.Review(ctx, outsider, sk.ID, 5, "great")
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.Review(ctx, a, sk.ID, 6, "")
	require.Error(t, err)

	_, err = svc.Review(ctx, a, sk.ID, 5, "Great <b>course</b>")
	require.NoError(t, err)
	got, err := svc.Review(ctx, b, sk.ID, 4, "")
	require.NoError(t, err)
	require.Equal(t, 4.5, got.AverageRating)
	require.Len(t, got.Reviews, 2)
	require.Equal(t, "Great course", got.Reviews[0].Comment)

	_, err = svc.Review(ctx, a, sk.ID, 1, "changed my mind")
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestListRejectsUnknownLevel(t *testing.T) {
	svc := NewService(newFakeRepo(), noUsers{})
	_, err := svc.List(context.Background(), primitive.NilObjectID, Filter{Level: "expert"})
	require.Error(t, err)
}

func TestFilterPipeline(t *testing.T) {
	instructor := primitive.NewObjectID()
	f := Filter{Query: "go", Category: "programming", Level: "beginner", Instructor: instructor, Sort: SortPopular}
	q := f.BSON()
	require.Len(t, q["$or"], 3)
	require.Equal(t, "beginner", q["level"])
	require.Equal(t, instructor, q["instructor"])
	require.Equal(t, "enrollmentCount", f.SortBSON()[0].Key)
	require.Equal(t, "averageRating", Filter{Sort: SortRating}.SortBSON()[0].Key)
	require.Len(t, f.Pipeline(), 6)
}

// lostReviewRepo reports every conditional review write as unmatched, as when
// a concurrent request wins the update.
type lostReviewRepo struct{ *fakeRepo }

func (lostReviewRepo) AddReview(context.Context, primitive.ObjectID, models.Review) (*models.Skill, error) {
	return nil, nil
}

func TestReview_UnmatchedWriteIsConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(lostReviewRepo{repo}, noUsers{})
	ctx := context.Background()
	sk := newSkill(t, svc, primitive.NewObjectID())
	learner := primitive.NewObjectID()
	_, err := svc.Enroll(ctx, learner, sk.ID)
	require.NoError(t, err)

	_, err = svc.Review(ctx, learner, sk.ID, 4, "")
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestView_AverageFollowsReviews(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, noUsers{})
	ctx := context.Background()
	sk := newSkill(t, svc, primitive.NewObjectID())

	stored := repo.skills[sk.ID]
	stored.Reviews = []models.Review{{User: primitive.NewObjectID(), Rating: 5}, {User: primitive.NewObjectID(), Rating: 2}}
	stored.AverageRating = 0

	got, err := svc.Get(ctx, primitive.NewObjectID(), sk.ID)
	require.NoError(t, err)
	require.Equal(t, 3.5, got.AverageRating)
}
