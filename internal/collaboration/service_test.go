package collaboration

import (
	"context"
	"sync"
	"testing"

	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRepo mirrors the conditional updates of MongoRepository under a mutex.
type fakeRepo struct {
	mu       sync.Mutex
	projects map[primitive.ObjectID]*models.Project
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{projects: map[primitive.ObjectID]*models.Project{}}
}

func clone(p *models.Project) *models.Project {
	cp := *p
	cp.Members = append([]primitive.ObjectID(nil), p.Members...)
	return &cp
}

func (f *fakeRepo) Create(ctx context.Context, p *models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	f.projects[p.ID] = clone(p)
	return nil
}
func (f *fakeRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	return clone(p), nil
}
func (f *fakeRepo) List(ctx context.Context, fl ProjectFilter) ([]models.Project, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for _, p := range f.projects {
		if !fl.Member.IsZero() && !p.HasMember(fl.Member) {
			continue
		}
		if fl.Status != "" && p.Status != fl.Status {
			continue
		}
		out = append(out, *clone(p))
	}
	return out, int64(len(out)), nil
}
func (f *fakeRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	if size, ok := set["teamSize"].(int); ok {
		if len(p.Members) > size {
			return nil, nil
		}
		p.TeamSize = size
	}
	if v, ok := set["title"].(string); ok {
		p.Title = v
	}
	if v, ok := set["status"].(string); ok {
		p.Status = v
	}
	return clone(p), nil
}
func (f *fakeRepo) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.projects[id]
	delete(f.projects, id)
	return ok, nil
}
func (f *fakeRepo) Join(ctx context.Context, id, user primitive.ObjectID) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok || p.Status == models.ProjectCompleted || p.HasMember(user) || len(p.Members) >= p.TeamSize {
		return nil, nil
	}
	p.Members = append(p.Members, user)
	return clone(p), nil
}
func (f *fakeRepo) RemoveMember(ctx context.Context, id, user primitive.ObjectID) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok || p.Owner == user || !p.HasMember(user) {
		return nil, nil
	}
	kept := p.Members[:0]
	for _, m := range p.Members {
		if m != user {
			kept = append(kept, m)
		}
	}
	p.Members = kept
	return clone(p), nil
}

type noUsers struct{}

func (noUsers) Lookup(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	return map[primitive.ObjectID]*models.User{}, nil
}

func ptr[T any](v T) *T { return &v }

func newProject(t *testing.T, svc *Service, owner primitive.ObjectID, size int) *models.ProjectView {
	t.Helper()
	p, err := svc.Create(context.Background(), owner, ProjectInput{
		Title:          ptr("Campus app"),
		Description:    ptr("A mobile app for campus events"),
		TeamSize:       ptr(size),
		RequiredSkills: ptr([]string{"Go", "React"}),
	})
	require.NoError(t, err)
	return p
}

func TestCreate(t *testing.T) {
	svc := NewService(newFakeRepo(), noUsers{})
	owner := primitive.NewObjectID()

	p := newProject(t, svc, owner, 3)
	require.Equal(t, owner, p.Owner.ID)
	require.Len(t, p.Members, 1)
	require.Equal(t, 2, p.OpenSpots)
	require.Equal(t, models.ProjectOpen, p.Status)
	require.Equal(t, []string{"go", "react"}, p.RequiredSkills)

	_, err := svc.Create(context.Background(), owner, ProjectInput{Title: ptr("x"), TeamSize: ptr(50)})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "title")
	require.Contains(t, verr.Fields, "description")
	require.Contains(t, verr.Fields, "teamSize")
}

func TestJoinRules(t *testing.T) {
	svc := NewService(newFakeRepo(), noUsers{})
	ctx := context.Background()
	owner := primitive.NewObjectID()
	p := newProject(t, svc, owner, 2)

	_, err := svc.Join(ctx, owner, p.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)

	joined, err := svc.Join(ctx, primitive.NewObjectID(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 0, joined.OpenSpots)

	_, err = svc.Join(ctx, primitive.NewObjectID(), p.ID)
	require.ErrorIs(t, err, apperrors.ErrProjectFull)

	_, err = svc.Join(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	done := newProject(t, svc, owner, 5)
	_, err = svc.Update(ctx, owner, done.ID, ProjectInput{Status: ptr(models.ProjectCompleted)})
	require.NoError(t, err)
	_, err = svc.Join(ctx, primitive.NewObjectID(), done.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestConcurrentJoinsNeverOverfill(t *testing.T) {
	svc := NewService(newFakeRepo(), noUsers{})
	ctx := context.Background()
	p := newProject(t, svc, primitive.NewObjectID(), 4)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, full := 0, 0
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Join(ctx, primitive.NewObjectID(), p.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else {
				assert.ErrorIs(t, err, apperrors.ErrProjectFull)
				full++
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 3, ok)
	require.Equal(t, 9, full)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 4)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := NewService(newFakeRepo(), noUsers{})
	ctx := context.Background()
	owner := primitive.NewObjectID()
	p := newProject(t, svc, owner, 3)
	_, err := svc.Join(ctx, primitive.NewObjectID(), p.ID)
	require.NoError(t, err)
	_, err = svc.Join(ctx, primitive.NewObjectID(), p.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, primitive.NewObjectID(), p.ID, ProjectInput{Title: ptr("Hijacked")})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	var verr *apperrors.ValidationError
	_, err = svc.Update(ctx, owner, p.ID, ProjectInput{TeamSize: ptr(2)})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "teamSize")

	up, err := svc.Update(ctx, owner, p.ID, ProjectInput{Title: ptr("Campus app v2"), TeamSize: ptr(5)})
	require.NoError(t, err)
	require.Equal(t, "Campus app v2", up.Title)
	require.Equal(t, 2, up.OpenSpots)

	require.ErrorIs(t, svc.Delete(ctx, primitive.NewObjectID(), p.ID), apperrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, owner, p.ID))
	_, err = svc.Get(ctx, p.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLeaveAndRemoveMember(t *testing.T) {
	svc := NewService(newFakeRepo(), noUsers{})
	ctx := context.Background()
	owner := primitive.NewObjectID()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	p := newProject(t, svc, owner, 4)
	_, err := svc.Join(ctx, a, p.ID)
	require.NoError(t, err)
	_, err = svc.Join(ctx, b, p.ID)
	require.NoError(t, err)

	_, err = svc.Leave(ctx, owner, p.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)

	left, err := svc.Leave(ctx, a, p.ID)
	require.NoError(t, err)
	require.Len(t, left.Members, 2)

	_, err = svc.Leave(ctx, a, p.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.RemoveMember(ctx, b, p.ID, owner)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	removed, err := svc.RemoveMember(ctx, owner, p.ID, b)
	require.NoError(t, err)
	require.Len(t, removed.Members, 1)

	mine, err := svc.Mine(ctx, owner, paging.Params{})
	require.NoError(t, err)
	require.Equal(t, int64(1), mine.Total)
	none, err := svc.Mine(ctx, b, paging.Params{})
	require.NoError(t, err)
	require.Empty(t, none.Items)
}

func TestProjectFilter(t *testing.T) {
	owner := primitive.NewObjectID()
	f := ProjectFilter{Query: "app", Skill: "go", Status: models.ProjectOpen, Owner: owner, Sort: SortSpots, Page: paging.Params{Page: 2, Limit: 10}}
	q := f.BSON()
	require.Len(t, q["$or"], 2)
	require.Equal(t, models.ProjectOpen, q["status"])
	require.Equal(t, owner, q["owner"])

	pl := f.Pipeline()
	require.Len(t, pl, 6)
	require.Equal(t, "$skip", pl[3][0].Key)
	require.Equal(t, int64(10), pl[3][0].Value)
	require.Equal(t, "openSpots", f.SortBSON()[0].Key)

	jf := joinFilter(owner, owner)
	require.Equal(t, bson.M{"$ne": owner}, jf["members"])
	require.Contains(t, jf, "$expr")
}
