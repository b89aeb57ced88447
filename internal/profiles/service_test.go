package profiles

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRepo struct {
	students map[primitive.ObjectID]*models.Student
	mentors  map[primitive.ObjectID]*models.Mentor
	order    []primitive.ObjectID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{students: map[primitive.ObjectID]*models.Student{}, mentors: map[primitive.ObjectID]*models.Mentor{}}
}

func (f *fakeRepo) UpsertStudent(ctx context.Context, s *models.Student) (*models.Student, error) {
	cp := *s
	f.students[s.User] = &cp
	return &cp, nil
}
func (f *fakeRepo) GetStudent(ctx context.Context, user primitive.ObjectID) (*models.Student, error) {
	return f.students[user], nil
}
func (f *fakeRepo) UpsertMentor(ctx context.Context, m *models.Mentor) (*models.Mentor, error) {
	if _, ok := f.mentors[m.User]; !ok {
		f.order = append(f.order, m.User)
	}
	cp := *m
	f.mentors[m.User] = &cp
	return &cp, nil
}
func (f *fakeRepo) GetMentor(ctx context.Context, user primitive.ObjectID) (*models.Mentor, error) {
	return f.mentors[user], nil
}

// ListMentors applies the expertise and minExperience filters in memory.
func (f *fakeRepo) ListMentors(ctx context.Context, fl MentorFilter) ([]models.Mentor, int64, error) {
	var out []models.Mentor
	for _, id := range f.order {
		m := f.mentors[id]
		if fl.MinExperience > 0 && m.ExperienceYears < fl.MinExperience {
			continue
		}
		if fl.Expertise != "" {
			found := false
			for _, e := range m.Expertise {
				found = found || e == fl.Expertise
			}
			if !found {
				continue
			}
		}
		out = append(out, *m)
	}
	if fl.Sort == "experience" {
		sort.SliceStable(out, func(i, j int) bool { return out[i].ExperienceYears > out[j].ExperienceYears })
	}
	return out, int64(len(out)), nil
}

type fakeUsers struct {
	byID map[primitive.ObjectID]*models.User
}

func (f *fakeUsers) add(role string) *models.User {
	u := &models.User{ID: primitive.NewObjectID(), Name: "user-" + role, Role: role}
	f.byID[u.ID] = u
	return u
}
func (f *fakeUsers) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	return u, nil
}
func (f *fakeUsers) Lookup(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	out := map[primitive.ObjectID]*models.User{}
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func setup() (*Service, *fakeRepo, *fakeUsers) {
	repo := newFakeRepo()
	us := &fakeUsers{byID: map[primitive.ObjectID]*models.User{}}
	return NewService(repo, us), repo, us
}

func TestCreateEmptyAndProfile(t *testing.T) {
	svc, repo, us := setup()
	ctx := context.Background()
	student := us.add(models.RoleStudent)
	mentor := us.add(models.RoleMentor)

	require.NoError(t, svc.CreateEmpty(ctx, student))
	require.NoError(t, svc.CreateEmpty(ctx, mentor))
	require.Contains(t, repo.students, student.ID)
	require.Contains(t, repo.mentors, mentor.ID)

	p, err := svc.Profile(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Student)
	require.Nil(t, p.Mentor)

	_, err = svc.Profile(ctx, primitive.NewObjectID())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateStudent(t *testing.T) {
	svc, _, us := setup()
	ctx := context.Background()
	student := us.add(models.RoleStudent)

	st, err := svc.UpdateStudent(ctx, student.ID, StudentInput{
		Institution: "<b>MIT</b>",
		YearOfStudy: 2,
		Interests:   []string{"AI", "ai", " web "},
		GitHub:      "https://github.com/someone",
	})
	require.NoError(t, err)
	require.Equal(t, "MIT", st.Institution)
	require.Equal(t, []string{"ai", "web"}, st.Interests)

	_, err = svc.UpdateStudent(ctx, student.ID, StudentInput{YearOfStudy: 42, GitHub: "javascript:alert(1)"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "yearOfStudy")
	require.Contains(t, verr.Fields, "github")
}

func TestMentorAndList(t *testing.T) {
	svc, _, us := setup()
	ctx := context.Background()
	a := us.add(models.RoleMentor)
	b := us.add(models.RoleMentor)

	_, err := svc.UpdateMentor(ctx, a.ID, MentorInput{Expertise: []string{"Go"}, ExperienceYears: 3, Company: "Acme"})
	require.NoError(t, err)
	_, err = svc.UpdateMentor(ctx, b.ID, MentorInput{Expertise: []string{"React", "go"}, ExperienceYears: 10})
	require.NoError(t, err)

	view, err := svc.Mentor(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme", view.Company)
	require.Equal(t, a.ID, view.UserInfo.ID)

	_, err = svc.Mentor(ctx, primitive.NewObjectID())
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	res, err := svc.ListMentors(ctx, MentorFilter{Expertise: " GO ", Sort: "experience", Page: paging.Params{}})
	require.NoError(t, err)
	require.Equal(t, int64(2), res.Total)
	require.Equal(t, b.ID, res.Items[0].User)
	require.Equal(t, "user-mentor", res.Items[0].UserInfo.Name)

	res, err = svc.ListMentors(ctx, MentorFilter{MinExperience: 5})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
}

func TestMentorFilterBSON(t *testing.T) {
	f := MentorFilter{Query: "c++", Expertise: "go", MinExperience: 2}
	q := f.BSON()
	or, ok := q["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)
	re := or[0].(bson.M)["expertise"].(primitive.Regex)
	require.Equal(t, `c\+\+`, re.Pattern)
	require.Equal(t, "i", re.Options)
	require.Equal(t, bson.M{"$gte": 2}, q["experienceYears"])
	require.True(t, strings.HasPrefix(q["expertise"].(primitive.Regex).Pattern, "^"))

	require.Equal(t, "experienceYears", MentorFilter{Sort: "experience"}.SortBSON()[0].Key)
	require.Equal(t, "createdAt", MentorFilter{Sort: "bogus"}.SortBSON()[0].Key)
}
