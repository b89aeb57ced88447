// Package profiles manages the student and mentor profiles attached to users.
package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"github.com/skillbridge/skillbridge/backend/api/internal/users"
	"github.com/skillbridge/skillbridge/backend/api/pkg/sanitize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserLookup resolves user references for population.
type UserLookup interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Lookup(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
}

type Service struct {
	repo  Repository
	users UserLookup
}

func NewService(r Repository, u UserLookup) *Service {
	return &Service{repo: r, users: u}
}

// CreateEmpty creates the blank role profile a new account starts with.
func (s *Service) CreateEmpty(ctx context.Context, u *models.User) error {
	var err error
	switch u.Role {
	case models.RoleStudent:
		_, err = s.repo.UpsertStudent(ctx, &models.Student{User: u.ID, Interests: []string{}, Skills: []string{}})
	case models.RoleMentor:
		_, err = s.repo.UpsertMentor(ctx, &models.Mentor{User: u.ID, Expertise: []string{}})
	}
	return err
}

// StudentInput is the body of PUT /api/User/student.
type StudentInput struct {
	Institution string
	Course      string
	YearOfStudy int
	Interests   []string
	Skills      []string
	GitHub      string
	LinkedIn    string
}

func validURL(v *apperrors.Validation, field, raw string) {
	v.Check(raw == "" || strings.HasPrefix(raw, "https://") || strings.HasPrefix(raw, "http://"), field, "must be an http(s) URL")
}

func (s *Service) UpdateStudent(ctx context.Context, user primitive.ObjectID, in StudentInput) (*models.Student, error) {
	st := &models.Student{
		User:        user,
		Institution: sanitize.Text(in.Institution),
		Course:      sanitize.Text(in.Course),
		YearOfStudy: in.YearOfStudy,
		Interests:   sanitize.Tags(in.Interests),
		Skills:      sanitize.Tags(in.Skills),
		GitHub:      strings.TrimSpace(in.GitHub),
		LinkedIn:    strings.TrimSpace(in.LinkedIn),
	}
	var v apperrors.Validation
	v.Check(st.YearOfStudy >= 0 && st.YearOfStudy <= 10, "yearOfStudy", "must be between 0 and 10")
	validURL(&v, "github", st.GitHub)
	validURL(&v, "linkedin", st.LinkedIn)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return s.repo.UpsertStudent(ctx, st)
}

// MentorInput is the body of PUT /api/User/mentor.
type MentorInput struct {
	Expertise       []string
	ExperienceYears int
	Company         string
	Designation     string
	Availability    string
	LinkedIn        string
}

func (s *Service) UpdateMentor(ctx context.Context, user primitive.ObjectID, in MentorInput) (*models.Mentor, error) {
	m := &models.Mentor{
		User:            user,
		Expertise:       sanitize.Tags(in.Expertise),
		ExperienceYears: in.ExperienceYears,
		Company:         sanitize.Text(in.Company),
		Designation:     sanitize.Text(in.Designation),
		Availability:    sanitize.Text(in.Availability),
		LinkedIn:        strings.TrimSpace(in.LinkedIn),
	}
	var v apperrors.Validation
	v.Check(m.ExperienceYears >= 0 && m.ExperienceYears <= 60, "experienceYears", "must be between 0 and 60")
	validURL(&v, "linkedin", m.LinkedIn)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return s.repo.UpsertMentor(ctx, m)
}

// Profile is a user together with its role profile.
type Profile struct {
	User    *models.User    `json:"user"`
	Student *models.Student `json:"student,omitempty"`
	Mentor  *models.Mentor  `json:"mentor,omitempty"`
}

// Profile loads the user and its role profile.
func (s *Service) Profile(ctx context.Context, user primitive.ObjectID) (*Profile, error) {
	u, err := s.users.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	p := &Profile{User: u}
	switch u.Role {
	case models.RoleStudent:
		p.Student, err = s.repo.GetStudent(ctx, user)
	case models.RoleMentor:
		p.Mentor, err = s.repo.GetMentor(ctx, user)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Mentor returns the populated mentor profile of a user.
func (s *Service) Mentor(ctx context.Context, user primitive.ObjectID) (*models.MentorView, error) {
	m, err := s.repo.GetMentor(ctx, user)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("mentor %s: %w", user.Hex(), apperrors.ErrNotFound)
	}
	u, err := s.users.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	return &models.MentorView{Mentor: *m, UserInfo: u.Summary()}, nil
}

func (s *Service) ListMentors(ctx context.Context, f MentorFilter) (paging.Result[models.MentorView], error) {
	f.Query = strings.TrimSpace(f.Query)
	f.Expertise = strings.ToLower(strings.TrimSpace(f.Expertise))
	mentors, total, err := s.repo.ListMentors(ctx, f)
	if err != nil {
		return paging.Result[models.MentorView]{}, err
	}
	ids := make([]primitive.ObjectID, 0, len(mentors))
	for _, m := range mentors {
		ids = append(ids, m.User)
	}
	lookup, err := s.users.Lookup(ctx, ids)
	if err != nil {
		return paging.Result[models.MentorView]{}, err
	}
	views := make([]models.MentorView, 0, len(mentors))
	for _, m := range mentors {
		views = append(views, models.MentorView{Mentor: m, UserInfo: users.Summary(lookup, m.User)})
	}
	return paging.NewResult(views, total, f.Page), nil
}
