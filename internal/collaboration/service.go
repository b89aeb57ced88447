// Package collaboration manages team projects and their membership.
package collaboration

import (
	"context"
	"fmt"
	"strings"
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

const (
	MinTeamSize = 2
	MaxTeamSize = 20
	// joinAttempts bounds retries when a join loses a race whose outcome
	// no longer explains the miss on refetch.
	joinAttempts = 3
)

// UserLookup resolves user references for population.
type UserLookup interface {
	Lookup(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
}

type Service struct {
	repo  Repository
	users UserLookup
}

func NewService(r Repository, u UserLookup) *Service {
	return &Service{repo: r, users: u}
}

// ProjectInput is the body of POST /projects. Pointer fields are optional on
// update.
type ProjectInput struct {
	Title          *string
	Description    *string
	TeamSize       *int
	RequiredSkills *[]string
	Status         *string
}

func (in ProjectInput) apply(p *models.Project, v *apperrors.Validation) {
	if in.Title != nil {
		p.Title = sanitize.Text(*in.Title)
		n := utf8.RuneCountInString(p.Title)
		v.Check(n >= 3 && n <= 100, "title", "must be between 3 and 100 characters")
	}
	if in.Description != nil {
		p.Description = sanitize.Text(*in.Description)
		n := utf8.RuneCountInString(p.Description)
		v.Check(n >= 10 && n <= 2000, "description", "must be between 10 and 2000 characters")
	}
	if in.TeamSize != nil {
		p.TeamSize = *in.TeamSize
		v.Check(p.TeamSize >= MinTeamSize && p.TeamSize <= MaxTeamSize, "teamSize", "must be between 2 and 20")
	}
	if in.RequiredSkills != nil {
		p.RequiredSkills = sanitize.Tags(*in.RequiredSkills)
		v.Check(len(p.RequiredSkills) <= 20, "requiredSkills", "must list at most 20 skills")
	}
	if in.Status != nil {
		p.Status = strings.TrimSpace(*in.Status)
		v.Check(models.ValidProjectStatus(p.Status), "status", "must be open, in-progress or completed")
	}
}

func (s *Service) Create(ctx context.Context, owner primitive.ObjectID, in ProjectInput) (*models.ProjectView, error) {
	p := &models.Project{
		Owner:          owner,
		Members:        []primitive.ObjectID{owner},
		RequiredSkills: []string{},
		Status:         models.ProjectOpen,
	}
	var v apperrors.Validation
	v.Check(in.Title != nil, "title", "is required")
	v.Check(in.Description != nil, "description", "is required")
	v.Check(in.TeamSize != nil, "teamSize", "is required")
	in.apply(p, &v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("project %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.ProjectView, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *Service) List(ctx context.Context, f ProjectFilter) (paging.Result[models.ProjectView], error) {
	f.Query = strings.TrimSpace(f.Query)
	f.Skill = strings.ToLower(strings.TrimSpace(f.Skill))
	if f.Status != "" && !models.ValidProjectStatus(f.Status) {
		return paging.Result[models.ProjectView]{}, apperrors.Invalid("status", "must be open, in-progress or completed")
	}
	projects, total, err := s.repo.List(ctx, f)
	if err != nil {
		return paging.Result[models.ProjectView]{}, err
	}
	views, err := s.views(ctx, projects)
	if err != nil {
		return paging.Result[models.ProjectView]{}, err
	}
	return paging.NewResult(views, total, f.Page), nil
}

// Mine lists projects the user owns or has joined.
func (s *Service) Mine(ctx context.Context, user primitive.ObjectID, page paging.Params) (paging.Result[models.ProjectView], error) {
	return s.List(ctx, ProjectFilter{Member: user, Page: page})
}

func (s *Service) Update(ctx context.Context, user, id primitive.ObjectID, in ProjectInput) (*models.ProjectView, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Owner != user {
		return nil, fmt.Errorf("project %s: %w", id.Hex(), apperrors.ErrForbidden)
	}
	next := *current
	var v apperrors.Validation
	in.apply(&next, &v)
	if in.TeamSize != nil {
		v.Check(next.TeamSize >= len(current.Members), "teamSize", "cannot be below the current member count")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	set := bson.M{}
	if in.Title != nil {
		set["title"] = next.Title
	}
	if in.Description != nil {
		set["description"] = next.Description
	}
	if in.TeamSize != nil {
		set["teamSize"] = next.TeamSize
	}
	if in.RequiredSkills != nil {
		set["requiredSkills"] = next.RequiredSkills
	}
	if in.Status != nil {
		set["status"] = next.Status
	}
	if len(set) == 0 {
		return s.view(ctx, current)
	}
	updated, err := s.repo.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// members joined between the check and the write
		return nil, fmt.Errorf("team size below member count: %w", apperrors.ErrConflict)
	}
	return s.view(ctx, updated)
}

func (s *Service) Delete(ctx context.Context, user, id primitive.ObjectID) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if p.Owner != user {
		return fmt.Errorf("project %s: %w", id.Hex(), apperrors.ErrForbidden)
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("project %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// Join adds user to the project in a single conditional update. When the
// update does not match, the refetched project explains why.
func (s *Service) Join(ctx context.Context, user, id primitive.ObjectID) (*models.ProjectView, error) {
	for i := 0; i < joinAttempts; i++ {
		p, err := s.repo.Join(ctx, id, user)
		if err != nil {
			return nil, err
		}
		if p != nil {
			metrics.ProjectJoins.Inc()
			return s.view(ctx, p)
		}
		current, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		switch {
		case current.HasMember(user):
			return nil, fmt.Errorf("already a member of %s: %w", id.Hex(), apperrors.ErrConflict)
		case current.Status == models.ProjectCompleted:
			return nil, fmt.Errorf("project %s is completed: %w", id.Hex(), apperrors.ErrInvalidState)
		case current.OpenSpots() == 0:
			return nil, fmt.Errorf("project %s: %w", id.Hex(), apperrors.ErrProjectFull)
		}
	}
	return nil, fmt.Errorf("project %s: %w", id.Hex(), apperrors.ErrConflict)
}

// Leave removes user from a project it does not own.
func (s *Service) Leave(ctx context.Context, user, id primitive.ObjectID) (*models.ProjectView, error) {
	return s.remove(ctx, id, user)
}

// RemoveMember lets the owner drop another member.
func (s *Service) RemoveMember(ctx context.Context, owner, id, member primitive.ObjectID) (*models.ProjectView, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Owner != owner {
		return nil, fmt.Errorf("project %s: %w", id.Hex(), apperrors.ErrForbidden)
	}
	return s.remove(ctx, id, member)
}

func (s *Service) remove(ctx context.Context, id, member primitive.ObjectID) (*models.ProjectView, error) {
	p, err := s.repo.RemoveMember(ctx, id, member)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return s.view(ctx, p)
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Owner == member {
		return nil, fmt.Errorf("owner cannot leave project %s: %w", id.Hex(), apperrors.ErrInvalidState)
	}
	return nil, fmt.Errorf("user %s is not a member: %w", member.Hex(), apperrors.ErrNotFound)
}

func (s *Service) view(ctx context.Context, p *models.Project) (*models.ProjectView, error) {
	views, err := s.views(ctx, []models.Project{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) views(ctx context.Context, projects []models.Project) ([]models.ProjectView, error) {
	var ids []primitive.ObjectID
	for _, p := range projects {
		ids = append(ids, p.Owner)
		ids = append(ids, p.Members...)
	}
	lookup, err := s.users.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProjectView, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		members := make([]models.UserSummary, 0, len(p.Members))
		for _, m := range p.Members {
			members = append(members, users.Summary(lookup, m))
		}
		skills := p.RequiredSkills
		if skills == nil {
			skills = []string{}
		}
		out = append(out, models.ProjectView{
			ID:             p.ID,
			Title:          p.Title,
			Description:    p.Description,
			Owner:          users.Summary(lookup, p.Owner),
			Members:        members,
			TeamSize:       p.TeamSize,
			OpenSpots:      p.OpenSpots(),
			RequiredSkills: skills,
			Status:         p.Status,
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
		})
	}
	return out, nil
}
