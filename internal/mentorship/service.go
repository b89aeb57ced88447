// Package mentorship implements the student to mentor request workflow.
package mentorship

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/users"
	"github.com/skillbridge/skillbridge/backend/api/pkg/metrics"
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
	now   func() time.Time
}

func NewService(r Repository, u UserLookup) *Service {
	return &Service{repo: r, users: u, now: func() time.Time { return time.Now().UTC() }}
}

// CreateInput is the body of POST /api/Mentor/requests.
type CreateInput struct {
	Mentor  primitive.ObjectID
	Topic   string
	Message string
}

// Create files a request from student to a mentor.
func (s *Service) Create(ctx context.Context, student *models.User, in CreateInput) (*models.MentorshipRequestView, error) {
	if !users.IsRole(student, models.RoleStudent) {
		return nil, fmt.Errorf("only students can request mentorship: %w", apperrors.ErrForbidden)
	}
	topic := sanitize.Text(in.Topic)
	message := sanitize.Text(in.Message)
	var v apperrors.Validation
	v.Check(topic != "", "topic", "is required")
	v.Check(utf8.RuneCountInString(topic) <= 100, "topic", "must be at most 100 characters")
	v.Check(message != "", "message", "is required")
	v.Check(utf8.RuneCountInString(message) <= 1000, "message", "must be at most 1000 characters")
	if err := v.Err(); err != nil {
		return nil, err
	}

	mentor, err := s.users.Get(ctx, in.Mentor)
	if err != nil {
		return nil, err
	}
	if !users.IsRole(mentor, models.RoleMentor) {
		return nil, apperrors.Invalid("mentorId", "user is not a mentor")
	}
	pending, err := s.repo.HasPending(ctx, student.ID, mentor.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("pending request to %s: %w", mentor.ID.Hex(), apperrors.ErrConflict)
	}

	req := &models.MentorshipRequest{
		Student:   student.ID,
		Mentor:    mentor.ID,
		Topic:     topic,
		Message:   message,
		Status:    models.RequestPending,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	metrics.MentorshipRequests.WithLabelValues(models.RequestPending).Inc()
	view := toView(req, map[primitive.ObjectID]*models.User{student.ID: student, mentor.ID: mentor})
	return &view, nil
}

// Incoming lists requests addressed to mentor.
func (s *Service) Incoming(ctx context.Context, mentor *models.User, status string) ([]models.MentorshipRequestView, error) {
	if !users.IsRole(mentor, models.RoleMentor) {
		return nil, fmt.Errorf("only mentors receive requests: %w", apperrors.ErrForbidden)
	}
	return s.list(ctx, ListFilter{Mentor: mentor.ID, Status: status})
}

// Outgoing lists requests sent by student.
func (s *Service) Outgoing(ctx context.Context, student *models.User, status string) ([]models.MentorshipRequestView, error) {
	if !users.IsRole(student, models.RoleStudent) {
		return nil, fmt.Errorf("only students send requests: %w", apperrors.ErrForbidden)
	}
	return s.list(ctx, ListFilter{Student: student.ID, Status: status})
}

func validStatus(s string) bool {
	switch s {
	case models.RequestPending, models.RequestAccepted, models.RequestRejected:
		return true
	}
	return false
}

func (s *Service) list(ctx context.Context, f ListFilter) ([]models.MentorshipRequestView, error) {
	if f.Status != "" && !validStatus(f.Status) {
		return nil, apperrors.Invalid("status", "must be pending, accepted or rejected")
	}
	reqs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, 2*len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.Student, r.Mentor)
	}
	lookup, err := s.users.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.MentorshipRequestView, 0, len(reqs))
	for i := range reqs {
		out = append(out, toView(&reqs[i], lookup))
	}
	return out, nil
}

// Respond accepts or rejects a pending request addressed to mentor.
func (s *Service) Respond(ctx context.Context, mentor *models.User, id primitive.ObjectID, status, response string) (*models.MentorshipRequestView, error) {
	if status != models.RequestAccepted && status != models.RequestRejected {
		return nil, apperrors.Invalid("status", "must be accepted or rejected")
	}
	response = sanitize.Text(response)
	if utf8.RuneCountInString(response) > 1000 {
		return nil, apperrors.Invalid("response", "must be at most 1000 characters")
	}
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Mentor != mentor.ID {
		return nil, fmt.Errorf("request %s: %w", id.Hex(), apperrors.ErrForbidden)
	}
	if req.Status != models.RequestPending {
		return nil, fmt.Errorf("request is %s: %w", req.Status, apperrors.ErrInvalidState)
	}
	updated, err := s.repo.Respond(ctx, id, status, response, s.now())
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("request %s already answered: %w", id.Hex(), apperrors.ErrInvalidState)
	}
	metrics.MentorshipRequests.WithLabelValues(status).Inc()
	lookup, err := s.users.Lookup(ctx, []primitive.ObjectID{updated.Student, updated.Mentor})
	if err != nil {
		return nil, err
	}
	view := toView(updated, lookup)
	return &view, nil
}

// Cancel deletes a pending request sent by student.
func (s *Service) Cancel(ctx context.Context, student *models.User, id primitive.ObjectID) error {
	req, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if req.Student != student.ID {
		return fmt.Errorf("request %s: %w", id.Hex(), apperrors.ErrForbidden)
	}
	if req.Status != models.RequestPending {
		return fmt.Errorf("request is %s: %w", req.Status, apperrors.ErrInvalidState)
	}
	ok, err := s.repo.DeletePending(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("request %s already answered: %w", id.Hex(), apperrors.ErrInvalidState)
	}
	return nil
}

func (s *Service) get(ctx context.Context, id primitive.ObjectID) (*models.MentorshipRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("request %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return req, nil
}

func toView(r *models.MentorshipRequest, lookup map[primitive.ObjectID]*models.User) models.MentorshipRequestView {
	return models.MentorshipRequestView{
		ID:          r.ID,
		Student:     users.Summary(lookup, r.Student),
		Mentor:      users.Summary(lookup, r.Mentor),
		Topic:       r.Topic,
		Message:     r.Message,
		Status:      r.Status,
		Response:    r.Response,
		CreatedAt:   r.CreatedAt,
		RespondedAt: r.RespondedAt,
	}
}
