package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/mentorship"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"github.com/skillbridge/skillbridge/backend/api/internal/profiles"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubDirectory struct{ filter profiles.MentorFilter }

func (s *stubDirectory) ListMentors(ctx context.Context, f profiles.MentorFilter) (paging.Result[models.MentorView], error) {
	s.filter = f
	return paging.NewResult([]models.MentorView{}, 0, f.Page), nil
}

func (s *stubDirectory) Mentor(ctx context.Context, user primitive.ObjectID) (*models.MentorView, error) {
	return nil, fmt.Errorf("mentor %s: %w", user.Hex(), apperrors.ErrNotFound)
}

type stubRequests struct {
	created    mentorship.CreateInput
	respondErr error
}

func (s *stubRequests) Create(ctx context.Context, student *models.User, in mentorship.CreateInput) (*models.MentorshipRequestView, error) {
	s.created = in
	return &models.MentorshipRequestView{ID: primitive.NewObjectID(), Student: student.Summary(), Topic: in.Topic, Status: models.RequestPending}, nil
}

func (s *stubRequests) Incoming(ctx context.Context, mentor *models.User, status string) ([]models.MentorshipRequestView, error) {
	return []models.MentorshipRequestView{}, nil
}

func (s *stubRequests) Outgoing(ctx context.Context, student *models.User, status string) ([]models.MentorshipRequestView, error) {
	return []models.MentorshipRequestView{}, nil
}

func (s *stubRequests) Respond(ctx context.Context, mentor *models.User, id primitive.ObjectID, status, response string) (*models.MentorshipRequestView, error) {
	if s.respondErr != nil {
		return nil, s.respondErr
	}
	return &models.MentorshipRequestView{ID: id, Mentor: mentor.Summary(), Status: status, Response: response}, nil
}

func (s *stubRequests) Cancel(ctx context.Context, student *models.User, id primitive.ObjectID) error {
	return nil
}

// userTable resolves callers created with newCaller.
type userTable map[primitive.ObjectID]*models.User

func (u userTable) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if usr, ok := u[id]; ok {
		return usr, nil
	}
	return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
}

func (u userTable) add(c caller) {
	u[c.id] = &models.User{ID: c.id, Name: "user " + c.role, Email: c.id.Hex() + "@example.com", Role: c.role}
}

func mentorRouter(d *stubDirectory, r *stubRequests, users userTable) *gin.Engine {
	e := gin.New()
	NewMentorHandler(d, r, users).Register(e.Group("/api"), fakeAuth())
	return e
}

func TestMentorList(t *testing.T) {
	d := &stubDirectory{}
	me := newCaller(models.RoleStudent)
	r := mentorRouter(d, &stubRequests{}, userTable{})

	w := do(t, r, &me, http.MethodGet, "/api/Mentor?expertise=go&minExperience=3&sort=experience&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "go", d.filter.Expertise)
	require.Equal(t, 3, d.filter.MinExperience)
	require.Equal(t, 2, d.filter.Page.Page)

	w = do(t, r, &me, http.MethodGet, "/api/Mentor?minExperience=-1", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "must be at least 0", fieldsOf(t, w)["minExperience"])

	w = do(t, r, &me, http.MethodGet, "/api/Mentor/"+primitive.NewObjectID().Hex(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMentorshipRequestRoles(t *testing.T) {
	student := newCaller(models.RoleStudent)
	mentor := newCaller(models.RoleMentor)
	users := userTable{}
	users.add(student)
	users.add(mentor)
	reqs := &stubRequests{}
	r := mentorRouter(&stubDirectory{}, reqs, users)

	body := map[string]string{"mentorId": mentor.id.Hex(), "topic": "Career advice", "message": "Could we talk about backend roles?"}
	w := do(t, r, &mentor, http.MethodPost, "/api/Mentor/requests", body)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, &student, http.MethodPost, "/api/Mentor/requests", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, mentor.id, reqs.created.Mentor)

	w = do(t, r, &student, http.MethodGet, "/api/Mentor/requests/incoming", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, &mentor, http.MethodGet, "/api/Mentor/requests/incoming?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, &mentor, http.MethodGet, "/api/Mentor/requests/incoming?status=maybe", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	id := primitive.NewObjectID().Hex()
	w = do(t, r, &student, http.MethodPatch, "/api/Mentor/requests/"+id, map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, &mentor, http.MethodPatch, "/api/Mentor/requests/"+id, map[string]string{"status": "accepted", "response": "Sure"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "accepted", decode(t, w)["status"])

	w = do(t, r, &student, http.MethodDelete, "/api/Mentor/requests/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestMentorshipRequestValidation(t *testing.T) {
	student := newCaller(models.RoleStudent)
	mentor := newCaller(models.RoleMentor)
	users := userTable{}
	users.add(student)
	users.add(mentor)
	reqs := &stubRequests{respondErr: fmt.Errorf("request: %w", apperrors.ErrInvalidState)}
	r := mentorRouter(&stubDirectory{}, reqs, users)

	w := do(t, r, &student, http.MethodPost, "/api/Mentor/requests", map[string]string{"mentorId": "123", "topic": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := fieldsOf(t, w)
	require.Equal(t, "must be a valid id", fields["mentorId"])
	require.Equal(t, "is required", fields["message"])

	id := primitive.NewObjectID().Hex()
	w = do(t, r, &mentor, http.MethodPatch, "/api/Mentor/requests/"+id, map[string]string{"status": "pending"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "must be one of: accepted, rejected", fieldsOf(t, w)["status"])

	w = do(t, r, &mentor, http.MethodPatch, "/api/Mentor/requests/"+id, map[string]string{"status": "rejected"})
	require.Equal(t, http.StatusConflict, w.Code)
}
