package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge/backend/api/internal/mentorship"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"github.com/skillbridge/skillbridge/backend/api/internal/profiles"
	"github.com/skillbridge/skillbridge/backend/api/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MentorDirectory lists and fetches mentor profiles.
type MentorDirectory interface {
	ListMentors(ctx context.Context, f profiles.MentorFilter) (paging.Result[models.MentorView], error)
	Mentor(ctx context.Context, user primitive.ObjectID) (*models.MentorView, error)
}

// MentorshipService is the request workflow behind /api/Mentor/requests.
type MentorshipService interface {
	Create(ctx context.Context, student *models.User, in mentorship.CreateInput) (*models.MentorshipRequestView, error)
	Incoming(ctx context.Context, mentor *models.User, status string) ([]models.MentorshipRequestView, error)
	Outgoing(ctx context.Context, student *models.User, status string) ([]models.MentorshipRequestView, error)
	Respond(ctx context.Context, mentor *models.User, id primitive.ObjectID, status, response string) (*models.MentorshipRequestView, error)
	Cancel(ctx context.Context, student *models.User, id primitive.ObjectID) error
}

// UserGetter loads the authenticated user.
type UserGetter interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type mentorListQuery struct {
	pageQuery
	Query         string `form:"q" binding:"max=100"`
	Expertise     string `form:"expertise" binding:"max=50"`
	MinExperience int    `form:"minExperience" binding:"min=0,max=60"`
	Sort          string `form:"sort" binding:"omitempty,oneof=newest experience"`
}

type requestStatusQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending accepted rejected"`
}

type createRequestBody struct {
	MentorID string `json:"mentorId" binding:"required,objectid"`
	Topic    string `json:"topic" binding:"required,max=100"`
	Message  string `json:"message" binding:"required,max=1000"`
}

type respondRequestBody struct {
	Status   string `json:"status" binding:"required,oneof=accepted rejected"`
	Response string `json:"response" binding:"max=1000"`
}

type MentorHandler struct {
	mentors  MentorDirectory
	requests MentorshipService
	users    UserGetter
}

func NewMentorHandler(m MentorDirectory, r MentorshipService, u UserGetter) *MentorHandler {
	return &MentorHandler{mentors: m, requests: r, users: u}
}

// Register routes under /api/Mentor; every route requires auth.
func (h *MentorHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	m := rg.Group("/Mentor", auth)
	m.GET("", h.List)
	m.GET("/", h.List)
	m.GET("/:id", h.Get)

	student := middleware.RequireRole(models.RoleStudent)
	mentor := middleware.RequireRole(models.RoleMentor)
	m.POST("/requests", student, h.CreateRequest)
	m.GET("/requests/incoming", mentor, h.Incoming)
	m.GET("/requests/outgoing", student, h.Outgoing)
	m.PATCH("/requests/:id", mentor, h.RespondRequest)
	m.DELETE("/requests/:id", student, h.CancelRequest)
}

// me loads the caller's user document.
func (h *MentorHandler) me(c *gin.Context) (*models.User, bool) {
	uid, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	u, err := h.users.Get(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return u, true
}

func (h *MentorHandler) List(c *gin.Context) {
	var q mentorListQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := h.mentors.ListMentors(c.Request.Context(), profiles.MentorFilter{
		Query:         q.Query,
		Expertise:     q.Expertise,
		MinExperience: q.MinExperience,
		Sort:          q.Sort,
		Page:          q.params(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *MentorHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.mentors.Mentor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MentorHandler) CreateRequest(c *gin.Context) {
	var body createRequestBody
	if !bindJSON(c, &body) {
		return
	}
	me, ok := h.me(c)
	if !ok {
		return
	}
	mentorID, _ := primitive.ObjectIDFromHex(body.MentorID)
	v, err := h.requests.Create(c.Request.Context(), me, mentorship.CreateInput{Mentor: mentorID, Topic: body.Topic, Message: body.Message})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *MentorHandler) Incoming(c *gin.Context) {
	var q requestStatusQuery
	if !bindQuery(c, &q) {
		return
	}
	me, ok := h.me(c)
	if !ok {
		return
	}
	list, err := h.requests.Incoming(c.Request.Context(), me, q.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *MentorHandler) Outgoing(c *gin.Context) {
	var q requestStatusQuery
	if !bindQuery(c, &q) {
		return
	}
	me, ok := h.me(c)
	if !ok {
		return
	}
	list, err := h.requests.Outgoing(c.Request.Context(), me, q.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *MentorHandler) RespondRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body respondRequestBody
	if !bindJSON(c, &body) {
		return
	}
	me, ok := h.me(c)
	if !ok {
		return
	}
	v, err := h.requests.Respond(c.Request.Context(), me, id, body.Status, body.Response)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *MentorHandler) CancelRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	me, ok := h.me(c)
	if !ok {
		return
	}
	if err := h.requests.Cancel(c.Request.Context(), me, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
