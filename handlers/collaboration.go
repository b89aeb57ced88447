package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge/backend/api/internal/collaboration"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectService is the project API behind /api/Collaboration.
type ProjectService interface {
	Create(ctx context.Context, owner primitive.ObjectID, in collaboration.ProjectInput) (*models.ProjectView, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.ProjectView, error)
	List(ctx context.Context, f collaboration.ProjectFilter) (paging.Result[models.ProjectView], error)
	Mine(ctx context.Context, user primitive.ObjectID, page paging.Params) (paging.Result[models.ProjectView], error)
	Update(ctx context.Context, user, id primitive.ObjectID, in collaboration.ProjectInput) (*models.ProjectView, error)
	Delete(ctx context.Context, user, id primitive.ObjectID) error
	Join(ctx context.Context, user, id primitive.ObjectID) (*models.ProjectView, error)
	Leave(ctx context.Context, user, id primitive.ObjectID) (*models.ProjectView, error)
	RemoveMember(ctx context.Context, owner, id, member primitive.ObjectID) (*models.ProjectView, error)
}

type projectListQuery struct {
	pageQuery
	Query  string `form:"q" binding:"max=100"`
	Skill  string `form:"skill" binding:"max=50"`
	Status string `form:"status" binding:"omitempty,oneof=open in-progress completed"`
	Owner  string `form:"owner" binding:"omitempty,objectid"`
	Sort   string `form:"sort" binding:"omitempty,oneof=newest oldest title spots"`
}

type createProjectBody struct {
	Title          string   `json:"title" binding:"required,min=3,max=100"`
	Description    string   `json:"description" binding:"required,min=10,max=2000"`
	TeamSize       int      `json:"teamSize" binding:"required,min=2,max=20"`
	RequiredSkills []string `json:"requiredSkills" binding:"max=20"`
	Status         *string  `json:"status" binding:"omitempty,oneof=open in-progress completed"`
}

type updateProjectBody struct {
	Title          *string   `json:"title" binding:"omitempty,min=3,max=100"`
	Description    *string   `json:"description" binding:"omitempty,min=10,max=2000"`
	TeamSize       *int      `json:"teamSize" binding:"omitempty,min=2,max=20"`
	RequiredSkills *[]string `json:"requiredSkills" binding:"omitempty,max=20"`
	Status         *string   `json:"status" binding:"omitempty,oneof=open in-progress completed"`
}

type CollaborationHandler struct {
	projects ProjectService
}

func NewCollaborationHandler(p ProjectService) *CollaborationHandler {
	return &CollaborationHandler{projects: p}
}

// Register routes under /api/Collaboration; every route requires auth.
func (h *CollaborationHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	p := rg.Group("/Collaboration/projects", auth)
	p.GET("", h.List)
	p.GET("/mine", h.Mine)
	p.POST("", h.Create)
	p.GET("/:id", h.Get)
	p.PUT("/:id", h.Update)
	p.DELETE("/:id", h.Delete)
	p.POST("/:id/join", h.Join)
	p.POST("/:id/leave", h.Leave)
	p.DELETE("/:id/members/:userId", h.RemoveMember)
}

func (h *CollaborationHandler) List(c *gin.Context) {
	var q projectListQuery
	if !bindQuery(c, &q) {
		return
	}
	owner, _ := primitive.ObjectIDFromHex(q.Owner)
	res, err := h.projects.List(c.Request.Context(), collaboration.ProjectFilter{
		Query:  q.Query,
		Skill:  q.Skill,
		Status: q.Status,
		Owner:  owner,
		Sort:   q.Sort,
		Page:   q.params(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CollaborationHandler) Mine(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := h.projects.Mine(c.Request.Context(), uid, q.params())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CollaborationHandler) Create(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var body createProjectBody
	if !bindJSON(c, &body) {
		return
	}
	in := collaboration.ProjectInput{
		Title:       &body.Title,
		Description: &body.Description,
		TeamSize:    &body.TeamSize,
		Status:      body.Status,
	}
	if body.RequiredSkills != nil {
		in.RequiredSkills = &body.RequiredSkills
	}
	p, err := h.projects.Create(c.Request.Context(), uid, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *CollaborationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *CollaborationHandler) Update(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body updateProjectBody
	if !bindJSON(c, &body) {
		return
	}
	p, err := h.projects.Update(c.Request.Context(), uid, id, collaboration.ProjectInput(body))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *CollaborationHandler) Delete(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), uid, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// membership runs one of the join/leave operations for the caller.
func (h *CollaborationHandler) membership(c *gin.Context, op func(ctx context.Context, user, id primitive.ObjectID) (*models.ProjectView, error)) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := op(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *CollaborationHandler) Join(c *gin.Context)  { h.membership(c, h.projects.Join) }
func (h *CollaborationHandler) Leave(c *gin.Context) { h.membership(c, h.projects.Leave) }

func (h *CollaborationHandler) RemoveMember(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	member, ok := pathID(c, "userId")
	if !ok {
		return
	}
	p, err := h.projects.RemoveMember(c.Request.Context(), uid, id, member)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
