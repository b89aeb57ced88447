package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"github.com/skillbridge/skillbridge/backend/api/internal/skills"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SkillService is the skill exchange API behind /api/Skill-Exchange.
type SkillService interface {
	Create(ctx context.Context, instructor primitive.ObjectID, in skills.SkillInput) (*models.SkillView, error)
	Get(ctx context.Context, viewer, id primitive.ObjectID) (*models.SkillView, error)
	List(ctx context.Context, viewer primitive.ObjectID, f skills.Filter) (paging.Result[models.SkillView], error)
	Enrolled(ctx context.Context, viewer primitive.ObjectID, page paging.Params) (paging.Result[models.SkillView], error)
	Update(ctx context.Context, user, id primitive.ObjectID, in skills.SkillInput) (*models.SkillView, error)
	Delete(ctx context.Context, user, id primitive.ObjectID) error
	Enroll(ctx context.Context, user, id primitive.ObjectID) (*models.SkillView, error)
	Unenroll(ctx context.Context, user, id primitive.ObjectID) (*models.SkillView, error)
	Review(ctx context.Context, user, id primitive.ObjectID, rating int, comment string) (*models.SkillView, error)
}

type skillListQuery struct {
	pageQuery
	Query      string `form:"q" binding:"max=100"`
	Category   string `form:"category" binding:"max=50"`
	Level      string `form:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Instructor string `form:"instructor" binding:"omitempty,objectid"`
	Sort       string `form:"sort" binding:"omitempty,oneof=newest rating popular title"`
}

type skillBody struct {
	Title       *string `json:"title" binding:"omitempty,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,min=10,max=2000"`
	Category    *string `json:"category" binding:"omitempty,max=50"`
	Level       *string `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
}

type reviewBody struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=1000"`
}

type SkillHandler struct {
	skills SkillService
}

func NewSkillHandler(s SkillService) *SkillHandler {
	return &SkillHandler{skills: s}
}

// Register routes under /api/Skill-Exchange; every route requires auth.
func (h *SkillHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	s := rg.Group("/Skill-Exchange/skills", auth)
	s.GET("", h.List)
	s.GET("/enrolled", h.Enrolled)
	s.POST("", h.Create)
	s.GET("/:id", h.Get)
	s.PUT("/:id", h.Update)
	s.DELETE("/:id", h.Delete)
	s.POST("/:id/enroll", h.Enroll)
	s.DELETE("/:id/enroll", h.Unenroll)
	s.POST("/:id/reviews", h.Review)
}

func (h *SkillHandler) List(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var q skillListQuery
	if !bindQuery(c, &q) {
		return
	}
	instructor, _ := primitive.ObjectIDFromHex(q.Instructor)
	res, err := h.skills.List(c.Request.Context(), uid, skills.Filter{
		Query:      q.Query,
		Category:   q.Category,
		Level:      q.Level,
		Instructor: instructor,
		Sort:       q.Sort,
		Page:       q.params(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SkillHandler) Enrolled(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := h.skills.Enrolled(c.Request.Context(), uid, q.params())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SkillHandler) Create(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var body skillBody
	if !bindJSON(c, &body) {
		return
	}
	sk, err := h.skills.Create(c.Request.Context(), uid, skills.SkillInput(body))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sk)
}

// withSkill resolves the caller and the :id path parameter.
func withSkill(c *gin.Context) (user, id primitive.ObjectID, ok bool) {
	if user, ok = currentUserID(c); !ok {
		return
	}
	id, ok = pathID(c, "id")
	return
}

func (h *SkillHandler) Get(c *gin.Context) {
	uid, id, ok := withSkill(c)
	if !ok {
		return
	}
	sk, err := h.skills.Get(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sk)
}

func (h *SkillHandler) Update(c *gin.Context) {
	uid, id, ok := withSkill(c)
	if !ok {
		return
	}
	var body skillBody
	if !bindJSON(c, &body) {
		return
	}
	sk, err := h.skills.Update(c.Request.Context(), uid, id, skills.SkillInput(body))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sk)
}

func (h *SkillHandler) Delete(c *gin.Context) {
	uid, id, ok := withSkill(c)
	if !ok {
		return
	}
	if err := h.skills.Delete(c.Request.Context(), uid, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SkillHandler) Enroll(c *gin.Context) {
	uid, id, ok := withSkill(c)
	if !ok {
		return
	}
	sk, err := h.skills.Enroll(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sk)
}

func (h *SkillHandler) Unenroll(c *gin.Context) {
	uid, id, ok := withSkill(c)
	if !ok {
		return
	}
	sk, err := h.skills.Unenroll(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sk)
}

func (h *SkillHandler) Review(c *gin.Context) {
	uid, id, ok := withSkill(c)
	if !ok {
		return
	}
	var body reviewBody
	if !bindJSON(c, &body) {
		return
	}
	sk, err := h.skills.Review(c.Request.Context(), uid, id, body.Rating, body.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sk)
}
