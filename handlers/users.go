package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/profiles"
	"github.com/skillbridge/skillbridge/backend/api/internal/storage"
	"github.com/skillbridge/skillbridge/backend/api/internal/users"
	"github.com/skillbridge/skillbridge/backend/api/pkg/logger"
	"github.com/skillbridge/skillbridge/backend/api/pkg/metrics"
	"github.com/skillbridge/skillbridge/backend/api/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService is the subset of users.Service behind /api/User.
type UserService interface {
	UpdateProfile(ctx context.Context, id primitive.ObjectID, in users.ProfileUpdate) (*models.User, error)
	SetAvatar(ctx context.Context, id primitive.ObjectID, url, key string) (*models.User, string, error)
}

// ProfileService is the subset of profiles.Service behind /api/User.
type ProfileService interface {
	Profile(ctx context.Context, user primitive.ObjectID) (*profiles.Profile, error)
	UpdateStudent(ctx context.Context, user primitive.ObjectID, in profiles.StudentInput) (*models.Student, error)
	UpdateMentor(ctx context.Context, user primitive.ObjectID, in profiles.MentorInput) (*models.Mentor, error)
}

var avatarTypes = map[string]bool{"image/png": true, "image/jpeg": true, "image/webp": true}

type profileRequest struct {
	Name *string `json:"name" binding:"omitempty,max=50"`
	Bio  *string `json:"bio" binding:"omitempty,max=500"`
}

type studentRequest struct {
	Institution string   `json:"institution" binding:"max=100"`
	Course      string   `json:"course" binding:"max=100"`
	YearOfStudy int      `json:"yearOfStudy" binding:"min=0,max=10"`
	Interests   []string `json:"interests" binding:"max=20"`
	Skills      []string `json:"skills" binding:"max=30"`
	GitHub      string   `json:"github" binding:"omitempty,url"`
	LinkedIn    string   `json:"linkedin" binding:"omitempty,url"`
}

type mentorRequest struct {
	Expertise       []string `json:"expertise" binding:"max=20"`
	ExperienceYears int      `json:"experienceYears" binding:"min=0,max=60"`
	Company         string   `json:"company" binding:"max=100"`
	Designation     string   `json:"designation" binding:"max=100"`
	Availability    string   `json:"availability" binding:"max=200"`
	LinkedIn        string   `json:"linkedin" binding:"omitempty,url"`
}

type UserHandler struct {
	users    UserService
	profiles ProfileService
	store    storage.ObjectStore
	maxBytes int64
}

func NewUserHandler(u UserService, p ProfileService, store storage.ObjectStore, maxBytes int64) *UserHandler {
	return &UserHandler{users: u, profiles: p, store: store, maxBytes: maxBytes}
}

// Register routes under /api/User; every route requires auth.
func (h *UserHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	u := rg.Group("/User", auth)
	u.GET("/profile", h.GetProfile)
	u.PUT("/profile", h.UpdateProfile)
	u.PUT("/student", middleware.RequireRole(models.RoleStudent), h.UpdateStudent)
	u.PUT("/mentor", middleware.RequireRole(models.RoleMentor), h.UpdateMentor)
	u.POST("/avatar", h.UploadAvatar)
	u.GET("/:id", h.GetUser)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	p, err := h.profiles.Profile(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.profiles.Profile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), uid, users.ProfileUpdate{Name: req.Name, Bio: req.Bio})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) UpdateStudent(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req studentRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.profiles.UpdateStudent(c.Request.Context(), uid, profiles.StudentInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *UserHandler) UpdateMentor(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req mentorRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.profiles.UpdateMentor(c.Request.Context(), uid, profiles.MentorInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// UploadAvatar stores a png/jpeg/webp image and replaces the previous avatar.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	up, err := readUpload(c, "file", h.maxBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	defer up.Close()
	if !avatarTypes[up.ContentType] {
		respondError(c, apperrors.Invalid("file", "must be a PNG, JPEG or WebP image"))
		return
	}

	ctx := c.Request.Context()
	key := storage.NewKey("avatars", uid.Hex(), up.ContentType)
	if err := h.store.Upload(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		respondError(c, err)
		return
	}
	u, old, err := h.users.SetAvatar(ctx, uid, h.store.PublicURL(key), key)
	if err != nil {
		_ = h.store.Remove(ctx, key)
		respondError(c, err)
		return
	}
	if old != "" && old != key {
		if err := h.store.Remove(ctx, old); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			logger.Warnf("remove previous avatar %s: %v", old, err)
		}
	}
	metrics.Uploads.WithLabelValues("avatar").Inc()
	c.JSON(http.StatusOK, u)
}
