package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/sessions"
	"github.com/skillbridge/skillbridge/backend/api/internal/users"
	"github.com/skillbridge/skillbridge/backend/api/pkg/logger"
	"github.com/skillbridge/skillbridge/backend/api/pkg/metrics"
	"github.com/skillbridge/skillbridge/backend/api/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountService is the subset of users.Service used for authentication.
type AccountService interface {
	Signup(ctx context.Context, in users.SignupInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// ProfileCreator creates the empty role profile of a new account.
type ProfileCreator interface {
	CreateEmpty(ctx context.Context, u *models.User) error
}

// SessionService manages refresh sessions.
type SessionService interface {
	CreateSession(ctx context.Context, userID string) (string, error)
	Rotate(ctx context.Context, refresh string) (string, *sessions.Session, error)
	DeleteRefresh(ctx context.Context, refresh string) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateAccessToken(u *models.User) (string, error)
	ExpiresAt(raw string) (time.Time, error)
	TTL() time.Duration
}

// Revoker records logged out access tokens.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

type signupRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"required,oneof=student mentor"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	users    AccountService
	profiles ProfileCreator
	sessions SessionService
	tokens   TokenIssuer
	revoker  Revoker
}

func NewAuthHandler(u AccountService, p ProfileCreator, s SessionService, t TokenIssuer, r Revoker) *AuthHandler {
	return &AuthHandler{users: u, profiles: p, sessions: s, tokens: t, revoker: r}
}

// Register routes under /api/Authentication. auth guards /me.
func (h *AuthHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	a := rg.Group("/Authentication")
	a.POST("/signup", h.Signup)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
	a.GET("/me", auth, h.Me)
}

// issue creates a session and access token for u and writes the response.
func (h *AuthHandler) issue(c *gin.Context, status int, u *models.User) {
	refresh, err := h.sessions.CreateSession(c.Request.Context(), u.ID.Hex())
	if err != nil {
		respondError(c, err)
		return
	}
	access, err := h.tokens.GenerateAccessToken(u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{
		"accessToken":  access,
		"refreshToken": refresh,
		"expiresIn":    int(h.tokens.TTL().Seconds()),
		"user":         u,
	})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Signup(c.Request.Context(), users.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	// profiles are upserted on first edit, so a failure here is not fatal
	if err := h.profiles.CreateEmpty(c.Request.Context(), u); err != nil {
		logger.Warnf("create %s profile for %s: %v", u.Role, u.ID.Hex(), err)
	}
	metrics.Signups.WithLabelValues(u.Role).Inc()
	logger.Infow("user signed up", "userId", u.ID.Hex(), "role", u.Role)
	h.issue(c, http.StatusCreated, u)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.issue(c, http.StatusOK, u)
}

// Refresh rotates the refresh token and returns a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	next, sess, err := h.sessions.Rotate(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	uid, err := primitive.ObjectIDFromHex(sess.UserID)
	if err != nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}
	u, err := h.users.Get(c.Request.Context(), uid)
	if err != nil {
		_ = h.sessions.DeleteRefresh(c.Request.Context(), next)
		if errors.Is(err, apperrors.ErrNotFound) {
			err = apperrors.ErrUnauthorized
		}
		respondError(c, err)
		return
	}
	access, err := h.tokens.GenerateAccessToken(u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  access,
		"refreshToken": next,
		"expiresIn":    int(h.tokens.TTL().Seconds()),
	})
}

// Logout deletes the refresh session and revokes the presented access token
// until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if at, ok := middleware.BearerToken(c.GetHeader("Authorization")); ok {
		if exp, err := h.tokens.ExpiresAt(at); err == nil {
			if ttl := time.Until(exp); ttl > 0 {
				if err := h.revoker.Revoke(c.Request.Context(), at, ttl); err != nil {
					logger.Errorf("revoke access token: %v", err)
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke access token"})
					return
				}
			}
		}
	}
	if err := h.sessions.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	u, err := h.users.Get(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
