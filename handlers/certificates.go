package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/certificates"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CertificateService is the API behind /api/Certificate.
type CertificateService interface {
	Upload(ctx context.Context, owner primitive.ObjectID, in certificates.UploadInput) (*models.Certificate, error)
	List(ctx context.Context, owner primitive.ObjectID) ([]models.Certificate, error)
	DownloadURL(ctx context.Context, user, id primitive.ObjectID) (string, time.Time, error)
	Delete(ctx context.Context, user, id primitive.ObjectID) error
}

type CertificateHandler struct {
	certs    CertificateService
	maxBytes int64
}

func NewCertificateHandler(s CertificateService, maxBytes int64) *CertificateHandler {
	return &CertificateHandler{certs: s, maxBytes: maxBytes}
}

// Register routes under /api/Certificate; every route requires auth.
func (h *CertificateHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	g := rg.Group("/Certificate", auth)
	g.POST("", h.Upload)
	g.POST("/", h.Upload)
	g.GET("", h.ListMine)
	g.GET("/", h.ListMine)
	g.GET("/user/:userId", h.ListForUser)
	g.GET("/:id/download", h.Download)
	g.DELETE("/:id", h.Delete)
}

// parseIssuedAt accepts an RFC3339 timestamp or a plain YYYY-MM-DD date.
func parseIssuedAt(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperrors.Invalid("issuedAt", "must be an RFC3339 timestamp or YYYY-MM-DD date")
}

func (h *CertificateHandler) Upload(c *gin.Context) {
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
	issuedAt, err := parseIssuedAt(c.PostForm("issuedAt"))
	if err != nil {
		respondError(c, err)
		return
	}
	cert, err := h.certs.Upload(c.Request.Context(), uid, certificates.UploadInput{
		Title:       c.PostForm("title"),
		Issuer:      c.PostForm("issuer"),
		IssuedAt:    issuedAt,
		ContentType: up.ContentType,
		Size:        up.Size,
		Body:        up.Body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cert)
}

func (h *CertificateHandler) list(c *gin.Context, owner primitive.ObjectID) {
	list, err := h.certs.List(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CertificateHandler) ListMine(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	h.list(c, uid)
}

func (h *CertificateHandler) ListForUser(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	owner, ok := pathID(c, "userId")
	if !ok {
		return
	}
	h.list(c, owner)
}

func (h *CertificateHandler) Download(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	url, expires, err := h.certs.DownloadURL(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expiresAt": expires})
}

func (h *CertificateHandler) Delete(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.certs.Delete(c.Request.Context(), uid, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
