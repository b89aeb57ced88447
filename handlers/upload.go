package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/storage"
)

// multipartOverhead leaves room for form fields and boundaries on top of
// the file size limit.
const multipartOverhead = 1 << 20

type upload struct {
	ContentType string
	Size        int64
	Body        io.Reader
	file        multipart.File
}

func (u *upload) Close() error { return u.file.Close() }

// readUpload opens the multipart file field, enforcing maxBytes and sniffing
// its content type.
func readUpload(c *gin.Context, field string, maxBytes int64) (*upload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.Invalid(field, fmt.Sprintf("must be at most %d bytes", maxBytes))
		}
		return nil, apperrors.Invalid(field, "is required")
	}
	if fh.Size <= 0 {
		return nil, apperrors.Invalid(field, "is required")
	}
	if fh.Size > maxBytes {
		return nil, apperrors.Invalid(field, fmt.Sprintf("must be at most %d bytes", maxBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	ct, body, err := storage.Sniff(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &upload{ContentType: ct, Size: fh.Size, Body: body, file: f}, nil
}
