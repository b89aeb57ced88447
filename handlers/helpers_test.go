package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge/backend/api/pkg/middleware"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeAuth stands in for AuthMiddleware, reading the caller from headers.
func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader("X-Test-User")
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		c.Set(middleware.UserIDKey, uid)
		c.Set(middleware.RoleKey, c.GetHeader("X-Test-Role"))
		c.Next()
	}
}

type caller struct {
	id   primitive.ObjectID
	role string
}

func newCaller(role string) caller {
	return caller{id: primitive.NewObjectID(), role: role}
}

func do(t *testing.T, r http.Handler, as *caller, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != nil {
		req.Header.Set("X-Test-User", as.id.Hex())
		req.Header.Set("X-Test-Role", as.role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doMultipart(t *testing.T, r http.Handler, as *caller, path string, fields map[string]string, file []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "upload.bin")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if as != nil {
		req.Header.Set("X-Test-User", as.id.Hex())
		req.Header.Set("X-Test-Role", as.role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func fieldsOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decode(t, w)
	require.Equal(t, "validation failed", body["error"])
	fields, ok := body["fields"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return fields
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}
