package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/skillbridge/skillbridge/backend/api/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func hit(r *gin.Engine, path string) int {
	return serveReq(r, path, "").Code
}

func serveReq(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/ok"))
	require.Equal(t, http.StatusOK, hit(r, "/ok"))

	after := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	require.Equal(t, 2.0, after-before)
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/limited"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/limited", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))

	// one token is replenished every 500ms
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, hit(r, "/limited"))
}

func TestRateLimitMiddleware_UsesSubjectWhenPresent(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(UserIDKey, c.Query("u"))
		c.Next()
	})
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/u", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/u?u=user-123"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "/u?u=user-123"))
	// a different subject from the same IP has its own bucket
	require.Equal(t, http.StatusOK, hit(r, "/u?u=user-456"))
}

func TestRateLimitMiddleware_SubjectFromBearerBeforeAuth(t *testing.T) {
	r := gin.New()
	r.Use(LimiterSubject(&fakeVerifier{}), RateLimitMiddleware(0.001, 1))
	r.GET("/x", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	call := func(header string) int {
		w := serveReq(r, "/x", header)
		return w.Code
	}
	require.Equal(t, http.StatusOK, call("Bearer goodtoken"))
	require.Equal(t, http.StatusTooManyRequests, call("Bearer goodtoken"))
	// no token and a rejected token share the IP bucket, not the user one
	require.Equal(t, http.StatusOK, call(""))
	require.Equal(t, http.StatusTooManyRequests, call("Bearer bad"))
}

func TestLimiterSet_EvictsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	set := newLimiterSet(1, 1)
	set.now = func() time.Time { return now }

	require.True(t, set.allow("ip:1"))
	require.True(t, set.allow("ip:2"))
	require.False(t, set.allow("ip:2"))
	require.Equal(t, 2, set.len())

	now = now.Add(set.idle / 2)
	require.True(t, set.allow("ip:2"))

	// ip:1 has been idle past the window; ip:2 was seen half a window ago
	now = now.Add(set.idle/2 + time.Second)
	require.True(t, set.allow("ip:3"))
	require.Equal(t, 2, set.len())
	set.mu.Lock()
	_, kept := set.entries["ip:2"]
	_, dropped := set.entries["ip:1"]
	set.mu.Unlock()
	require.True(t, kept)
	require.False(t, dropped)
}

func TestLimiterSet_IdleCoversRefill(t *testing.T) {
	// a bucket must not be dropped before it has fully refilled
	require.Equal(t, 2000*time.Second, newLimiterSet(0.5, 1000).idle)
	require.Equal(t, minLimiterIdle, newLimiterSet(10, 5).idle)
}
