package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge/backend/api/pkg/logger"
	"github.com/skillbridge/skillbridge/backend/api/pkg/metrics"
)

// RequestLogger logs one line per request and records request metrics.
// The route label uses the matched pattern so ids do not explode cardinality.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency", elapsed.String(),
			"ip", c.ClientIP(),
		}
		if uid := c.GetString(UserIDKey); uid != "" {
			kv = append(kv, "user", uid)
		}
		if status >= 500 {
			logger.Warnw("request failed", kv...)
			return
		}
		logger.Infow("request", kv...)
	}
}

// CORS sets permissive headers for the configured origin and answers preflight requests.
func CORS(allowOrigin string) gin.HandlerFunc {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		h.Set("Access-Control-Expose-Headers", "Content-Length, Retry-After")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
