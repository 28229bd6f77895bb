package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vincentino1/account-service/internal/common"
	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/auth"
)

// AccessLog logs each request once it has been served.
func AccessLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}

// SecurityHeaders sets conservative response headers for a JSON API.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}

func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid, unrevoked bearer token. All
// rejections look the same to the client; the concrete kind is logged.
func RequireAuth(sessions SessionService, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		session, err := sessions.Authorize(ctx, c.GetHeader("Authorization"))
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				logger.Debug(ctx, "request not authorized", "reason", err.Error(), "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
				return
			}
			logger.Error(ctx, "authorization check failed", "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody{Error: "Service Unavailable"})
			return
		}

		c.Request = c.Request.WithContext(auth.WithSession(ctx, session))
		c.Next()
	}
}

// sessionFrom returns the session stored by RequireAuth.
func sessionFrom(c *gin.Context) *auth.Session {
	s, _ := auth.SessionFromContext(c.Request.Context())
	return s
}
