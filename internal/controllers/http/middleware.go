package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	identityKey = "identity"
)

// Identify trusts the session layer in front of the service to set the identity headers.
func Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := domain.Identity{
			UserID: c.GetHeader(HeaderUserID),
			Role:   domain.Role(c.GetHeader(HeaderUserRole)),
		}
		if id.Role == "" {
			id.Role = domain.RoleUser
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func identity(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity(c).UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireBackOffice hides admin routes from everyone but admins and staff.
func RequireBackOffice() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identity(c)
		if id.UserID == "" || !id.IsBackOffice() {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Next()
	}
}

func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"latency":  time.Since(start).String(),
			"user_id":  identity(c).UserID,
			"clientIP": c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("Request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("Request rejected")
		default:
			entry.Debug("Request served")
		}
	}
}
