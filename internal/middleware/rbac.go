package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-workflow-api/internal/models"
	appErrors "github.com/noah-isme/edu-workflow-api/pkg/errors"
	"github.com/noah-isme/edu-workflow-api/pkg/response"
)

// ContextUserKey is the gin context key storing the session user seen by the gate.
const ContextUserKey = "currentUser"

type sessionReader interface {
	CurrentUser(ctx context.Context) *models.User
}

// RequireRole admits requests whose session user is granted the required role
// under the workflow permission lattice.
func RequireRole(sessions sessionReader, required models.Role) gin.HandlerFunc {
	return gate(sessions, func(u *models.User) bool {
		return models.HasPermission(u, required)
	})
}

// RequireTemplateDesigner admits administrators with designer access.
func RequireTemplateDesigner(sessions sessionReader) gin.HandlerFunc {
	return gate(sessions, func(u *models.User) bool {
		return u.CanDesignTemplates()
	})
}

func gate(sessions sessionReader, allow func(*models.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := sessions.CurrentUser(c.Request.Context())
		if user == nil {
			response.Error(c, appErrors.ErrUnauthenticated)
			c.Abort()
			return
		}
		if !allow(user) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}
