package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/response"
)

// TeacherResolver resolves the caller's teacher row from token claims.
type TeacherResolver interface {
	Profile(ctx context.Context, claims *models.AuthClaims) (*models.Teacher, error)
}

// RequireAdmin allows only callers whose teacher record carries an
// administrative role. It must run after JWT.
func RequireAdmin(resolver TeacherResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		teacher, err := resolver.Profile(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !teacher.Roles.HasAdmin() {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
