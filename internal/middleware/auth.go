package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medisched/scheduler-api/internal/handler"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/service/auth"
)

const contextActorKey = "actor"

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and sets the caller's identity in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(contextActorKey, claims.Actor)
		c.Next()
	}
}

// RequireRole rejects requests whose caller is not one of the given roles.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("insufficient role"))
		c.Abort()
	}
}

// ActorFromContext returns the authenticated caller, or a zero Actor when
// the request was not authenticated.
func ActorFromContext(c *gin.Context) model.Actor {
	v, ok := c.Get(contextActorKey)
	if !ok {
		return model.Actor{}
	}
	actor, ok := v.(model.Actor)
	if !ok {
		return model.Actor{}
	}
	return actor
}
