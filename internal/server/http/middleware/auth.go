package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	pkgAuth "github.com/AliXAbdullah03/nge-brain/internal/pkg/auth"
)

const (
	// ActorContextKey is a gin context key for the authenticated model.Actor.
	ActorContextKey = "actor"
	authCookieName  = "ngebrain_token"
)

// ActorResolver turns a bearer token into the acting operator.
type ActorResolver interface {
	ResolveActor(ctx context.Context, token string) (model.Actor, error)
}

// AuthRequired ensures the operator is authenticated before accessing handler.
func AuthRequired(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			AbortWithProblem(c, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication required")
			return
		}

		actor, err := resolver.ResolveActor(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				AbortWithProblem(c, http.StatusUnauthorized, "AUTH_INVALID", "invalid or expired token")
				return
			}
			AbortWithProblem(c, http.StatusInternalServerError, "SERVER_ERROR", "")
			return
		}

		c.Set(ActorContextKey, actor)
		c.Next()
	}
}

// RequirePermission rejects actors whose role lacks perm.
func RequirePermission(perm model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			AbortWithProblem(c, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication required")
			return
		}
		if !actor.Role.Can(perm) {
			AbortWithProblem(c, http.StatusForbidden, "PERMISSION_DENIED", "missing permission "+string(perm))
			return
		}
		c.Next()
	}
}

// CurrentActor returns the actor stored by AuthRequired.
func CurrentActor(c *gin.Context) (model.Actor, bool) {
	val, ok := c.Get(ActorContextKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := val.(model.Actor)
	return actor, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
