package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/config"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories/casdoor"
)

// Gin context keys set by the auth middlewares
const (
	ctxUser   = "user"
	ctxUserID = "user_id"
	ctxRole   = "user_role"
	ctxEmail  = "user_email"
)

// tokenParser is the part of the Casdoor client the middleware needs
type tokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorAuthMiddleware verifies Casdoor-issued bearer tokens
type CasdoorAuthMiddleware struct {
	client   tokenParser
	userRepo repositories.UserRepository
}

func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, userRepo repositories.UserRepository) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		client: casdoorsdk.NewClient(
			cfg.Endpoint,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.Cert,
			cfg.Organization,
			cfg.Application,
		),
		userRepo: userRepo,
	}
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// resolved user on the context.
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		claims, err := cam.client.ParseJwtToken(token)
		if err != nil {
			abortUnauthorized(c, fmt.Sprintf("invalid token: %v", err))
			return
		}

		user, err := cam.resolveUser(c.Request.Context(), claims)
		if err != nil {
			abortUnauthorized(c, fmt.Sprintf("failed to extract user info: %v", err))
			return
		}

		setUser(c, user)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}

// resolveUser prefers the directory record and falls back to the claims when
// the lookup fails, so a directory outage does not lock users out.
func (cam *CasdoorAuthMiddleware) resolveUser(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	if claims.Id == "" {
		return nil, errors.New("invalid user ID in token")
	}

	if cam.userRepo != nil {
		if user, err := cam.userRepo.GetByID(ctx, claims.Id); err == nil {
			return user, nil
		}
	}

	user := casdoor.ToUserModel(&claims.User)
	user.EmailVerified = true
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
		user.UpdatedAt = user.CreatedAt
	}
	return user, nil
}

// RequireRoleMiddleware lets through the listed roles. Admins pass every check.
func RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			abortForbidden(c, err.Error())
			return
		}

		if role != models.RoleAdmin && !containsRole(requiredRoles, role) {
			abortForbidden(c, fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles))
			return
		}

		c.Next()
	}
}

func containsRole(roles []models.UserRole, role models.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": message})
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": message})
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(ctxUser, user)
	c.Set(ctxUserID, user.ID)
	c.Set(ctxRole, user.Role)
	c.Set(ctxEmail, user.Email)
}

func contextValue[T any](c *gin.Context, key, what string) (T, error) {
	var zero T
	raw, exists := c.Get(key)
	if !exists {
		return zero, fmt.Errorf("%s not found in context", what)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("invalid %s type in context", what)
	}
	return v, nil
}

func GetUserFromContext(c *gin.Context) (*models.User, error) {
	return contextValue[*models.User](c, ctxUser, "user")
}

func GetUserIDFromContext(c *gin.Context) (string, error) {
	return contextValue[string](c, ctxUserID, "user ID")
}

func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	return contextValue[models.UserRole](c, ctxRole, "user role")
}
