package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/teacherhub/quiz-service/internal/config"
	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"github.com/teacherhub/quiz-service/internal/utils"
)

// InitAuth configures the Casdoor SDK from service configuration. Must be
// called once before AuthMiddleware handles requests.
func InitAuth(cfg config.CasdoorConfig) {
	casdoorsdk.InitConfig(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
}

// AuthMiddleware validates the bearer token and stores the authenticated
// user in the request context. The account row is upserted on every request
// so the local users table tracks the identity provider.
func AuthMiddleware(repo repositories.Repository, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing authorization token"})
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			logger.Warn("Rejected invalid token", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid or expired token"})
			return
		}

		role := models.RoleTeacher
		if claims.User.IsAdmin {
			role = models.RoleAdmin
		}

		now := time.Now()
		user := &models.User{
			ID:          claims.User.Id,
			Name:        claims.User.DisplayName,
			Email:       claims.User.Email,
			Role:        role,
			IsActive:    true,
			LastLoginAt: &now,
		}
		if user.Name == "" {
			user.Name = claims.User.Name
		}
		if err := repo.User().Upsert(c.Request.Context(), user); err != nil {
			logger.Error("Failed to upsert user from token", "user_id", user.ID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_role", string(user.Role))
		c.Next()
	}
}

// RequireTeacher gates routes to teacher and admin accounts.
func RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("user_role")
		switch role {
		case string(models.RoleTeacher), string(models.RoleAdmin):
			c.Next()
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Teacher role required"})
		}
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
