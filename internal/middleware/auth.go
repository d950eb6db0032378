package middleware

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/internal/features/user"
	"github.com/mkamel7/academy-server-go/internal/utils/jwt"
	"github.com/mkamel7/academy-server-go/pkg/response"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

// AuthMiddleware validates JWT tokens and loads the viewer into context.
func AuthMiddleware(db *gorm.DB, jwtSecret string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ensureAuthenticated(c, db, jwtSecret, logger); !ok {
			return
		}
		c.Next()
	}
}

// RequireRoles authorizes users based on their user type. SUPERADMIN always
// has access; UserTypeAll admits any authenticated user.
func RequireRoles(db *gorm.DB, jwtSecret string, logger *slog.Logger, roles ...types.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		usr, ok := ensureAuthenticated(c, db, jwtSecret, logger)
		if !ok {
			return
		}

		if len(roles) > 0 && !containsRole(roles, types.UserTypeAll) {
			if usr.UserType != types.UserTypeSuperAdmin && !containsRole(roles, usr.UserType) {
				response.ErrorWithLog(logger, c, http.StatusForbidden, "Access denied: Insufficient permissions.", nil)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// GetUserFromContext retrieves the authenticated user from the Gin context.
func GetUserFromContext(c *gin.Context) (*user.User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		return nil, false
	}

	if usr, ok := userVal.(*user.User); ok && usr != nil {
		return usr, true
	}

	if usr, ok := userVal.(user.User); ok {
		return &usr, true
	}

	return nil, false
}

func ensureAuthenticated(c *gin.Context, db *gorm.DB, jwtSecret string, logger *slog.Logger) (*user.User, bool) {
	if usr, ok := GetUserFromContext(c); ok {
		return usr, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		response.ErrorWithLog(logger, c, http.StatusUnauthorized, "No token provided", nil)
		c.Abort()
		return nil, false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		response.ErrorWithLog(logger, c, http.StatusUnauthorized, "No token provided", nil)
		c.Abort()
		return nil, false
	}

	claims, err := jwt.VerifyToken(token, jwtSecret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			response.ErrorWithLog(logger, c, http.StatusUnauthorized, "Token expired", err)
		default:
			response.ErrorWithLog(logger, c, http.StatusUnauthorized, "Invalid token", err)
		}
		c.Abort()
		return nil, false
	}

	if claims.UserID == uuid.Nil {
		response.ErrorWithLog(logger, c, http.StatusUnauthorized, "Invalid token payload", nil)
		c.Abort()
		return nil, false
	}

	var usr user.User
	if err := db.WithContext(c.Request.Context()).First(&usr, "id = ?", claims.UserID).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.ErrorWithLog(logger, c, http.StatusUnauthorized, "User not found", err)
		default:
			response.ErrorWithLog(logger, c, http.StatusInternalServerError, "Internal Server Error", err)
		}
		c.Abort()
		return nil, false
	}

	if !usr.Active && usr.UserType != types.UserTypeAdmin && usr.UserType != types.UserTypeSuperAdmin {
		response.ErrorWithLog(logger, c, http.StatusForbidden, "Account is inactive", nil)
		c.Abort()
		return nil, false
	}

	usrCopy := usr
	c.Set("user", &usrCopy)
	c.Set("userId", usr.ID)
	return &usrCopy, true
}

func containsRole(roles []types.UserType, target types.UserType) bool {
	for _, role := range roles {
		if role == target {
			return true
		}
	}
	return false
}
