package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/internal/features/user"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

// EnsureDefaultSuperAdmin creates the bootstrap super admin on first boot and
// re-asserts its role, active flag, and password on later ones. Credentials
// come from ACADEMY_SUPERADMIN_EMAIL / ACADEMY_SUPERADMIN_PASSWORD, with
// local-only defaults.
func EnsureDefaultSuperAdmin(db *gorm.DB, logger *slog.Logger) error {
	email := envOr("ACADEMY_SUPERADMIN_EMAIL", "superadmin@academy.local")
	password := envOr("ACADEMY_SUPERADMIN_PASSWORD", "ChangeMe!12345")

	existing, err := user.GetByEmail(db, email)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		_, createErr := user.Create(db, user.CreateInput{
			FullName: "Super Admin",
			Email:    email,
			Password: password,
			UserType: types.UserTypeSuperAdmin,
		})
		if createErr != nil {
			if isUndefinedTableError(createErr) {
				logger.Warn("default super admin skipped - users table missing", slog.String("email", email))
				return nil
			}
			return fmt.Errorf("create super admin: %w", createErr)
		}

		logger.Info("default super admin created", slog.String("email", email))
		return nil

	case err != nil:
		if isUndefinedTableError(err) {
			logger.Warn("default super admin skipped - users table missing", slog.String("email", email))
			return nil
		}
		return fmt.Errorf("get super admin: %w", err)
	}

	updates := map[string]interface{}{}

	if bcrypt.CompareHashAndPassword([]byte(existing.Password), []byte(password)) != nil {
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(password), 10)
		if hashErr != nil {
			return fmt.Errorf("hash super admin password: %w", hashErr)
		}
		updates["password"] = string(hashed)
	}
	if existing.UserType != types.UserTypeSuperAdmin {
		updates["user_type"] = types.UserTypeSuperAdmin
	}
	if !existing.Active {
		updates["is_active"] = true
	}

	if len(updates) == 0 {
		return nil
	}

	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		return fmt.Errorf("update super admin: %w", err)
	}

	logger.Info("default super admin synchronized", slog.String("email", email))
	return nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func isUndefinedTableError(err error) bool {
	if err == nil {
		return false
	}

	message := err.Error()
	return strings.Contains(message, "relation \"users\" does not exist") ||
		strings.Contains(message, "no such table: users")
}
