package user

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/pkg/pagination"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

// User represents a system user.
type User struct {
	types.BaseModel

	FullName      string         `gorm:"type:varchar(60);not null;column:full_name" json:"fullName"`
	Email         string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone         *string        `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Password      string         `gorm:"type:varchar(255);not null" json:"-"`
	UserType      types.UserType `gorm:"type:varchar(20);not null;default:'student';column:user_type;index" json:"userType"`
	RefreshToken  *string        `gorm:"type:text;column:refresh_token" json:"-"`
	Active        bool           `gorm:"type:boolean;not null;default:true;column:is_active;index" json:"isActive"`
	EmailVerified bool           `gorm:"type:boolean;not null;default:false;column:email_verified" json:"emailVerified"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// ListFilters defines user query filters.
type ListFilters struct {
	Keyword   string
	UserTypes []types.UserType
	ExcludeID *uuid.UUID
}

// CreateInput carries data for creating a new user.
type CreateInput struct {
	FullName string
	Email    string
	Phone    *string
	Password string
	UserType types.UserType
	Active   *bool
}

// UpdateInput captures mutable user fields.
type UpdateInput struct {
	FullName      *string
	Email         *string
	Phone         *string
	PhoneProvided bool
	Password      *string
	UserType      *types.UserType
	Active        *bool
}

// List queries users with filters and pagination.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]User, int64, error) {
	query := db.Model(&User{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?",
			keyword, keyword, keyword)
	}

	if len(filters.UserTypes) > 0 {
		query = query.Where("user_type IN ?", filters.UserTypes)
	}

	if filters.ExcludeID != nil {
		query = query.Where("id != ?", *filters.ExcludeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	if err := query.Order("created_at DESC").Offset(params.Skip).Limit(params.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uuid.UUID) (User, error) {
	var usr User
	if err := db.First(&usr, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// GetByEmail retrieves a user by email.
func GetByEmail(db *gorm.DB, email string) (User, error) {
	var usr User
	if err := db.First(&usr, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// Create inserts a new user with hashed password.
func Create(db *gorm.DB, input CreateInput) (User, error) {
	if len(input.Password) < 8 {
		return User{}, ErrInvalidPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), 10)
	if err != nil {
		return User{}, err
	}

	usr := User{
		FullName: strings.TrimSpace(input.FullName),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:    trimStringPtr(input.Phone),
		Password: string(hashedPassword),
		UserType: input.UserType,
		Active:   true,
	}

	if usr.FullName == "" {
		return User{}, ErrNameRequired
	}
	if usr.Email == "" {
		return User{}, ErrEmailRequired
	}
	if usr.UserType == "" {
		usr.UserType = types.UserTypeStudent
	}
	if input.Active != nil {
		usr.Active = *input.Active
	}

	if err := db.Create(&usr).Error; err != nil {
		if isDuplicateEmail(err) {
			return usr, ErrEmailTaken
		}
		return usr, err
	}

	return usr, nil
}

// Update modifies an existing user.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (User, error) {
	usr, err := Get(db, id)
	if err != nil {
		return usr, err
	}

	updates := map[string]interface{}{}

	if input.FullName != nil {
		trimmed := strings.TrimSpace(*input.FullName)
		if trimmed == "" {
			return usr, ErrNameRequired
		}
		updates["full_name"] = trimmed
	}

	if input.Email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*input.Email))
		if trimmed == "" {
			return usr, ErrEmailRequired
		}
		updates["email"] = trimmed
	}

	if input.PhoneProvided {
		if input.Phone == nil {
			updates["phone"] = nil
		} else {
			updates["phone"] = strings.TrimSpace(*input.Phone)
		}
	}

	if input.Password != nil {
		if len(*input.Password) < 8 {
			return usr, ErrInvalidPassword
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), 10)
		if err != nil {
			return usr, err
		}
		updates["password"] = string(hashedPassword)
	}

	if input.UserType != nil {
		updates["user_type"] = *input.UserType
	}

	if input.Active != nil {
		updates["is_active"] = *input.Active
	}

	if len(updates) > 0 {
		if err := db.Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if isDuplicateEmail(err) {
				return usr, ErrEmailTaken
			}
			return usr, err
		}
	}

	return Get(db, id)
}

// Delete removes a user.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetRefreshToken stores or clears the user's refresh token.
func SetRefreshToken(db *gorm.DB, id uuid.UUID, token *string) error {
	return db.Model(&User{}).Where("id = ?", id).Update("refresh_token", token).Error
}

// ComparePassword checks if the provided password matches the stored hash.
func (u *User) ComparePassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// IsStaff reports whether the user holds an instructor or admin role.
func (u *User) IsStaff() bool {
	switch u.UserType {
	case types.UserTypeInstructor, types.UserTypeAdmin, types.UserTypeSuperAdmin:
		return true
	}
	return false
}

func isDuplicateEmail(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "users_email_key") ||
		strings.Contains(msg, "idx_users_email") ||
		strings.Contains(msg, "UNIQUE constraint failed: users.email")
}

func trimStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
