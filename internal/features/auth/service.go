package auth

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/internal/features/user"
	"github.com/mkamel7/academy-server-go/internal/utils/jwt"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Phone    *string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	User         *user.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

type TokenConfig struct {
	JWTSecret           string
	JWTRefreshSecret    string
	AccessTokenExpiry   time.Duration
	RefreshTokenExpiry  time.Duration
	PasswordResetExpiry time.Duration
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Register creates a student account and issues a token pair.
func Register(db *gorm.DB, input RegisterInput, cfg TokenConfig) (*AuthResponse, error) {
	if input.FullName == "" || input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	if !emailRegex.MatchString(input.Email) {
		return nil, ErrInvalidEmail
	}

	if len(input.Password) < 8 {
		return nil, ErrWeakPassword
	}

	newUser, err := user.Create(db, user.CreateInput{
		FullName: input.FullName,
		Email:    input.Email,
		Password: input.Password,
		Phone:    input.Phone,
		UserType: types.UserTypeStudent,
	})
	if err != nil {
		return nil, err
	}

	return issueTokens(db, newUser, cfg)
}

// Login authenticates a user and returns tokens.
func Login(db *gorm.DB, input LoginInput, cfg TokenConfig) (*AuthResponse, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	usr, err := user.GetByEmail(db, input.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !usr.ComparePassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	isPrivileged := usr.UserType == types.UserTypeAdmin || usr.UserType == types.UserTypeSuperAdmin
	if !isPrivileged && !usr.Active {
		return nil, ErrInactiveAccount
	}

	return issueTokens(db, usr, cfg)
}

// Logout clears the refresh token for a user.
func Logout(db *gorm.DB, accessToken string, cfg TokenConfig) error {
	claims, err := jwt.VerifyToken(accessToken, cfg.JWTSecret)
	if err != nil {
		// Expired tokens still identify the user for logout.
		claims, err = jwt.DecodeWithoutVerify(accessToken)
		if err != nil {
			return ErrInvalidToken
		}
	}

	usr, err := user.Get(db, claims.UserID)
	if err != nil {
		return err
	}

	return user.SetRefreshToken(db, usr.ID, nil)
}

// RefreshAccessToken exchanges a valid refresh token for a new token pair.
// The presented token must match the one stored on the user row, so a
// stolen-then-rotated token stops working.
func RefreshAccessToken(db *gorm.DB, refreshToken string, cfg TokenConfig) (*jwt.TokenPair, error) {
	claims, err := jwt.VerifyToken(refreshToken, cfg.JWTRefreshSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	usr, err := user.Get(db, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if usr.RefreshToken == nil || *usr.RefreshToken != refreshToken {
		return nil, ErrInvalidToken
	}

	accessToken, err := jwt.GenerateAccessToken(usr.ID, cfg.JWTSecret, cfg.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	newRefreshToken, err := jwt.GenerateRefreshToken(usr.ID, cfg.JWTRefreshSecret, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	if err := user.SetRefreshToken(db, usr.ID, &newRefreshToken); err != nil {
		return nil, err
	}

	return &jwt.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// PasswordResetInfo contains data for sending password reset emails.
type PasswordResetInfo struct {
	Token    string
	Email    string
	FullName string
}

// RequestPasswordReset generates a reset token for a user. Returns nil info
// for unknown addresses so the endpoint never reveals account existence.
func RequestPasswordReset(db *gorm.DB, email string, cfg TokenConfig) (*PasswordResetInfo, error) {
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	usr, err := user.GetByEmail(db, email)
	if err != nil {
		return nil, nil
	}

	resetToken, err := jwt.GeneratePurposeToken(usr.ID, "password-reset", cfg.JWTSecret, cfg.PasswordResetExpiry)
	if err != nil {
		return nil, err
	}

	return &PasswordResetInfo{
		Token:    resetToken,
		Email:    usr.Email,
		FullName: usr.FullName,
	}, nil
}

// ResetPassword updates a user's password using a reset token.
func ResetPassword(db *gorm.DB, token, newPassword string, cfg TokenConfig) error {
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	claims, err := jwt.VerifyToken(token, cfg.JWTSecret)
	if err != nil {
		return ErrInvalidToken
	}

	if claims.Purpose != "password-reset" {
		return ErrInvalidTokenType
	}

	if _, err := user.Update(db, claims.UserID, user.UpdateInput{Password: &newPassword}); err != nil {
		return err
	}

	// Force re-login everywhere after a reset.
	return user.SetRefreshToken(db, claims.UserID, nil)
}

// ExtractToken strips the Bearer prefix from an Authorization header value.
func ExtractToken(authHeader string) string {
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func issueTokens(db *gorm.DB, usr user.User, cfg TokenConfig) (*AuthResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(usr.ID, cfg.JWTSecret, cfg.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(usr.ID, cfg.JWTRefreshSecret, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	if err := user.SetRefreshToken(db, usr.ID, &refreshToken); err != nil {
		return nil, err
	}

	usr.RefreshToken = &refreshToken
	return &AuthResponse{
		User:         &usr,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
