package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/internal/features/user"
	"github.com/mkamel7/academy-server-go/pkg/config"
	"github.com/mkamel7/academy-server-go/pkg/email"
	"github.com/mkamel7/academy-server-go/pkg/response"
)

// Handler processes authentication HTTP requests.
type Handler struct {
	db          *gorm.DB
	logger      *slog.Logger
	cfg         *config.Config
	emailClient *email.Client
}

// NewHandler constructs an auth handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, cfg *config.Config, emailClient *email.Client) *Handler {
	return &Handler{
		db:          db,
		logger:      logger,
		cfg:         cfg,
		emailClient: emailClient,
	}
}

// Register creates a new student account.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		FullName string  `json:"fullName" binding:"required"`
		Email    string  `json:"email" binding:"required,email"`
		Password string  `json:"password" binding:"required"`
		Phone    *string `json:"phone"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid registration payload", err)
		return
	}

	authResp, err := Register(h.db, RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	}, h.getTokenConfig())
	if err != nil {
		h.respondError(c, err, "registration failed")
		return
	}

	go func() {
		if err := h.emailClient.SendWelcome(req.Email, req.FullName); err != nil {
			h.logger.Error("failed to send welcome email",
				slog.String("email", req.Email),
				slog.String("error", err.Error()))
		}
	}()

	response.Created(c, authResp, "Registration successful")
}

// Login authenticates a user and returns JWT tokens.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid login payload", err)
		return
	}

	authResp, err := Login(h.db, LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, h.getTokenConfig())
	if err != nil {
		h.respondError(c, err, "login failed")
		return
	}

	response.Success(c, http.StatusOK, authResp, "Login successful", nil)
}

// Logout clears the user's refresh token.
func (h *Handler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "no access token provided", nil)
		return
	}

	if err := Logout(h.db, ExtractToken(authHeader), h.getTokenConfig()); err != nil {
		h.respondError(c, err, "logout failed")
		return
	}

	response.Success(c, http.StatusOK, true, "Logout successful", nil)
}

// RefreshToken exchanges a refresh token for a fresh token pair.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid refresh token payload", err)
		return
	}

	tokenPair, err := RefreshAccessToken(h.db, req.RefreshToken, h.getTokenConfig())
	if err != nil {
		h.respondError(c, err, "token refresh failed")
		return
	}

	response.Success(c, http.StatusOK, tokenPair, "", nil)
}

// RequestPasswordReset sends a password reset email.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	info, err := RequestPasswordReset(h.db, req.Email, h.getTokenConfig())
	if err != nil {
		h.respondError(c, err, "failed to request password reset")
		return
	}

	if info != nil {
		resetURL := h.buildPublicURL("reset-password") + "?token=" + info.Token
		go func() {
			if err := h.emailClient.SendPasswordReset(info.Email, resetURL); err != nil {
				h.logger.Error("failed to send password reset email",
					slog.String("email", info.Email),
					slog.String("error", err.Error()))
			}
		}()
	}

	// Same response whether or not the account exists.
	response.Success(c, http.StatusOK, true, "If the email exists, a reset link has been sent", nil)
}

// ResetPassword updates a user's password using a reset token.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	if err := ResetPassword(h.db, req.Token, req.Password, h.getTokenConfig()); err != nil {
		h.respondError(c, err, "failed to reset password")
		return
	}

	response.Success(c, http.StatusOK, true, "Password updated", nil)
}

func (h *Handler) getTokenConfig() TokenConfig {
	return TokenConfig{
		JWTSecret:           h.cfg.JWTSecret,
		JWTRefreshSecret:    h.cfg.JWTRefreshSecret,
		AccessTokenExpiry:   15 * time.Minute,
		RefreshTokenExpiry:  7 * 24 * time.Hour,
		PasswordResetExpiry: 1 * time.Hour,
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid email or password"
	case errors.Is(err, ErrMissingFields):
		status = http.StatusBadRequest
		message = "Missing required fields"
	case errors.Is(err, ErrInvalidEmail):
		status = http.StatusBadRequest
		message = "Invalid email format"
	case errors.Is(err, ErrWeakPassword):
		status = http.StatusBadRequest
		message = "Password must be at least 8 characters long"
	case errors.Is(err, ErrInactiveAccount):
		status = http.StatusForbidden
		message = "Your account is inactive. Please contact support"
	case errors.Is(err, ErrInvalidToken):
		status = http.StatusUnauthorized
		message = "Invalid or expired token"
	case errors.Is(err, ErrInvalidTokenType):
		status = http.StatusBadRequest
		message = "Invalid token type"
	case errors.Is(err, user.ErrEmailTaken):
		status = http.StatusConflict
		message = "Email is already registered"
	case errors.Is(err, user.ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found"
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

func (h *Handler) buildPublicURL(page string) string {
	base := strings.TrimRight(h.cfg.Email.FrontendURL, "/")
	if base == "" {
		return "/public/" + page
	}
	return base + "/public/" + page
}
