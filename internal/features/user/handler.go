package user

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/pkg/pagination"
	"github.com/mkamel7/academy-server-go/pkg/request"
	"github.com/mkamel7/academy-server-go/pkg/response"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

// Handler processes user HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a user handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns paginated users. Admin only.
func (h *Handler) List(c *gin.Context) {
	filters := ListFilters{
		Keyword: c.Query("filterKeyword"),
	}

	if raw := strings.TrimSpace(c.Query("userType")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t := types.UserType(strings.TrimSpace(part))
			if t.Valid() {
				filters.UserTypes = append(filters.UserTypes, t)
			}
		}
	}

	params := pagination.Extract(c)

	users, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list users", err)
		return
	}

	response.Success(c, http.StatusOK, users, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single user. Admin only.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	usr, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load user")
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// Create inserts a new user. Admin only; student self-service registration
// goes through the auth feature.
func (h *Handler) Create(c *gin.Context) {
	var req struct {
		FullName string  `json:"fullName" binding:"required"`
		Email    string  `json:"email" binding:"required,email"`
		Phone    *string `json:"phone"`
		Password string  `json:"password" binding:"required"`
		UserType string  `json:"userType"`
		Active   *bool   `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user payload", err)
		return
	}

	userType := types.UserType(strings.TrimSpace(req.UserType))
	if userType == "" {
		userType = types.UserTypeStudent
	}
	if !userType.Valid() || userType == types.UserTypeAll {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user type", nil)
		return
	}

	usr, err := Create(h.db, CreateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		UserType: userType,
		Active:   req.Active,
	})
	if err != nil {
		h.respondError(c, err, "failed to create user")
		return
	}

	response.Created(c, usr, "")
}

// Update modifies an existing user. Admin only.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user payload", err)
		return
	}

	input := UpdateInput{}

	if value, ok := body["fullName"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "fullName must be a string", err)
			return
		}
		input.FullName = &str
	}

	if value, ok := body["email"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "email must be a string", err)
			return
		}
		input.Email = &str
	}

	if value, ok := body["phone"]; ok {
		input.PhoneProvided = true
		if value != nil {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "phone must be a string", err)
				return
			}
			input.Phone = &str
		}
	}

	if value, ok := body["password"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "password must be a string", err)
			return
		}
		input.Password = &str
	}

	if value, ok := body["userType"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "userType must be a string", err)
			return
		}
		userType := types.UserType(strings.TrimSpace(str))
		if !userType.Valid() || userType == types.UserTypeAll {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user type", nil)
			return
		}
		input.UserType = &userType
	}

	if value, ok := body["isActive"]; ok {
		val, err := request.ReadBool(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "isActive must be boolean", err)
			return
		}
		input.Active = &val
	}

	usr, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update user")
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// Delete removes a user. Admin only.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete user")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	case errors.Is(err, ErrEmailTaken):
		status = http.StatusConflict
		message = "Email is already registered."
	case errors.Is(err, ErrEmailRequired):
		status = http.StatusBadRequest
		message = "Email is required."
	case errors.Is(err, ErrNameRequired):
		status = http.StatusBadRequest
		message = "Full name is required."
	case errors.Is(err, ErrInvalidPassword):
		status = http.StatusBadRequest
		message = "Password must be at least 8 characters."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
