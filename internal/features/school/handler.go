package school

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/pkg/pagination"
	"github.com/mkamel7/academy-server-go/pkg/request"
	"github.com/mkamel7/academy-server-go/pkg/response"
)

// Handler processes school HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a school handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns paginated schools.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	schools, total, err := List(h.db, ListFilters{
		Keyword:    c.Query("filterKeyword"),
		ActiveOnly: c.Query("activeOnly") == "true",
	}, params)

	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list schools", err)
		return
	}

	response.Success(c, http.StatusOK, schools, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single school.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	s, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load school")
		return
	}

	response.Success(c, http.StatusOK, s, "", nil)
}

// Create inserts a new school.
func (h *Handler) Create(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Slug        string  `json:"slug" binding:"required"`
		Description *string `json:"description"`
		Active      *bool   `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school payload", err)
		return
	}

	s, err := Create(h.db, CreateInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		h.respondError(c, err, "failed to create school")
		return
	}

	response.Created(c, s, "")
}

// Update modifies an existing school.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school payload", err)
		return
	}

	input := UpdateInput{}

	if value, ok := body["name"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "name must be a string", err)
			return
		}
		input.Name = &str
	}

	if value, ok := body["description"]; ok {
		input.DescProvided = true
		if value != nil {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "description must be a string", err)
				return
			}
			input.Description = &str
		}
	}

	if value, ok := body["isActive"]; ok {
		val, err := request.ReadBool(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "isActive must be boolean", err)
			return
		}
		input.Active = &val
	}

	s, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update school")
		return
	}

	response.Success(c, http.StatusOK, s, "", nil)
}

// Delete removes a school.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete school")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrSchoolNotFound):
		status = http.StatusNotFound
		message = "School not found."
	case errors.Is(err, ErrNameRequired):
		status = http.StatusBadRequest
		message = "School name is required."
	case errors.Is(err, ErrNameLength):
		status = http.StatusBadRequest
		message = "School name must be between 3 and 100 characters."
	case errors.Is(err, ErrSlugInvalid):
		status = http.StatusBadRequest
		message = "School slug must be 3-20 lowercase characters."
	case errors.Is(err, ErrSlugTaken):
		status = http.StatusConflict
		message = "School slug is already taken."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
