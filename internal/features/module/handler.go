package module

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	coursefeature "github.com/mkamel7/academy-server-go/internal/features/course"
	"github.com/mkamel7/academy-server-go/pkg/request"
	"github.com/mkamel7/academy-server-go/pkg/response"
)

// Handler processes module HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a module handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns all modules of a course in sequence order.
func (h *Handler) List(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	if err := h.ensureCourse(courseID); err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	modules, err := GetByCourse(h.db, courseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list modules", err)
		return
	}

	response.Success(c, http.StatusOK, modules, "", nil)
}

// GetByID fetches a single module.
func (h *Handler) GetByID(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	id, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid module id", err)
		return
	}

	m, err := h.getForCourse(id, courseID)
	if err != nil {
		h.respondError(c, err, "failed to load module")
		return
	}

	response.Success(c, http.StatusOK, m, "", nil)
}

// Create inserts a new module.
func (h *Handler) Create(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	if err := h.ensureCourse(courseID); err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
		Order       *int    `json:"order"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid module payload", err)
		return
	}

	m, err := Create(h.db, CreateInput{
		CourseID:    courseID,
		Name:        req.Name,
		Description: req.Description,
		Order:       req.Order,
	})
	if err != nil {
		h.respondError(c, err, "failed to create module")
		return
	}

	response.Created(c, m, "")
}

// Update modifies an existing module.
func (h *Handler) Update(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	id, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid module id", err)
		return
	}

	if _, err := h.getForCourse(id, courseID); err != nil {
		h.respondError(c, err, "failed to load module")
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid module payload", err)
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

	if value, ok := body["order"]; ok {
		input.OrderProvided = true
		if value != nil {
			val, err := request.ReadInt(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "order must be an integer", err)
				return
			}
			input.Order = &val
		}
	}

	m, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update module")
		return
	}

	response.Success(c, http.StatusOK, m, "", nil)
}

// Delete removes a module and its lessons.
func (h *Handler) Delete(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	id, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid module id", err)
		return
	}

	if _, err := h.getForCourse(id, courseID); err != nil {
		h.respondError(c, err, "failed to load module")
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete module")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) ensureCourse(courseID uuid.UUID) error {
	if _, err := coursefeature.Get(h.db, courseID); err != nil {
		if errors.Is(err, coursefeature.ErrCourseNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	return nil
}

func (h *Handler) getForCourse(id, courseID uuid.UUID) (Module, error) {
	m, err := Get(h.db, id)
	if err != nil {
		return m, err
	}
	if m.CourseID != courseID {
		return m, ErrModuleNotFound
	}
	return m, nil
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrModuleNotFound):
		status = http.StatusNotFound
		message = "Module not found."
	case errors.Is(err, ErrNameRequired):
		status = http.StatusBadRequest
		message = "Module name is required."
	case errors.Is(err, ErrNameLength):
		status = http.StatusBadRequest
		message = "Module name must be between 3 and 100 characters."
	case errors.Is(err, ErrOrderInvalid):
		status = http.StatusBadRequest
		message = "Module order cannot be negative."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
