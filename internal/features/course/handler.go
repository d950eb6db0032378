package course

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	schoolfeature "github.com/mkamel7/academy-server-go/internal/features/school"
	trackfeature "github.com/mkamel7/academy-server-go/internal/features/track"
	"github.com/mkamel7/academy-server-go/pkg/pagination"
	"github.com/mkamel7/academy-server-go/pkg/request"
	"github.com/mkamel7/academy-server-go/pkg/response"
)

// Handler processes course HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a course handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns paginated courses for a school. Supports filtering by track
// (trackId query param) or untracked courses only (untracked=true).
func (h *Handler) List(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	if err := h.ensureSchool(schoolID); err != nil {
		h.respondError(c, err, "failed to load school")
		return
	}

	filters := ListFilters{
		SchoolID:      schoolID,
		Keyword:       c.Query("filterKeyword"),
		PublishedOnly: c.Query("publishedOnly") == "true",
		UntrackedOnly: c.Query("untracked") == "true",
	}

	if raw := strings.TrimSpace(c.Query("trackId")); raw != "" {
		trackID, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid track id", err)
			return
		}
		filters.TrackID = &trackID
	}

	params := pagination.Extract(c)

	courses, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list courses", err)
		return
	}

	response.Success(c, http.StatusOK, courses, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single course.
func (h *Handler) GetByID(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	crs, err := GetForSchool(h.db, id, schoolID)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	response.Success(c, http.StatusOK, crs, "", nil)
}

// Create inserts a new course.
func (h *Handler) Create(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	if err := h.ensureSchool(schoolID); err != nil {
		h.respondError(c, err, "failed to load school")
		return
	}

	var req struct {
		TrackID     *uuid.UUID `json:"trackId"`
		Name        string     `json:"name" binding:"required"`
		Description *string    `json:"description"`
		Image       *string    `json:"image"`
		Tags        []string   `json:"tags"`
		Order       *int       `json:"order"`
		Published   *bool      `json:"isPublished"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
		return
	}

	if req.TrackID != nil {
		if err := h.ensureTrack(schoolID, *req.TrackID); err != nil {
			h.respondError(c, err, "failed to load track")
			return
		}
	}

	crs, err := Create(h.db, CreateInput{
		SchoolID:    schoolID,
		TrackID:     req.TrackID,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Tags:        req.Tags,
		Order:       req.Order,
		Published:   req.Published,
	})
	if err != nil {
		h.respondError(c, err, "failed to create course")
		return
	}

	response.Created(c, crs, "")
}

// Update modifies an existing course.
func (h *Handler) Update(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	if _, err := GetForSchool(h.db, id, schoolID); err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
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

	if value, ok := body["image"]; ok {
		input.ImageProvided = true
		if value != nil {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "image must be a string", err)
				return
			}
			input.Image = &str
		}
	}

	if value, ok := body["trackId"]; ok {
		input.TrackIDProvided = true
		if value != nil {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "trackId must be a string", err)
				return
			}
			trackID, err := uuid.Parse(str)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "trackId must be a UUID", err)
				return
			}
			if err := h.ensureTrack(schoolID, trackID); err != nil {
				h.respondError(c, err, "failed to load track")
				return
			}
			input.TrackID = &trackID
		}
	}

	if value, ok := body["tags"]; ok {
		tags, provided, err := readStringSlice(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "tags must be an array of strings", err)
			return
		}
		if provided {
			input.TagsProvided = true
			input.Tags = tags
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

	if value, ok := body["isPublished"]; ok {
		val, err := request.ReadBool(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "isPublished must be boolean", err)
			return
		}
		input.Published = &val
	}

	crs, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update course")
		return
	}

	response.Success(c, http.StatusOK, crs, "", nil)
}

// Delete removes a course.
func (h *Handler) Delete(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	if _, err := GetForSchool(h.db, id, schoolID); err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete course")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) ensureSchool(schoolID uuid.UUID) error {
	if _, err := schoolfeature.Get(h.db, schoolID); err != nil {
		if errors.Is(err, schoolfeature.ErrSchoolNotFound) {
			return ErrSchoolNotFound
		}
		return err
	}
	return nil
}

func (h *Handler) ensureTrack(schoolID, trackID uuid.UUID) error {
	t, err := trackfeature.Get(h.db, trackID)
	if err != nil {
		if errors.Is(err, trackfeature.ErrTrackNotFound) {
			return ErrTrackNotFound
		}
		return err
	}
	if t.SchoolID != schoolID {
		return ErrTrackNotFound
	}
	return nil
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrSchoolNotFound):
		status = http.StatusNotFound
		message = "School not found."
	case errors.Is(err, ErrTrackNotFound):
		status = http.StatusNotFound
		message = "Track not found."
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrNameRequired):
		status = http.StatusBadRequest
		message = "Course name is required."
	case errors.Is(err, ErrNameLength):
		status = http.StatusBadRequest
		message = "Course name must be between 3 and 100 characters."
	case errors.Is(err, ErrOrderInvalid):
		status = http.StatusBadRequest
		message = "Course order cannot be negative."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

func readStringSlice(value interface{}) ([]string, bool, error) {
	var elements []interface{}
	switch v := value.(type) {
	case []interface{}:
		elements = v
	case []string:
		return v, true, nil
	default:
		return nil, false, nil
	}

	out := make([]string, 0, len(elements))
	for _, item := range elements {
		if item == nil {
			continue
		}
		str, err := request.ReadString(item)
		if err != nil {
			return nil, true, err
		}
		out = append(out, str)
	}

	return out, true, nil
}
