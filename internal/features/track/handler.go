package track

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	schoolfeature "github.com/mkamel7/academy-server-go/internal/features/school"
	"github.com/mkamel7/academy-server-go/pkg/pagination"
	"github.com/mkamel7/academy-server-go/pkg/request"
	"github.com/mkamel7/academy-server-go/pkg/response"
)

// Handler processes track HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a track handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns paginated tracks for a school.
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

	params := pagination.Extract(c)

	tracks, total, err := List(h.db, ListFilters{
		SchoolID:   schoolID,
		Keyword:    c.Query("filterKeyword"),
		ActiveOnly: c.Query("activeOnly") == "true",
	}, params)

	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list tracks", err)
		return
	}

	response.Success(c, http.StatusOK, tracks, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single track.
func (h *Handler) GetByID(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	id, err := uuid.Parse(c.Param("trackId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid track id", err)
		return
	}

	t, err := h.ensureTrack(schoolID, id)
	if err != nil {
		h.respondError(c, err, "failed to load track")
		return
	}

	response.Success(c, http.StatusOK, t, "", nil)
}

// Create inserts a new track.
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
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
		Order       *int    `json:"order"`
		Active      *bool   `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid track payload", err)
		return
	}

	t, err := Create(h.db, CreateInput{
		SchoolID:    schoolID,
		Name:        req.Name,
		Description: req.Description,
		Order:       req.Order,
		Active:      req.Active,
	})
	if err != nil {
		h.respondError(c, err, "failed to create track")
		return
	}

	response.Created(c, t, "")
}

// Update modifies an existing track.
func (h *Handler) Update(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	id, err := uuid.Parse(c.Param("trackId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid track id", err)
		return
	}

	if _, err := h.ensureTrack(schoolID, id); err != nil {
		h.respondError(c, err, "failed to load track")
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid track payload", err)
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

	if value, ok := body["isActive"]; ok {
		val, err := request.ReadBool(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "isActive must be boolean", err)
			return
		}
		input.Active = &val
	}

	t, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update track")
		return
	}

	response.Success(c, http.StatusOK, t, "", nil)
}

// Delete removes a track; its courses become untracked.
func (h *Handler) Delete(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	id, err := uuid.Parse(c.Param("trackId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid track id", err)
		return
	}

	if _, err := h.ensureTrack(schoolID, id); err != nil {
		h.respondError(c, err, "failed to load track")
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete track")
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

func (h *Handler) ensureTrack(schoolID, trackID uuid.UUID) (Track, error) {
	t, err := Get(h.db, trackID)
	if err != nil {
		return t, err
	}
	if t.SchoolID != schoolID {
		return Track{}, ErrTrackNotFound
	}
	return t, nil
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
	case errors.Is(err, ErrNameRequired):
		status = http.StatusBadRequest
		message = "Track name is required."
	case errors.Is(err, ErrOrderInvalid):
		status = http.StatusBadRequest
		message = "Track order cannot be negative."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
