package lesson

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	modulefeature "github.com/mkamel7/academy-server-go/internal/features/module"
	"github.com/mkamel7/academy-server-go/pkg/request"
	"github.com/mkamel7/academy-server-go/pkg/response"
	"github.com/mkamel7/academy-server-go/pkg/videostream"
)

// Handler processes lesson HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	videos *videostream.Client
}

// NewHandler constructs a lesson handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, videos *videostream.Client) *Handler {
	return &Handler{db: db, logger: logger, videos: videos}
}

// List returns all lessons of a module in sequence order. Staff see every
// lesson; students only receive published ones.
func (h *Handler) List(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid module id", err)
		return
	}

	if err := h.ensureModule(moduleID); err != nil {
		h.respondError(c, err, "failed to load module")
		return
	}

	var lessons []Lesson
	if c.Query("publishedOnly") == "true" {
		lessons, err = PublishedByModule(h.db, moduleID)
	} else {
		lessons, err = GetByModule(h.db, moduleID)
	}
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list lessons", err)
		return
	}

	response.Success(c, http.StatusOK, lessons, "", nil)
}

// GetByID fetches a single lesson.
func (h *Handler) GetByID(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid module id", err)
		return
	}

	id, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	l, err := h.getForModule(id, moduleID)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	response.Success(c, http.StatusOK, l, "", nil)
}

// Create inserts a new lesson.
func (h *Handler) Create(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid module id", err)
		return
	}

	if err := h.ensureModule(moduleID); err != nil {
		h.respondError(c, err, "failed to load module")
		return
	}

	var req struct {
		Name            string   `json:"name" binding:"required"`
		Description     *string  `json:"description"`
		Order           *int     `json:"order"`
		Published       *bool    `json:"isPublished"`
		DurationSeconds *float64 `json:"durationSeconds"`
		VideoID         *string  `json:"videoId"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	l, err := Create(h.db, CreateInput{
		ModuleID:        moduleID,
		Name:            req.Name,
		Description:     req.Description,
		Order:           req.Order,
		Published:       req.Published,
		DurationSeconds: req.DurationSeconds,
		VideoID:         req.VideoID,
	})
	if err != nil {
		h.respondError(c, err, "failed to create lesson")
		return
	}

	response.Created(c, l, "")
}

// Update modifies an existing lesson.
func (h *Handler) Update(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid module id", err)
		return
	}

	id, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	if _, err := h.getForModule(id, moduleID); err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
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

	if value, ok := body["isPublished"]; ok {
		val, err := request.ReadBool(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "isPublished must be boolean", err)
			return
		}
		input.Published = &val
	}

	if value, ok := body["durationSeconds"]; ok {
		input.DurationProvided = true
		if value != nil {
			val, err := request.ReadFloat(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "durationSeconds must be a number", err)
				return
			}
			input.DurationSeconds = &val
		}
	}

	if value, ok := body["videoId"]; ok {
		input.VideoIDProvided = true
		if value != nil {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "videoId must be a string", err)
				return
			}
			input.VideoID = &str
		}
	}

	l, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update lesson")
		return
	}

	response.Success(c, http.StatusOK, l, "", nil)
}

// Delete removes a lesson.
func (h *Handler) Delete(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid module id", err)
		return
	}

	id, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	if _, err := h.getForModule(id, moduleID); err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete lesson")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

// UploadURL issues a provider upload slot for the lesson's video. Staff only.
func (h *Handler) UploadURL(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid module id", err)
		return
	}

	id, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	l, err := h.getForModule(id, moduleID)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	upload, err := h.videos.CreateUpload(c.Request.Context(), l.Name)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadGateway, "video provider rejected the upload request", err)
		return
	}

	videoID := upload.VideoID
	if _, err := Update(h.db, l.ID, UpdateInput{VideoIDProvided: true, VideoID: &videoID}); err != nil {
		h.respondError(c, err, "failed to attach video to lesson")
		return
	}

	response.Success(c, http.StatusOK, upload, "", nil)
}

// VideoWebhook receives encoding status callbacks from the video provider
// and flips the ready flag once a video finished encoding.
func (h *Handler) VideoWebhook(c *gin.Context) {
	var payload videostream.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid webhook payload", err)
		return
	}

	if !h.videos.VerifyWebhook(c.GetHeader("X-Signature"), payload) {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "webhook signature mismatch", nil)
		return
	}

	if !payload.Finished() {
		response.Success(c, http.StatusOK, gin.H{"acknowledged": true}, "", nil)
		return
	}

	updated, err := MarkVideoReady(h.db, payload.VideoID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to mark video ready", err)
		return
	}

	h.logger.Info("video encoding finished",
		slog.String("videoId", payload.VideoID),
		slog.Int64("lessonsUpdated", updated))

	response.Success(c, http.StatusOK, gin.H{"acknowledged": true, "lessonsUpdated": updated}, "", nil)
}

func (h *Handler) ensureModule(moduleID uuid.UUID) error {
	if _, err := modulefeature.Get(h.db, moduleID); err != nil {
		if errors.Is(err, modulefeature.ErrModuleNotFound) {
			return ErrModuleNotFound
		}
		return err
	}
	return nil
}

func (h *Handler) getForModule(id, moduleID uuid.UUID) (Lesson, error) {
	l, err := Get(h.db, id)
	if err != nil {
		return l, err
	}
	if l.ModuleID != moduleID {
		return l, ErrLessonNotFound
	}
	return l, nil
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrModuleNotFound):
		status = http.StatusNotFound
		message = "Module not found."
	case errors.Is(err, ErrLessonNotFound):
		status = http.StatusNotFound
		message = "Lesson not found."
	case errors.Is(err, ErrNameRequired):
		status = http.StatusBadRequest
		message = "Lesson name is required."
	case errors.Is(err, ErrNameLength):
		status = http.StatusBadRequest
		message = "Lesson name must be between 3 and 150 characters."
	case errors.Is(err, ErrOrderInvalid):
		status = http.StatusBadRequest
		message = "Lesson order cannot be negative."
	case errors.Is(err, ErrDurationInvalid):
		status = http.StatusBadRequest
		message = "Lesson duration must be a non-negative finite number."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
