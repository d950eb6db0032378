package progress

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	coursefeature "github.com/mkamel7/academy-server-go/internal/features/course"
	enrollmentfeature "github.com/mkamel7/academy-server-go/internal/features/enrollment"
	lessonfeature "github.com/mkamel7/academy-server-go/internal/features/lesson"
	modulefeature "github.com/mkamel7/academy-server-go/internal/features/module"
	"github.com/mkamel7/academy-server-go/internal/features/user"
	"github.com/mkamel7/academy-server-go/internal/middleware"
	"github.com/mkamel7/academy-server-go/pkg/cache"
	"github.com/mkamel7/academy-server-go/pkg/metrics"
	"github.com/mkamel7/academy-server-go/pkg/response"
	"github.com/mkamel7/academy-server-go/pkg/videostream"
)

// Handler processes progress, unlock and playback HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	cache  cache.Client
	videos *videostream.Client
}

// NewHandler constructs a progress handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, cacheClient cache.Client, videos *videostream.Client) *Handler {
	return &Handler{db: db, logger: logger, cache: cacheClient, videos: videos}
}

type progressPayload struct {
	LessonID            uuid.UUID  `json:"lessonId"`
	LastPositionSeconds int        `json:"lastPositionSeconds"`
	CompletedAt         *time.Time `json:"completedAt"`
}

func toPayload(p LessonProgress) progressPayload {
	return progressPayload{
		LessonID:            p.LessonID,
		LastPositionSeconds: p.LastPositionSeconds,
		CompletedAt:         p.CompletedAt,
	}
}

// SaveProgress records a playback position for the current user.
func (h *Handler) SaveProgress(c *gin.Context) {
	viewer, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	lessonID, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	lsn, err := lessonfeature.GetPublished(h.db, lessonID)
	if err != nil {
		h.respondError(c, mapLessonError(err), "failed to load lesson")
		return
	}

	var req struct {
		PositionSeconds *float64 `json:"positionSeconds" binding:"required"`
		DurationSeconds *float64 `json:"durationSeconds"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid progress payload", err)
		return
	}

	before, err := GetForLesson(h.db, viewer.ID, lessonID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load progress", err)
		return
	}

	// Players that do not report a duration fall back to the stored lesson
	// duration so the threshold can still fire.
	duration := req.DurationSeconds
	if duration == nil {
		duration = lsn.DurationSeconds
	}

	saved, err := Save(h.db, viewer.ID, lessonID, *req.PositionSeconds, duration)
	if err != nil {
		h.respondError(c, err, "failed to save progress")
		return
	}

	if !before.Completed() && saved.Completed() {
		metrics.RecordLessonCompletion("threshold")
	}

	h.invalidateForLesson(c, viewer.ID, lsn)

	response.Success(c, http.StatusOK, toPayload(saved), "", nil)
}

// GetProgress reads the current user's progress for a lesson. Lessons never
// opened come back as a zeroed record.
func (h *Handler) GetProgress(c *gin.Context) {
	viewer, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	lessonID, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	if _, err := lessonfeature.GetPublished(h.db, lessonID); err != nil {
		h.respondError(c, mapLessonError(err), "failed to load lesson")
		return
	}

	p, err := GetForLesson(h.db, viewer.ID, lessonID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load progress", err)
		return
	}

	response.Success(c, http.StatusOK, toPayload(p), "", nil)
}

// Complete marks a lesson completed regardless of playback position.
func (h *Handler) Complete(c *gin.Context) {
	viewer, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	lessonID, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	lsn, err := lessonfeature.GetPublished(h.db, lessonID)
	if err != nil {
		h.respondError(c, mapLessonError(err), "failed to load lesson")
		return
	}

	before, err := GetForLesson(h.db, viewer.ID, lessonID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load progress", err)
		return
	}

	p, err := MarkCompleted(h.db, viewer.ID, lessonID)
	if err != nil {
		h.respondError(c, err, "failed to mark lesson completed")
		return
	}

	if !before.Completed() {
		metrics.RecordLessonCompletion("explicit")
	}

	h.invalidateForLesson(c, viewer.ID, lsn)

	response.Success(c, http.StatusOK, toPayload(p), "", nil)
}

// CourseProgress returns the aggregated completion summary for a course.
func (h *Handler) CourseProgress(c *gin.Context) {
	viewer, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	result, err := CachedCourseProgress(c.Request.Context(), h.db, h.cache, viewer.ID, courseID)
	if err != nil {
		h.respondError(c, err, "failed to compute course progress")
		return
	}

	response.Success(c, http.StatusOK, result, "", nil)
}

// CourseUnlocks returns the unlock state of a course for rendering.
func (h *Handler) CourseUnlocks(c *gin.Context) {
	viewer, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	result, err := CourseUnlockState(h.db, viewer.ID, courseID)
	if err != nil {
		h.respondError(c, err, "failed to compute unlock state")
		return
	}

	response.Success(c, http.StatusOK, result, "", nil)
}

// VideoURL hands out a signed playback URL for a lesson. Students must hold
// an active enrollment in the course's school and the lesson must be
// reachable in the unlock chain; staff bypass both gates.
func (h *Handler) VideoURL(c *gin.Context) {
	viewer, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	lessonID, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	lsn, err := lessonfeature.GetPublished(h.db, lessonID)
	if err != nil {
		h.respondError(c, mapLessonError(err), "failed to load lesson")
		return
	}

	if lsn.VideoID == nil || !lsn.VideoReady {
		h.respondError(c, ErrVideoNotReady, "failed to load video")
		return
	}

	if !viewer.IsStaff() {
		if err := h.authorizePlayback(viewer, lsn); err != nil {
			h.respondError(c, err, "failed to authorize playback")
			return
		}
	}

	signedURL, err := h.videos.SignedPlaybackURL(*lsn.VideoID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to sign playback url", err)
		return
	}

	response.SuccessNoCache(c, http.StatusOK, gin.H{"url": signedURL}, "")
}

func (h *Handler) authorizePlayback(viewer *user.User, lsn lessonfeature.Lesson) error {
	mod, err := modulefeature.Get(h.db, lsn.ModuleID)
	if err != nil {
		return err
	}

	crs, err := coursefeature.Get(h.db, mod.CourseID)
	if err != nil {
		return err
	}
	if !crs.Published {
		return ErrLessonNotFound
	}

	entitled, err := enrollmentfeature.HasActiveForSchool(h.db, viewer.ID, crs.SchoolID)
	if err != nil {
		return err
	}
	if !entitled {
		return ErrNotEntitled
	}

	courseUnlocked, err := IsCourseUnlockedForUser(h.db, viewer.ID, crs)
	if err != nil {
		return err
	}
	if !courseUnlocked {
		return ErrCourseLocked
	}

	tree, err := loadTree(h.db, crs.ID)
	if err != nil {
		return err
	}

	completed, err := CompletedSet(h.db, viewer.ID, tree.orderedLessonIDs)
	if err != nil {
		return err
	}

	unlocked, _ := IsLessonUnlocked(tree.orderedLessonIDs, completed, lsn.ID)
	if !unlocked {
		return ErrLessonLocked
	}

	return nil
}

// invalidateForLesson drops the cached course summary touched by a save.
func (h *Handler) invalidateForLesson(c *gin.Context, userID uuid.UUID, lsn lessonfeature.Lesson) {
	mod, err := modulefeature.Get(h.db, lsn.ModuleID)
	if err != nil {
		return
	}
	InvalidateCourseProgress(c.Request.Context(), h.cache, userID, mod.CourseID)
}

func mapLessonError(err error) error {
	if errors.Is(err, lessonfeature.ErrLessonNotFound) {
		return ErrLessonNotFound
	}
	return err
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrLessonNotFound), errors.Is(err, modulefeature.ErrModuleNotFound):
		status = http.StatusNotFound
		message = "Lesson not found."
	case errors.Is(err, ErrCourseNotFound), errors.Is(err, coursefeature.ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrInvalidPosition):
		status = http.StatusBadRequest
		message = "Position must be a non-negative finite number."
	case errors.Is(err, ErrInvalidDuration):
		status = http.StatusBadRequest
		message = "Duration must be a non-negative finite number."
	case errors.Is(err, ErrNotEntitled):
		status = http.StatusForbidden
		message = "An active enrollment is required to watch this lesson."
	case errors.Is(err, ErrCourseLocked):
		status = http.StatusForbidden
		message = "Complete the previous course to unlock this one."
	case errors.Is(err, ErrLessonLocked):
		status = http.StatusForbidden
		message = "Complete the previous lesson to unlock this one."
	case errors.Is(err, ErrVideoNotReady):
		status = http.StatusConflict
		message = "The lesson video is still processing."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
