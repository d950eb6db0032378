package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	enrollmentfeature "github.com/mkamel7/academy-server-go/internal/features/enrollment"
	"github.com/mkamel7/academy-server-go/internal/features/user"
	"github.com/mkamel7/academy-server-go/pkg/config"
	"github.com/mkamel7/academy-server-go/pkg/types"
	"github.com/mkamel7/academy-server-go/pkg/videostream"
)

func newTestRouter(db *gorm.DB, viewer *user.User) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	videos := videostream.NewClient(config.VideoConfig{
		SigningKey:  "test-signing-key",
		DeliveryURL: "https://cdn.test",
		ExpiresIn:   3600,
	})

	handler := NewHandler(db, logger, nil, videos)

	router := gin.New()
	api := router.Group("/api")

	session := []gin.HandlerFunc{func(c *gin.Context) {
		if viewer != nil {
			c.Set("user", viewer)
		}
		c.Next()
	}}

	RegisterRoutes(api, handler, session)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func TestSaveProgressEndpoint(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)
	router := newTestRouter(db, &f.user)

	path := fmt.Sprintf("/api/lessons/%s/progress", f.lessons[0].ID)

	w := doJSON(router, http.MethodPatch, path, gin.H{"positionSeconds": 120.4, "durationSeconds": 600})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload progressPayload
	decodeData(t, w, &payload)
	assert.Equal(t, f.lessons[0].ID, payload.LessonID)
	assert.Equal(t, 120, payload.LastPositionSeconds)
	assert.Nil(t, payload.CompletedAt)

	// crossing the threshold completes
	w = doJSON(router, http.MethodPatch, path, gin.H{"positionSeconds": 580, "durationSeconds": 600})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &payload)
	assert.NotNil(t, payload.CompletedAt)
}

func TestSaveProgressUsesStoredDuration(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1) // lessons carry a 600s duration
	router := newTestRouter(db, &f.user)

	path := fmt.Sprintf("/api/lessons/%s/progress", f.lessons[0].ID)

	w := doJSON(router, http.MethodPatch, path, gin.H{"positionSeconds": 590})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload progressPayload
	decodeData(t, w, &payload)
	assert.NotNil(t, payload.CompletedAt, "stored lesson duration backs the threshold")
}

func TestSaveProgressValidation(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)
	router := newTestRouter(db, &f.user)

	path := fmt.Sprintf("/api/lessons/%s/progress", f.lessons[0].ID)

	w := doJSON(router, http.MethodPatch, path, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "positionSeconds is required")

	w = doJSON(router, http.MethodPatch, path, gin.H{"positionSeconds": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPatch, path, gin.H{"positionSeconds": "yes"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveProgressRequiresSession(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)
	router := newTestRouter(db, nil)

	path := fmt.Sprintf("/api/lessons/%s/progress", f.lessons[0].ID)
	w := doJSON(router, http.MethodPatch, path, gin.H{"positionSeconds": 10})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProgressUnknownLesson(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)
	router := newTestRouter(db, &f.user)

	path := fmt.Sprintf("/api/lessons/%s/progress", f.user.ID) // not a lesson
	w := doJSON(router, http.MethodPatch, path, gin.H{"positionSeconds": 10})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// unpublished lessons look missing to students
	require.NoError(t, db.Model(&f.lessons[0]).Update("is_published", false).Error)
	path = fmt.Sprintf("/api/lessons/%s/progress", f.lessons[0].ID)
	w = doJSON(router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProgressZeroedDefault(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)
	router := newTestRouter(db, &f.user)

	w := doJSON(router, http.MethodGet, fmt.Sprintf("/api/lessons/%s/progress", f.lessons[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload progressPayload
	decodeData(t, w, &payload)
	assert.Equal(t, 0, payload.LastPositionSeconds)
	assert.Nil(t, payload.CompletedAt)
}

func TestCompleteEndpoint(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)
	router := newTestRouter(db, &f.user)

	w := doJSON(router, http.MethodPost, fmt.Sprintf("/api/lessons/%s/complete", f.lessons[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload progressPayload
	decodeData(t, w, &payload)
	assert.NotNil(t, payload.CompletedAt)
}

func TestCourseProgressEndpoint(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 2, 1)
	router := newTestRouter(db, &f.user)

	completeLessons(t, db, f.user.ID, f.lessons[0].ID)

	w := doJSON(router, http.MethodGet, fmt.Sprintf("/api/courses/%s/progress", f.course.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result CourseProgressResult
	decodeData(t, w, &result)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 1, result.CompletedCount)
	require.Len(t, result.Modules, 2)

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/courses/%s/progress", f.user.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourseUnlocksEndpoint(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 2)
	router := newTestRouter(db, &f.user)

	w := doJSON(router, http.MethodGet, fmt.Sprintf("/api/courses/%s/unlocks", f.course.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state CourseUnlockStateResult
	decodeData(t, w, &state)
	assert.True(t, state.CourseUnlocked)
	require.Len(t, state.UnlockedLessonIDs, 1)
	assert.Equal(t, f.lessons[0].ID, state.UnlockedLessonIDs[0])
}

func TestVideoURLGating(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 2)
	router := newTestRouter(db, &f.user)

	videoID := "11111111-2222-3333-4444-555555555555"
	for i := range f.lessons {
		require.NoError(t, db.Model(&f.lessons[i]).Updates(map[string]interface{}{
			"video_id":    videoID,
			"video_ready": true,
		}).Error)
	}

	firstPath := fmt.Sprintf("/api/lessons/%s/video", f.lessons[0].ID)
	secondPath := fmt.Sprintf("/api/lessons/%s/video", f.lessons[1].ID)

	// no enrollment, no playback
	w := doJSON(router, http.MethodGet, firstPath, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, err := enrollmentfeature.Create(db, enrollmentfeature.CreateInput{
		UserID:    f.user.ID,
		SchoolID:  f.school.ID,
		ExpiresAt: timePtr(time.Now().Add(24 * time.Hour)),
	})
	require.NoError(t, err)

	w = doJSON(router, http.MethodGet, firstPath, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload struct {
		URL string `json:"url"`
	}
	decodeData(t, w, &payload)
	assert.Contains(t, payload.URL, videoID)
	assert.Contains(t, payload.URL, "token=")

	// second lesson stays locked until the first completes
	w = doJSON(router, http.MethodGet, secondPath, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	completeLessons(t, db, f.user.ID, f.lessons[0].ID)

	w = doJSON(router, http.MethodGet, secondPath, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVideoURLStaffBypassesGates(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 2)

	admin := user.User{FullName: "Admin", Email: "admin@test.test", Password: "x", UserType: types.UserTypeAdmin, Active: true}
	require.NoError(t, db.Create(&admin).Error)

	router := newTestRouter(db, &admin)

	require.NoError(t, db.Model(&f.lessons[1]).Updates(map[string]interface{}{
		"video_id":    "66666666-7777-8888-9999-000000000000",
		"video_ready": true,
	}).Error)

	w := doJSON(router, http.MethodGet, fmt.Sprintf("/api/lessons/%s/video", f.lessons[1].ID), nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestVideoURLNotReady(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)
	router := newTestRouter(db, &f.user)

	w := doJSON(router, http.MethodGet, fmt.Sprintf("/api/lessons/%s/video", f.lessons[0].ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func timePtr(t time.Time) *time.Time { return &t }
