package progress

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkamel7/academy-server-go/pkg/types"
)

// LessonProgress is one user's playback state for one lesson. One row per
// (user, lesson); completion is monotonic, completed_at never reverts to
// null once set.
type LessonProgress struct {
	types.BaseModel

	UserID              uuid.UUID  `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_lesson_progress_user_lesson,priority:1" json:"userId"`
	LessonID            uuid.UUID  `gorm:"type:uuid;not null;column:lesson_id;index;uniqueIndex:idx_lesson_progress_user_lesson,priority:2" json:"lessonId"`
	LastPositionSeconds int        `gorm:"type:int;not null;default:0;column:last_position_seconds" json:"lastPositionSeconds"`
	CompletedAt         *time.Time `gorm:"column:completed_at" json:"completedAt"`
}

// TableName overrides the default table name.
func (LessonProgress) TableName() string { return "lesson_progress" }

// Completed reports whether the lesson has been completed.
func (p LessonProgress) Completed() bool { return p.CompletedAt != nil }

// Save records a playback position. The position always overwrites the
// stored one (rounded to whole seconds); completion is derived from the
// reported duration and only ever sets completed_at, a single conditional
// upsert so concurrent saves cannot clear it.
func Save(db *gorm.DB, userID, lessonID uuid.UUID, positionSeconds float64, durationSeconds *float64) (LessonProgress, error) {
	if positionSeconds < 0 || math.IsNaN(positionSeconds) || math.IsInf(positionSeconds, 0) {
		return LessonProgress{}, ErrInvalidPosition
	}
	if durationSeconds != nil && (*durationSeconds < 0 || math.IsNaN(*durationSeconds) || math.IsInf(*durationSeconds, 0)) {
		return LessonProgress{}, ErrInvalidDuration
	}

	completed := durationSeconds != nil && ShouldMarkCompleted(positionSeconds, *durationSeconds)

	return upsert(db, userID, lessonID, int(math.Round(positionSeconds)), completed)
}

// MarkCompleted completes a lesson regardless of playback position. The
// stored position is left untouched.
func MarkCompleted(db *gorm.DB, userID, lessonID uuid.UUID) (LessonProgress, error) {
	existing, err := GetForLesson(db, userID, lessonID)
	if err != nil {
		return LessonProgress{}, err
	}

	return upsert(db, userID, lessonID, existing.LastPositionSeconds, true)
}

// GetForLesson reads the progress row for a lesson. A missing row comes back
// as a zeroed record rather than an error.
func GetForLesson(db *gorm.DB, userID, lessonID uuid.UUID) (LessonProgress, error) {
	var p LessonProgress
	err := db.First(&p, "user_id = ? AND lesson_id = ?", userID, lessonID).Error
	if err == gorm.ErrRecordNotFound {
		return LessonProgress{UserID: userID, LessonID: lessonID}, nil
	}
	if err != nil {
		return LessonProgress{}, err
	}
	return p, nil
}

// CompletedSet returns which of the given lessons the user has completed,
// one batched query.
func CompletedSet(db *gorm.DB, userID uuid.UUID, lessonIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	completed := make(map[uuid.UUID]bool, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return completed, nil
	}

	var ids []uuid.UUID
	err := db.Model(&LessonProgress{}).
		Where("user_id = ? AND lesson_id IN ? AND completed_at IS NOT NULL", userID, lessonIDs).
		Pluck("lesson_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}

func upsert(db *gorm.DB, userID, lessonID uuid.UUID, position int, completed bool) (LessonProgress, error) {
	now := time.Now()

	row := LessonProgress{
		UserID:              userID,
		LessonID:            lessonID,
		LastPositionSeconds: position,
	}
	if completed {
		row.CompletedAt = &now
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_position_seconds": position,
			"updated_at":            now,
			"completed_at": gorm.Expr(
				"CASE WHEN ? THEN COALESCE(lesson_progress.completed_at, ?) ELSE lesson_progress.completed_at END",
				completed, now,
			),
		}),
	}).Create(&row).Error
	if err != nil {
		return LessonProgress{}, err
	}

	return GetForLesson(db, userID, lessonID)
}
