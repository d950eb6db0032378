package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCreatesAndOverwritesPosition(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)
	lessonID := f.lessons[0].ID
	duration := 600.0

	p, err := Save(db, f.user.ID, lessonID, 120.6, &duration)
	require.NoError(t, err)
	assert.Equal(t, 121, p.LastPositionSeconds, "position rounds to whole seconds")
	assert.Nil(t, p.CompletedAt)

	// position moves backwards freely
	p, err = Save(db, f.user.ID, lessonID, 45, &duration)
	require.NoError(t, err)
	assert.Equal(t, 45, p.LastPositionSeconds)
	assert.Nil(t, p.CompletedAt)

	var count int64
	require.NoError(t, db.Model(&LessonProgress{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "one row per user and lesson")
}

func TestSaveIdempotent(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)
	duration := 600.0

	first, err := Save(db, f.user.ID, f.lessons[0].ID, 590, &duration)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	second, err := Save(db, f.user.ID, f.lessons[0].ID, 590, &duration)
	require.NoError(t, err)

	assert.Equal(t, first.LastPositionSeconds, second.LastPositionSeconds)
	require.NotNil(t, second.CompletedAt)
	assert.True(t, first.CompletedAt.Equal(*second.CompletedAt), "completedAt keeps its original timestamp")
}

func TestSaveCompletionIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)
	lessonID := f.lessons[0].ID
	duration := 600.0

	completed, err := Save(db, f.user.ID, lessonID, 585, &duration)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)

	// rewinding below the threshold must not clear completion
	rewound, err := Save(db, f.user.ID, lessonID, 10, &duration)
	require.NoError(t, err)
	assert.Equal(t, 10, rewound.LastPositionSeconds)
	require.NotNil(t, rewound.CompletedAt)
	assert.True(t, completed.CompletedAt.Equal(*rewound.CompletedAt))

	// a save without any duration keeps it too
	noDuration, err := Save(db, f.user.ID, lessonID, 20, nil)
	require.NoError(t, err)
	assert.NotNil(t, noDuration.CompletedAt)
}

func TestSaveRejectsBadNumbers(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)
	duration := 600.0
	negDuration := -5.0

	_, err := Save(db, f.user.ID, f.lessons[0].ID, -1, &duration)
	assert.ErrorIs(t, err, ErrInvalidPosition)

	_, err = Save(db, f.user.ID, f.lessons[0].ID, 10, &negDuration)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestMarkCompletedBypassesThreshold(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 2)
	lessonID := f.lessons[0].ID
	duration := 600.0

	_, err := Save(db, f.user.ID, lessonID, 42, &duration)
	require.NoError(t, err)

	p, err := MarkCompleted(db, f.user.ID, lessonID)
	require.NoError(t, err)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, 42, p.LastPositionSeconds, "explicit completion keeps the stored position")

	// re-completing keeps the first completion timestamp
	again, err := MarkCompleted(db, f.user.ID, lessonID)
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, p.CompletedAt.Equal(*again.CompletedAt))

	// works without a prior row as well
	other, err := MarkCompleted(db, f.user.ID, f.lessons[1].ID)
	require.NoError(t, err)
	assert.NotNil(t, other.CompletedAt)
}

func TestGetForLessonSynthesizesZeroedRecord(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)

	p, err := GetForLesson(db, f.user.ID, f.lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.LastPositionSeconds)
	assert.Nil(t, p.CompletedAt)
	assert.Equal(t, f.user.ID, p.UserID)
	assert.Equal(t, f.lessons[0].ID, p.LessonID)
}

func TestCompletedSetBatches(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 3)
	lessonIDs := f.lessonIDs()

	completeLessons(t, db, f.user.ID, lessonIDs[0], lessonIDs[2])

	set, err := CompletedSet(db, f.user.ID, lessonIDs)
	require.NoError(t, err)
	assert.True(t, set[lessonIDs[0]])
	assert.False(t, set[lessonIDs[1]])
	assert.True(t, set[lessonIDs[2]])

	empty, err := CompletedSet(db, f.user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMigrationsCoverProgressModels(t *testing.T) {
	db := newTestDB(t)
	for _, table := range []string{"users", "schools", "tracks", "courses", "modules", "lessons", "plans", "enrollments", "lesson_progress"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
