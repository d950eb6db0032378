package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coursefeature "github.com/mkamel7/academy-server-go/internal/features/course"
	"github.com/mkamel7/academy-server-go/pkg/cache"
)

func TestCourseProgressAggregation(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 2, 1)
	lessonIDs := f.lessonIDs()

	result, err := CourseProgress(db, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 0, result.CompletedCount)
	assert.InDelta(t, 0, result.ProgressPercent, 0.001)
	require.Len(t, result.Modules, 2)
	assert.Equal(t, f.modules[0].Name, result.Modules[0].Title)

	completeLessons(t, db, f.user.ID, lessonIDs[0])

	result, err = CourseProgress(db, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CompletedCount)
	assert.InDelta(t, 33.33, result.ProgressPercent, 0.001, "percent rounds to two decimals")
	assert.InDelta(t, 50, result.Modules[0].Percent, 0.001)
	assert.InDelta(t, 0, result.Modules[1].Percent, 0.001)

	completeLessons(t, db, f.user.ID, lessonIDs[1], lessonIDs[2])

	result, err = CourseProgress(db, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100, result.ProgressPercent, 0.001)
}

func TestCourseProgressEmptyCourseIsComplete(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db) // no modules at all

	result, err := CourseProgress(db, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalCount)
	assert.InDelta(t, 100, result.ProgressPercent, 0.001, "empty course counts as fully complete")
}

func TestCourseProgressUnknownCourse(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)

	_, err := CourseProgress(db, f.user.ID, f.user.ID) // not a course id
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseProgressIgnoresUnpublishedLessons(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 2)

	require.NoError(t, db.Model(&f.lessons[1]).Update("is_published", false).Error)

	result, err := CourseProgress(db, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
}

func TestIsCourseUnlockedForUser(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)

	// second published course in the same track
	trackID := f.track.ID
	second := coursefeature.Course{SchoolID: f.school.ID, TrackID: &trackID, Name: "Second Course", Order: 1, Published: true}
	require.NoError(t, db.Create(&second).Error)

	first, err := IsCourseUnlockedForUser(db, f.user.ID, f.course)
	require.NoError(t, err)
	assert.True(t, first, "first course in a track is always unlocked")

	locked, err := IsCourseUnlockedForUser(db, f.user.ID, second)
	require.NoError(t, err)
	assert.False(t, locked, "second course waits for the first")

	completeLessons(t, db, f.user.ID, f.lessons[0].ID)

	unlocked, err := IsCourseUnlockedForUser(db, f.user.ID, second)
	require.NoError(t, err)
	assert.True(t, unlocked)
}

func TestUntrackedCourseAlwaysUnlocked(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1)

	untracked := coursefeature.Course{SchoolID: f.school.ID, Name: "Standalone", Published: true}
	require.NoError(t, db.Create(&untracked).Error)

	unlocked, err := IsCourseUnlockedForUser(db, f.user.ID, untracked)
	require.NoError(t, err)
	assert.True(t, unlocked)
}

func TestCourseUnlockState(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 2, 2)
	lessonIDs := f.lessonIDs()

	state, err := CourseUnlockState(db, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.True(t, state.CourseUnlocked)
	assert.Equal(t, lessonIDs[:1], state.UnlockedLessonIDs)
	require.Len(t, state.Modules, 2)
	assert.True(t, state.Modules[0].Unlocked)
	assert.False(t, state.Modules[1].Unlocked)

	completeLessons(t, db, f.user.ID, lessonIDs[0], lessonIDs[1])

	state, err = CourseUnlockState(db, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, lessonIDs[:3], state.UnlockedLessonIDs)
	assert.True(t, state.Modules[1].Unlocked, "second module opens once the first is done")
}

func TestCachedCourseProgressInvalidation(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 2)
	memCache := cache.NewMemoryCache()
	ctx := context.Background()

	first, err := CachedCourseProgress(ctx, db, memCache, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.CompletedCount)

	completeLessons(t, db, f.user.ID, f.lessons[0].ID)

	// stale until invalidated
	stale, err := CachedCourseProgress(ctx, db, memCache, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stale.CompletedCount)

	InvalidateCourseProgress(ctx, memCache, f.user.ID, f.course.ID)

	fresh, err := CachedCourseProgress(ctx, db, memCache, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.CompletedCount)
}
