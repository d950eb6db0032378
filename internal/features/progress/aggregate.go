package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	coursefeature "github.com/mkamel7/academy-server-go/internal/features/course"
	lessonfeature "github.com/mkamel7/academy-server-go/internal/features/lesson"
	modulefeature "github.com/mkamel7/academy-server-go/internal/features/module"
	"github.com/mkamel7/academy-server-go/pkg/cache"
)

// How long cached course-progress payloads live. Saves invalidate eagerly;
// the TTL only bounds staleness across instances.
const progressCacheTTL = 5 * time.Minute

// ModuleProgress is the per-module slice of a course progress summary.
type ModuleProgress struct {
	ModuleID       uuid.UUID `json:"moduleId"`
	Title          string    `json:"title"`
	CompletedCount int       `json:"completedCount"`
	TotalCount     int       `json:"totalCount"`
	Percent        float64   `json:"percent"`
}

// CourseProgressResult is the aggregated completion summary for a course.
type CourseProgressResult struct {
	CourseID        uuid.UUID        `json:"courseId"`
	CompletedCount  int              `json:"completedCount"`
	TotalCount      int              `json:"totalCount"`
	ProgressPercent float64          `json:"progressPercent"`
	Modules         []ModuleProgress `json:"modules"`
}

// ModuleUnlock is the per-module unlock flag for rendering.
type ModuleUnlock struct {
	ModuleID uuid.UUID `json:"moduleId"`
	Unlocked bool      `json:"unlocked"`
}

// CourseUnlockStateResult is everything a client needs to render lock icons.
type CourseUnlockStateResult struct {
	CourseID          uuid.UUID      `json:"courseId"`
	CourseUnlocked    bool           `json:"courseUnlocked"`
	UnlockedLessonIDs []uuid.UUID    `json:"unlockedLessonIds"`
	Modules           []ModuleUnlock `json:"modules"`
}

// courseTree is the ordered published lesson structure of one course:
// modules in sequence order, each holding its published lessons in sequence
// order, plus the flattened course-wide lesson order.
type courseTree struct {
	course           coursefeature.Course
	modules          []modulefeature.Module
	lessonsByModule  map[uuid.UUID][]lessonfeature.Lesson
	orderedLessonIDs []uuid.UUID
}

func loadTree(db *gorm.DB, courseID uuid.UUID) (courseTree, error) {
	tree := courseTree{}

	crs, err := coursefeature.Get(db, courseID)
	if err != nil {
		if errors.Is(err, coursefeature.ErrCourseNotFound) {
			return tree, ErrCourseNotFound
		}
		return tree, err
	}
	tree.course = crs

	modules, err := modulefeature.GetByCourse(db, courseID)
	if err != nil {
		return tree, err
	}
	tree.modules = modules

	moduleIDs := make([]uuid.UUID, len(modules))
	for i, m := range modules {
		moduleIDs[i] = m.ID
	}

	lessons, err := lessonfeature.PublishedByModules(db, moduleIDs)
	if err != nil {
		return tree, err
	}
	tree.lessonsByModule = lessons

	for _, m := range modules {
		for _, l := range lessons[m.ID] {
			tree.orderedLessonIDs = append(tree.orderedLessonIDs, l.ID)
		}
	}

	return tree, nil
}

// CourseProgress computes the user's completion summary for a course:
// totals, a percent rounded to two decimals and a per-module breakdown. A
// course or module without published lessons counts as 100%.
func CourseProgress(db *gorm.DB, userID, courseID uuid.UUID) (CourseProgressResult, error) {
	tree, err := loadTree(db, courseID)
	if err != nil {
		return CourseProgressResult{}, err
	}

	completed, err := CompletedSet(db, userID, tree.orderedLessonIDs)
	if err != nil {
		return CourseProgressResult{}, err
	}

	result := CourseProgressResult{
		CourseID:   courseID,
		TotalCount: len(tree.orderedLessonIDs),
		Modules:    make([]ModuleProgress, 0, len(tree.modules)),
	}

	for _, m := range tree.modules {
		lessons := tree.lessonsByModule[m.ID]

		moduleCompleted := 0
		for _, l := range lessons {
			if completed[l.ID] {
				moduleCompleted++
			}
		}
		result.CompletedCount += moduleCompleted

		result.Modules = append(result.Modules, ModuleProgress{
			ModuleID:       m.ID,
			Title:          m.Name,
			CompletedCount: moduleCompleted,
			TotalCount:     len(lessons),
			Percent:        percent(moduleCompleted, len(lessons)),
		})
	}

	result.ProgressPercent = percent(result.CompletedCount, result.TotalCount)
	return result, nil
}

// CachedCourseProgress serves CourseProgress through the cache when one is
// configured. Invalidated on every save for the same user and course.
func CachedCourseProgress(ctx context.Context, db *gorm.DB, cacheClient cache.Client, userID, courseID uuid.UUID) (CourseProgressResult, error) {
	if cacheClient == nil {
		return CourseProgress(db, userID, courseID)
	}

	key := progressCacheKey(userID, courseID)
	if raw, err := cacheClient.Get(ctx, key); err == nil && raw != "" {
		var cached CourseProgressResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	}

	result, err := CourseProgress(db, userID, courseID)
	if err != nil {
		return result, err
	}

	if data, err := json.Marshal(result); err == nil {
		_ = cacheClient.Set(ctx, key, string(data), progressCacheTTL)
	}

	return result, nil
}

// InvalidateCourseProgress drops the cached summary for a user and course.
func InvalidateCourseProgress(ctx context.Context, cacheClient cache.Client, userID, courseID uuid.UUID) {
	if cacheClient == nil {
		return
	}
	_ = cacheClient.Delete(ctx, progressCacheKey(userID, courseID))
}

// IsCourseUnlockedForUser decides whether the user may enter the course.
// Untracked courses are always unlocked; tracked courses gate sequentially
// on completion of every published predecessor in the track.
func IsCourseUnlockedForUser(db *gorm.DB, userID uuid.UUID, crs coursefeature.Course) (bool, error) {
	if crs.TrackID == nil {
		return true, nil
	}

	chain, err := coursefeature.PublishedByTrack(db, *crs.TrackID)
	if err != nil {
		return false, err
	}

	orderedCourseIDs := make([]uuid.UUID, len(chain))
	completedCourses := make(map[uuid.UUID]bool, len(chain))
	for i, chainCourse := range chain {
		orderedCourseIDs[i] = chainCourse.ID

		done, err := isCourseCompletedForUser(db, userID, chainCourse.ID)
		if err != nil {
			return false, err
		}
		completedCourses[chainCourse.ID] = done
	}

	for _, id := range UnlockedCourseIDs(orderedCourseIDs, completedCourses) {
		if id == crs.ID {
			return true, nil
		}
	}
	return false, nil
}

// CourseUnlockState builds the unlock view of a course: whether the course
// itself is reachable, which lessons are, and a flag per module.
func CourseUnlockState(db *gorm.DB, userID, courseID uuid.UUID) (CourseUnlockStateResult, error) {
	tree, err := loadTree(db, courseID)
	if err != nil {
		return CourseUnlockStateResult{}, err
	}

	courseUnlocked, err := IsCourseUnlockedForUser(db, userID, tree.course)
	if err != nil {
		return CourseUnlockStateResult{}, err
	}

	result := CourseUnlockStateResult{
		CourseID:       courseID,
		CourseUnlocked: courseUnlocked,
		Modules:        make([]ModuleUnlock, 0, len(tree.modules)),
	}

	if !courseUnlocked {
		result.UnlockedLessonIDs = []uuid.UUID{}
		for _, m := range tree.modules {
			result.Modules = append(result.Modules, ModuleUnlock{ModuleID: m.ID, Unlocked: false})
		}
		return result, nil
	}

	completed, err := CompletedSet(db, userID, tree.orderedLessonIDs)
	if err != nil {
		return CourseUnlockStateResult{}, err
	}

	result.UnlockedLessonIDs = UnlockedLessonIDs(tree.orderedLessonIDs, completed)

	for _, m := range tree.modules {
		moduleLessonIDs := make([]uuid.UUID, len(tree.lessonsByModule[m.ID]))
		for i, l := range tree.lessonsByModule[m.ID] {
			moduleLessonIDs[i] = l.ID
		}
		result.Modules = append(result.Modules, ModuleUnlock{
			ModuleID: m.ID,
			Unlocked: IsModuleUnlocked(tree.orderedLessonIDs, completed, moduleLessonIDs),
		})
	}

	return result, nil
}

func isCourseCompletedForUser(db *gorm.DB, userID, courseID uuid.UUID) (bool, error) {
	tree, err := loadTree(db, courseID)
	if err != nil {
		return false, err
	}

	completed, err := CompletedSet(db, userID, tree.orderedLessonIDs)
	if err != nil {
		return false, err
	}

	return IsCourseCompleted(tree.orderedLessonIDs, completed), nil
}

func percent(completed, total int) float64 {
	if total == 0 {
		return 100
	}
	return math.Round(float64(completed)/float64(total)*100*100) / 100
}

func progressCacheKey(userID, courseID uuid.UUID) string {
	return fmt.Sprintf("progress:course:%s:user:%s", courseID, userID)
}
