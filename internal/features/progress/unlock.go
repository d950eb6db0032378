package progress

import "github.com/google/uuid"

// Pure sequential-unlock calculations. Callers load ordered ID lists and the
// completed subset; nothing here touches the database, which keeps the rules
// easy to test and impossible to race.

// IsCourseCompleted reports whether every lesson in the ordered list is
// completed. An empty course is vacuously complete.
func IsCourseCompleted(orderedLessonIDs []uuid.UUID, completed map[uuid.UUID]bool) bool {
	for _, id := range orderedLessonIDs {
		if !completed[id] {
			return false
		}
	}
	return true
}

// UnlockedCourseIDs walks an ordered course chain: the first course is always
// unlocked, each later course unlocks when its predecessor is completed.
// Unlock stops at the first incomplete course.
func UnlockedCourseIDs(orderedCourseIDs []uuid.UUID, completedCourses map[uuid.UUID]bool) []uuid.UUID {
	unlocked := make([]uuid.UUID, 0, len(orderedCourseIDs))
	for i, id := range orderedCourseIDs {
		if i > 0 && !completedCourses[orderedCourseIDs[i-1]] {
			break
		}
		unlocked = append(unlocked, id)
	}
	return unlocked
}

// IsLessonUnlocked reports whether a lesson is reachable in the course-wide
// ordered lesson list, and which lesson gates it. The first lesson is always
// unlocked with no predecessor. A lesson not present in the list is locked.
func IsLessonUnlocked(orderedLessonIDs []uuid.UUID, completed map[uuid.UUID]bool, lessonID uuid.UUID) (bool, *uuid.UUID) {
	for i, id := range orderedLessonIDs {
		if id != lessonID {
			continue
		}
		if i == 0 {
			return true, nil
		}
		prev := orderedLessonIDs[i-1]
		return completed[prev], &prev
	}
	return false, nil
}

// UnlockedLessonIDs returns the reachable prefix of the ordered lesson list:
// every completed lesson plus the first incomplete one. Unlock does not
// propagate past the first incomplete lesson.
func UnlockedLessonIDs(orderedLessonIDs []uuid.UUID, completed map[uuid.UUID]bool) []uuid.UUID {
	unlocked := make([]uuid.UUID, 0, len(orderedLessonIDs))
	for i, id := range orderedLessonIDs {
		if i > 0 && !completed[orderedLessonIDs[i-1]] {
			break
		}
		unlocked = append(unlocked, id)
	}
	return unlocked
}

// IsModuleUnlocked reports whether a module is reachable: an empty module is
// always unlocked, otherwise its first lesson must be the course's first
// lesson or follow a completed one.
func IsModuleUnlocked(orderedLessonIDs []uuid.UUID, completed map[uuid.UUID]bool, moduleLessonIDs []uuid.UUID) bool {
	if len(moduleLessonIDs) == 0 {
		return true
	}
	unlocked, _ := IsLessonUnlocked(orderedLessonIDs, completed, moduleLessonIDs[0])
	return unlocked
}
