package progress

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func setOf(ids ...uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestIsCourseCompleted(t *testing.T) {
	lessons := ids(3)

	assert.True(t, IsCourseCompleted(nil, setOf()), "empty course is vacuously complete")
	assert.True(t, IsCourseCompleted(lessons, setOf(lessons...)))
	assert.False(t, IsCourseCompleted(lessons, setOf(lessons[0], lessons[2])))
	assert.False(t, IsCourseCompleted(lessons, setOf()))
}

func TestIsLessonUnlocked(t *testing.T) {
	lessons := ids(3)

	unlocked, prev := IsLessonUnlocked(lessons, setOf(), lessons[0])
	assert.True(t, unlocked, "first lesson is always unlocked")
	assert.Nil(t, prev)

	unlocked, prev = IsLessonUnlocked(lessons, setOf(), lessons[1])
	assert.False(t, unlocked)
	if assert.NotNil(t, prev) {
		assert.Equal(t, lessons[0], *prev)
	}

	unlocked, prev = IsLessonUnlocked(lessons, setOf(lessons[0]), lessons[1])
	assert.True(t, unlocked)
	if assert.NotNil(t, prev) {
		assert.Equal(t, lessons[0], *prev)
	}

	// completing A does not reach past B to C
	unlocked, _ = IsLessonUnlocked(lessons, setOf(lessons[0]), lessons[2])
	assert.False(t, unlocked)

	unlocked, prev = IsLessonUnlocked(lessons, setOf(lessons...), uuid.New())
	assert.False(t, unlocked, "unknown lesson is locked")
	assert.Nil(t, prev)
}

func TestUnlockedLessonIDs(t *testing.T) {
	lessons := ids(4)

	assert.Empty(t, UnlockedLessonIDs(nil, setOf()))

	assert.Equal(t, lessons[:1], UnlockedLessonIDs(lessons, setOf()),
		"only the first lesson is reachable with nothing completed")

	assert.Equal(t, lessons[:2], UnlockedLessonIDs(lessons, setOf(lessons[0])))

	// a gap stops the scan even when later lessons are completed
	assert.Equal(t, lessons[:2], UnlockedLessonIDs(lessons, setOf(lessons[0], lessons[2], lessons[3])))

	assert.Equal(t, lessons, UnlockedLessonIDs(lessons, setOf(lessons...)))
}

func TestUnlockedCourseIDs(t *testing.T) {
	courses := ids(3)

	assert.Empty(t, UnlockedCourseIDs(nil, setOf()))

	assert.Equal(t, courses[:1], UnlockedCourseIDs(courses, setOf()),
		"first course in a track is always unlocked")

	assert.Equal(t, courses[:2], UnlockedCourseIDs(courses, setOf(courses[0])))
	assert.Equal(t, courses, UnlockedCourseIDs(courses, setOf(courses[0], courses[1])))

	// completing only the second course does not unlock the third
	assert.Equal(t, courses[:1], UnlockedCourseIDs(courses, setOf(courses[1])))
}

func TestIsModuleUnlocked(t *testing.T) {
	lessons := ids(4)
	moduleA := lessons[:2]
	moduleB := lessons[2:]

	assert.True(t, IsModuleUnlocked(lessons, setOf(), nil), "empty module is always unlocked")
	assert.True(t, IsModuleUnlocked(lessons, setOf(), moduleA), "module holding the first lesson")
	assert.False(t, IsModuleUnlocked(lessons, setOf(), moduleB))
	assert.False(t, IsModuleUnlocked(lessons, setOf(lessons[0]), moduleB))
	assert.True(t, IsModuleUnlocked(lessons, setOf(lessons[0], lessons[1]), moduleB))
}
