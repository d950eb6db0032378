package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	coursefeature "github.com/mkamel7/academy-server-go/internal/features/course"
	enrollmentfeature "github.com/mkamel7/academy-server-go/internal/features/enrollment"
	lessonfeature "github.com/mkamel7/academy-server-go/internal/features/lesson"
	modulefeature "github.com/mkamel7/academy-server-go/internal/features/module"
	schoolfeature "github.com/mkamel7/academy-server-go/internal/features/school"
	trackfeature "github.com/mkamel7/academy-server-go/internal/features/track"
	"github.com/mkamel7/academy-server-go/internal/features/user"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps the in-memory schema alive
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&schoolfeature.School{},
		&trackfeature.Track{},
		&coursefeature.Course{},
		&modulefeature.Module{},
		&lessonfeature.Lesson{},
		&enrollmentfeature.Plan{},
		&enrollmentfeature.Enrollment{},
		&LessonProgress{},
	))

	return db
}

// fixture is one school with a tracked course holding two modules of
// published lessons.
type fixture struct {
	user    user.User
	school  schoolfeature.School
	track   trackfeature.Track
	course  coursefeature.Course
	modules []modulefeature.Module
	lessons []lessonfeature.Lesson
}

func (f fixture) lessonIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(f.lessons))
	for i, l := range f.lessons {
		ids[i] = l.ID
	}
	return ids
}

func seedCourse(t *testing.T, db *gorm.DB, lessonsPerModule ...int) fixture {
	t.Helper()

	f := fixture{}

	f.user = user.User{FullName: "Test Student", Email: uuid.NewString() + "@test.test", Password: "x", UserType: types.UserTypeStudent, Active: true}
	require.NoError(t, db.Create(&f.user).Error)

	f.school = schoolfeature.School{Name: "Test School", Slug: "test-school-" + uuid.NewString()[:8], Active: true}
	require.NoError(t, db.Create(&f.school).Error)

	f.track = trackfeature.Track{SchoolID: f.school.ID, Name: "Test Track", Active: true}
	require.NoError(t, db.Create(&f.track).Error)

	trackID := f.track.ID
	f.course = coursefeature.Course{SchoolID: f.school.ID, TrackID: &trackID, Name: "Test Course", Published: true}
	require.NoError(t, db.Create(&f.course).Error)

	base := time.Now().Add(-time.Hour)
	for mi, count := range lessonsPerModule {
		mod := modulefeature.Module{CourseID: f.course.ID, Name: "Module", Order: mi}
		require.NoError(t, db.Create(&mod).Error)
		f.modules = append(f.modules, mod)

		for li := 0; li < count; li++ {
			duration := 600.0
			lsn := lessonfeature.Lesson{
				ModuleID:        mod.ID,
				Name:            "Lesson",
				Order:           li,
				Published:       true,
				DurationSeconds: &duration,
			}
			lsn.CreatedAt = base.Add(time.Duration(mi*100+li) * time.Second)
			require.NoError(t, db.Create(&lsn).Error)
			f.lessons = append(f.lessons, lsn)
		}
	}

	return f
}

func completeLessons(t *testing.T, db *gorm.DB, userID uuid.UUID, lessonIDs ...uuid.UUID) {
	t.Helper()
	for _, id := range lessonIDs {
		_, err := MarkCompleted(db, userID, id)
		require.NoError(t, err)
	}
}
