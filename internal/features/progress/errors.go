package progress

import "errors"

var (
	ErrInvalidPosition = errors.New("position must be a non-negative finite number")
	ErrInvalidDuration = errors.New("duration must be a non-negative finite number")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrLessonLocked    = errors.New("lesson is locked")
	ErrCourseLocked    = errors.New("course is locked")
	ErrNotEntitled     = errors.New("no active enrollment for this school")
	ErrVideoNotReady   = errors.New("lesson video is not ready")
)
