package course

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrSchoolNotFound = errors.New("school not found")
	ErrTrackNotFound  = errors.New("track not found")
	ErrNameRequired   = errors.New("course name is required")
	ErrNameLength     = errors.New("course name must be between 3 and 100 characters")
	ErrOrderInvalid   = errors.New("course order cannot be negative")
)
