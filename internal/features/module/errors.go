package module

import "errors"

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrNameRequired   = errors.New("module name is required")
	ErrNameLength     = errors.New("module name must be between 3 and 100 characters")
	ErrOrderInvalid   = errors.New("module order cannot be negative")
)
