package lesson

import "errors"

var (
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrModuleNotFound  = errors.New("module not found")
	ErrNameRequired    = errors.New("lesson name is required")
	ErrNameLength      = errors.New("lesson name must be between 3 and 150 characters")
	ErrOrderInvalid    = errors.New("lesson order cannot be negative")
	ErrDurationInvalid = errors.New("lesson duration must be a non-negative finite number")
)
