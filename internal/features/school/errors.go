package school

import "errors"

var (
	ErrSchoolNotFound = errors.New("school not found")
	ErrNameRequired   = errors.New("school name is required")
	ErrNameLength     = errors.New("school name must be between 3 and 100 characters")
	ErrSlugInvalid    = errors.New("school slug must be 3-20 lowercase characters")
	ErrSlugTaken      = errors.New("school slug is already taken")
)
