package track

import "errors"

var (
	ErrTrackNotFound  = errors.New("track not found")
	ErrSchoolNotFound = errors.New("school not found")
	ErrNameRequired   = errors.New("track name is required")
	ErrOrderInvalid   = errors.New("track order cannot be negative")
)
