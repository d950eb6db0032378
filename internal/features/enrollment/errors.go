package enrollment

import "errors"

var (
	ErrPlanNotFound       = errors.New("plan not found")
	ErrPlanNameRequired   = errors.New("plan name is required")
	ErrPlanInactive       = errors.New("plan is not active")
	ErrDurationInvalid    = errors.New("plan duration must be a positive number of days")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrExpiryRequired     = errors.New("an expiry date or a plan is required")
	ErrExpiryBeforeStart  = errors.New("expiry must be after the start date")
	ErrSchoolNotFound     = errors.New("school not found")
	ErrUserNotFound       = errors.New("user not found")
)
