package enrollment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/pkg/pagination"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

// Plan is a purchasable subscription tier for a school. Pricing is stored
// for display and admin bookkeeping; payment processing happens elsewhere.
type Plan struct {
	types.BaseModel

	SchoolID     uuid.UUID      `gorm:"type:uuid;not null;column:school_id;index" json:"schoolId"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	Price        types.Money    `gorm:"type:decimal(10,2);not null" json:"price"`
	Currency     types.Currency `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	DurationDays int            `gorm:"type:int;not null" json:"durationDays"`
	Active       bool           `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`
}

// TableName overrides the default table name.
func (Plan) TableName() string { return "plans" }

// Enrollment grants a user access to a school's published content until it
// expires. Created by admins; no self-service purchase flow.
type Enrollment struct {
	types.BaseModel

	UserID    uuid.UUID              `gorm:"type:uuid;not null;column:user_id;index;uniqueIndex:idx_user_school_enrollment,priority:1" json:"userId"`
	SchoolID  uuid.UUID              `gorm:"type:uuid;not null;column:school_id;index;uniqueIndex:idx_user_school_enrollment,priority:2" json:"schoolId"`
	PlanID    *uuid.UUID             `gorm:"type:uuid;column:plan_id" json:"planId,omitempty"`
	Status    types.EnrollmentStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	StartsAt  time.Time              `gorm:"not null;column:starts_at" json:"startsAt"`
	ExpiresAt time.Time              `gorm:"not null;column:expires_at;index" json:"expiresAt"`
}

// TableName overrides the default table name.
func (Enrollment) TableName() string { return "enrollments" }

// ActiveAt reports whether the enrollment grants access at the given time.
func (e Enrollment) ActiveAt(now time.Time) bool {
	return e.Status == types.EnrollmentStatusActive && now.Before(e.ExpiresAt)
}

// PlanInput carries data for creating or updating a plan.
type PlanInput struct {
	SchoolID     uuid.UUID
	Name         string
	Price        *types.Money
	Currency     *types.Currency
	DurationDays *int
	Active       *bool
}

// CreateInput carries data for enrolling a user.
type CreateInput struct {
	UserID   uuid.UUID
	SchoolID uuid.UUID
	PlanID   *uuid.UUID
	StartsAt *time.Time
	// ExpiresAt wins over the plan duration when both are provided.
	ExpiresAt *time.Time
}

// GetPlan retrieves a plan by ID.
func GetPlan(db *gorm.DB, id uuid.UUID) (Plan, error) {
	var p Plan
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return p, ErrPlanNotFound
		}
		return p, err
	}
	return p, nil
}

// ListPlans retrieves plans of a school, newest first.
func ListPlans(db *gorm.DB, schoolID uuid.UUID) ([]Plan, error) {
	var plans []Plan
	err := db.Where("school_id = ?", schoolID).
		Order("created_at DESC").
		Find(&plans).Error
	return plans, err
}

// CreatePlan inserts a new plan.
func CreatePlan(db *gorm.DB, input PlanInput) (Plan, error) {
	trimmedName := strings.TrimSpace(input.Name)
	if trimmedName == "" {
		return Plan{}, ErrPlanNameRequired
	}
	if input.DurationDays == nil || *input.DurationDays <= 0 {
		return Plan{}, ErrDurationInvalid
	}

	p := Plan{
		SchoolID:     input.SchoolID,
		Name:         trimmedName,
		Currency:     types.CurrencyUSD,
		DurationDays: *input.DurationDays,
		Active:       true,
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.Currency != nil {
		p.Currency = *input.Currency
	}
	if input.Active != nil {
		p.Active = *input.Active
	}

	if err := db.Create(&p).Error; err != nil {
		return Plan{}, err
	}

	return p, nil
}

// UpdatePlan modifies an existing plan.
func UpdatePlan(db *gorm.DB, id uuid.UUID, input PlanInput) (Plan, error) {
	p, err := GetPlan(db, id)
	if err != nil {
		return p, err
	}

	if strings.TrimSpace(input.Name) != "" {
		p.Name = strings.TrimSpace(input.Name)
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.Currency != nil {
		p.Currency = *input.Currency
	}
	if input.DurationDays != nil {
		if *input.DurationDays <= 0 {
			return p, ErrDurationInvalid
		}
		p.DurationDays = *input.DurationDays
	}
	if input.Active != nil {
		p.Active = *input.Active
	}

	if err := db.Save(&p).Error; err != nil {
		return p, err
	}

	return p, nil
}

// DeletePlan removes a plan. Existing enrollments keep their dates.
func DeletePlan(db *gorm.DB, id uuid.UUID) error {
	if err := db.Model(&Enrollment{}).Where("plan_id = ?", id).Update("plan_id", nil).Error; err != nil {
		return err
	}

	result := db.Delete(&Plan{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// Get retrieves an enrollment by ID.
func Get(db *gorm.DB, id uuid.UUID) (Enrollment, error) {
	var e Enrollment
	if err := db.First(&e, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return e, ErrEnrollmentNotFound
		}
		return e, err
	}
	return e, nil
}

// ListFilters defines enrollment query filters.
type ListFilters struct {
	UserID   *uuid.UUID
	SchoolID *uuid.UUID
	Status   types.EnrollmentStatus
}

// List queries enrollments with filters and pagination, newest first.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Enrollment, int64, error) {
	query := db.Model(&Enrollment{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.SchoolID != nil {
		query = query.Where("school_id = ?", *filters.SchoolID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enrollments []Enrollment
	if err := query.Order("created_at DESC").Offset(params.Skip).Limit(params.Limit).Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

// ListForUser retrieves all enrollments of a user, newest first.
func ListForUser(db *gorm.DB, userID uuid.UUID) ([]Enrollment, error) {
	var enrollments []Enrollment
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// Create enrolls a user in a school. An existing enrollment for the same
// user and school is replaced rather than duplicated.
func Create(db *gorm.DB, input CreateInput) (Enrollment, error) {
	startsAt := time.Now()
	if input.StartsAt != nil {
		startsAt = *input.StartsAt
	}

	var expiresAt time.Time
	switch {
	case input.ExpiresAt != nil:
		expiresAt = *input.ExpiresAt
	case input.PlanID != nil:
		plan, err := GetPlan(db, *input.PlanID)
		if err != nil {
			return Enrollment{}, err
		}
		if !plan.Active {
			return Enrollment{}, ErrPlanInactive
		}
		expiresAt = startsAt.AddDate(0, 0, plan.DurationDays)
	default:
		return Enrollment{}, ErrExpiryRequired
	}

	if !expiresAt.After(startsAt) {
		return Enrollment{}, ErrExpiryBeforeStart
	}

	var existing Enrollment
	err := db.Where("user_id = ? AND school_id = ?", input.UserID, input.SchoolID).
		First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return Enrollment{}, err
	}

	if err == nil {
		existing.PlanID = input.PlanID
		existing.Status = types.EnrollmentStatusActive
		existing.StartsAt = startsAt
		existing.ExpiresAt = expiresAt
		if err := db.Save(&existing).Error; err != nil {
			return Enrollment{}, err
		}
		return existing, nil
	}

	e := Enrollment{
		UserID:    input.UserID,
		SchoolID:  input.SchoolID,
		PlanID:    input.PlanID,
		Status:    types.EnrollmentStatusActive,
		StartsAt:  startsAt,
		ExpiresAt: expiresAt,
	}

	if err := db.Create(&e).Error; err != nil {
		return Enrollment{}, err
	}

	return e, nil
}

// Cancel marks an enrollment cancelled. Access stops immediately.
func Cancel(db *gorm.DB, id uuid.UUID) (Enrollment, error) {
	e, err := Get(db, id)
	if err != nil {
		return e, err
	}

	e.Status = types.EnrollmentStatusCancelled
	if err := db.Save(&e).Error; err != nil {
		return e, err
	}

	return e, nil
}

// HasActiveForSchool reports whether the user holds an unexpired active
// enrollment in the school. The entitlement gate for student content access.
func HasActiveForSchool(db *gorm.DB, userID, schoolID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Enrollment{}).
		Where("user_id = ? AND school_id = ? AND status = ? AND expires_at > ?",
			userID, schoolID, types.EnrollmentStatusActive, time.Now()).
		Count(&count).Error
	return count > 0, err
}

// ExpireOverdue flips lapsed active enrollments to expired. Run periodically
// by the scheduler; queries filter on expires_at as well, so the flag is
// bookkeeping rather than the gate itself.
func ExpireOverdue(db *gorm.DB) (int64, error) {
	result := db.Model(&Enrollment{}).
		Where("status = ? AND expires_at <= ?", types.EnrollmentStatusActive, time.Now()).
		Update("status", types.EnrollmentStatusExpired)
	return result.RowsAffected, result.Error
}
