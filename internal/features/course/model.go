package course

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/pkg/ordering"
	"github.com/mkamel7/academy-server-go/pkg/pagination"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

// Course is a unit of study inside a school. A course may belong to a track,
// in which case it participates in the track's sequential unlock chain; a
// course with a nil TrackID is free-standing and always accessible.
type Course struct {
	types.BaseModel

	SchoolID    uuid.UUID      `gorm:"type:uuid;not null;column:school_id;index;uniqueIndex:idx_school_course_name" json:"schoolId"`
	TrackID     *uuid.UUID     `gorm:"type:uuid;column:track_id;index" json:"trackId,omitempty"`
	Name        string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_school_course_name" json:"name"`
	Description *string        `gorm:"type:varchar(400)" json:"description,omitempty"`
	Image       *string        `gorm:"type:text" json:"image,omitempty"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
	Order       int            `gorm:"type:int;not null;default:0" json:"order"`
	Published   bool           `gorm:"type:boolean;not null;default:false;column:is_published;index" json:"isPublished"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// OrderKey returns the shared ordering key for this course.
func (c Course) OrderKey() ordering.Key {
	return ordering.Key{Order: c.Order, CreatedAt: c.CreatedAt}
}

// ListFilters defines course query filters.
type ListFilters struct {
	SchoolID      uuid.UUID
	TrackID       *uuid.UUID
	UntrackedOnly bool
	Keyword       string
	PublishedOnly bool
}

// CreateInput carries data for creating a new course.
type CreateInput struct {
	SchoolID    uuid.UUID
	TrackID     *uuid.UUID
	Name        string
	Description *string
	Image       *string
	Tags        []string
	Order       *int
	Published   *bool
}

// UpdateInput captures mutable course fields.
type UpdateInput struct {
	Name            *string
	DescProvided    bool
	Description     *string
	ImageProvided   bool
	Image           *string
	TrackIDProvided bool
	TrackID         *uuid.UUID
	TagsProvided    bool
	Tags            []string
	OrderProvided   bool
	Order           *int
	Published       *bool
}

// List retrieves paginated courses with filters.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Course, int64, error) {
	query := db.Model(&Course{}).Where("school_id = ?", filters.SchoolID)

	if filters.TrackID != nil {
		query = query.Where("track_id = ?", *filters.TrackID)
	} else if filters.UntrackedOnly {
		query = query.Where("track_id IS NULL")
	}

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
	}

	if filters.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []Course
	err := query.
		Order(ordering.Clause).
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&courses).Error

	return courses, total, err
}

// Get retrieves a course by ID.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var c Course
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c, ErrCourseNotFound
		}
		return c, err
	}
	return c, nil
}

// GetForSchool retrieves a course by ID that belongs to the provided school.
func GetForSchool(db *gorm.DB, id, schoolID uuid.UUID) (Course, error) {
	var c Course
	if err := db.First(&c, "id = ? AND school_id = ?", id, schoolID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c, ErrCourseNotFound
		}
		return c, err
	}
	return c, nil
}

// Create inserts a new course.
func Create(db *gorm.DB, input CreateInput) (Course, error) {
	trimmedName := strings.TrimSpace(input.Name)
	if trimmedName == "" {
		return Course{}, ErrNameRequired
	}
	if nameLen := utf8.RuneCountInString(trimmedName); nameLen < 3 || nameLen > 100 {
		return Course{}, ErrNameLength
	}

	if input.Order != nil && *input.Order < 0 {
		return Course{}, ErrOrderInvalid
	}

	published := false
	if input.Published != nil {
		published = *input.Published
	}

	order := 0
	if input.Order != nil {
		order = *input.Order
	}

	c := Course{
		SchoolID:    input.SchoolID,
		TrackID:     input.TrackID,
		Name:        trimmedName,
		Description: input.Description,
		Image:       input.Image,
		Tags:        pq.StringArray(input.Tags),
		Order:       order,
		Published:   published,
	}

	if err := db.Create(&c).Error; err != nil {
		return Course{}, err
	}

	return c, nil
}

// Update modifies an existing course.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Course, error) {
	c, err := Get(db, id)
	if err != nil {
		return c, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return c, ErrNameRequired
		}
		if nameLen := utf8.RuneCountInString(trimmed); nameLen < 3 || nameLen > 100 {
			return c, ErrNameLength
		}
		c.Name = trimmed
	}

	if input.DescProvided {
		c.Description = input.Description
	}

	if input.ImageProvided {
		c.Image = input.Image
	}

	if input.TrackIDProvided {
		c.TrackID = input.TrackID
	}

	if input.TagsProvided {
		c.Tags = pq.StringArray(input.Tags)
	}

	if input.OrderProvided {
		if input.Order != nil {
			if *input.Order < 0 {
				return c, ErrOrderInvalid
			}
			c.Order = *input.Order
		} else {
			c.Order = 0
		}
	}

	if input.Published != nil {
		c.Published = *input.Published
	}

	if err := db.Save(&c).Error; err != nil {
		return c, err
	}

	return c, nil
}

// Delete removes a course.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Course{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// PublishedByTrack retrieves the published courses of a track in progression
// order. This ordering defines the sequential unlock chain.
func PublishedByTrack(db *gorm.DB, trackID uuid.UUID) ([]Course, error) {
	var courses []Course
	err := db.Where("track_id = ? AND is_published = ?", trackID, true).
		Order(ordering.Clause).
		Find(&courses).Error
	return courses, err
}

// GetBySchool retrieves all courses for a school in progression order.
func GetBySchool(db *gorm.DB, schoolID uuid.UUID) ([]Course, error) {
	var courses []Course
	err := db.Where("school_id = ?", schoolID).
		Order(ordering.Clause).
		Find(&courses).Error
	return courses, err
}
