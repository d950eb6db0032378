package school

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/pkg/pagination"
	"github.com/mkamel7/academy-server-go/pkg/types"
	"github.com/mkamel7/academy-server-go/pkg/validation"
)

// School is the top-level grouping of the content hierarchy.
type School struct {
	types.BaseModel

	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string  `gorm:"type:varchar(20);not null;uniqueIndex" json:"slug"`
	Description *string `gorm:"type:varchar(400)" json:"description,omitempty"`
	Active      bool    `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`
}

// TableName overrides the default table name.
func (School) TableName() string { return "schools" }

// ListFilters defines school query filters.
type ListFilters struct {
	Keyword    string
	ActiveOnly bool
}

// CreateInput carries data for creating a new school.
type CreateInput struct {
	Name        string
	Slug        string
	Description *string
	Active      *bool
}

// UpdateInput captures mutable school fields.
type UpdateInput struct {
	Name         *string
	DescProvided bool
	Description  *string
	Active       *bool
}

// List retrieves paginated schools with filters.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]School, int64, error) {
	query := db.Model(&School{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", keyword, keyword)
	}

	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var schools []School
	err := query.
		Order("name ASC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&schools).Error

	return schools, total, err
}

// Get retrieves a school by ID.
func Get(db *gorm.DB, id uuid.UUID) (School, error) {
	var s School
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return s, ErrSchoolNotFound
		}
		return s, err
	}
	return s, nil
}

// GetBySlug retrieves a school by its public slug.
func GetBySlug(db *gorm.DB, slug string) (School, error) {
	var s School
	if err := db.First(&s, "slug = ?", strings.ToLower(strings.TrimSpace(slug))).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return s, ErrSchoolNotFound
		}
		return s, err
	}
	return s, nil
}

// Create inserts a new school.
func Create(db *gorm.DB, input CreateInput) (School, error) {
	trimmedName := strings.TrimSpace(input.Name)
	if trimmedName == "" {
		return School{}, ErrNameRequired
	}
	if nameLen := utf8.RuneCountInString(trimmedName); nameLen < 3 || nameLen > 100 {
		return School{}, ErrNameLength
	}

	slug, err := validation.NormalizeIdentifier(input.Slug)
	if err != nil {
		return School{}, ErrSlugInvalid
	}

	var existing School
	if err := db.First(&existing, "slug = ?", slug).Error; err == nil {
		return School{}, ErrSlugTaken
	} else if err != gorm.ErrRecordNotFound {
		return School{}, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	s := School{
		Name:        trimmedName,
		Slug:        slug,
		Description: input.Description,
		Active:      active,
	}

	if err := db.Create(&s).Error; err != nil {
		return School{}, err
	}

	return s, nil
}

// Update modifies an existing school. The slug is immutable once created.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (School, error) {
	s, err := Get(db, id)
	if err != nil {
		return s, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return s, ErrNameRequired
		}
		if nameLen := utf8.RuneCountInString(trimmed); nameLen < 3 || nameLen > 100 {
			return s, ErrNameLength
		}
		s.Name = trimmed
	}

	if input.DescProvided {
		s.Description = input.Description
	}

	if input.Active != nil {
		s.Active = *input.Active
	}

	if err := db.Save(&s).Error; err != nil {
		return s, err
	}

	return s, nil
}

// Delete removes a school.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&School{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSchoolNotFound
	}
	return nil
}
