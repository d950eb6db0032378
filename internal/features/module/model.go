package module

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/pkg/ordering"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

// Module is an ordered section of lessons within a course. The module order
// (explicit order, creation time as tiebreak) combined with the lesson order
// defines the course-wide lesson sequence used for sequential unlocking.
type Module struct {
	types.BaseModel

	CourseID    uuid.UUID `gorm:"type:uuid;not null;column:course_id;index" json:"courseId"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description *string   `gorm:"type:varchar(400)" json:"description,omitempty"`
	Order       int       `gorm:"type:int;not null;default:0" json:"order"`
}

// TableName overrides the default table name.
func (Module) TableName() string { return "modules" }

// OrderKey returns the shared ordering key for this module.
func (m Module) OrderKey() ordering.Key {
	return ordering.Key{Order: m.Order, CreatedAt: m.CreatedAt}
}

// CreateInput carries data for creating a new module.
type CreateInput struct {
	CourseID    uuid.UUID
	Name        string
	Description *string
	Order       *int
}

// UpdateInput captures mutable module fields.
type UpdateInput struct {
	Name          *string
	DescProvided  bool
	Description   *string
	OrderProvided bool
	Order         *int
}

// Get retrieves a module by ID.
func Get(db *gorm.DB, id uuid.UUID) (Module, error) {
	var m Module
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return m, ErrModuleNotFound
		}
		return m, err
	}
	return m, nil
}

// GetByCourse retrieves all modules of a course in sequence order.
func GetByCourse(db *gorm.DB, courseID uuid.UUID) ([]Module, error) {
	var modules []Module
	err := db.Where("course_id = ?", courseID).
		Order(ordering.Clause).
		Find(&modules).Error
	return modules, err
}

// Create inserts a new module.
func Create(db *gorm.DB, input CreateInput) (Module, error) {
	trimmedName := strings.TrimSpace(input.Name)
	if trimmedName == "" {
		return Module{}, ErrNameRequired
	}
	if nameLen := utf8.RuneCountInString(trimmedName); nameLen < 3 || nameLen > 100 {
		return Module{}, ErrNameLength
	}

	if input.Order != nil && *input.Order < 0 {
		return Module{}, ErrOrderInvalid
	}

	order := 0
	if input.Order != nil {
		order = *input.Order
	}

	m := Module{
		CourseID:    input.CourseID,
		Name:        trimmedName,
		Description: input.Description,
		Order:       order,
	}

	if err := db.Create(&m).Error; err != nil {
		return Module{}, err
	}

	return m, nil
}

// Update modifies an existing module.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Module, error) {
	m, err := Get(db, id)
	if err != nil {
		return m, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return m, ErrNameRequired
		}
		if nameLen := utf8.RuneCountInString(trimmed); nameLen < 3 || nameLen > 100 {
			return m, ErrNameLength
		}
		m.Name = trimmed
	}

	if input.DescProvided {
		m.Description = input.Description
	}

	if input.OrderProvided {
		if input.Order != nil {
			if *input.Order < 0 {
				return m, ErrOrderInvalid
			}
			m.Order = *input.Order
		} else {
			m.Order = 0
		}
	}

	if err := db.Save(&m).Error; err != nil {
		return m, err
	}

	return m, nil
}

// Delete removes a module and its lessons.
func Delete(db *gorm.DB, id uuid.UUID) error {
	if err := db.Exec(`DELETE FROM lessons WHERE module_id = ?`, id).Error; err != nil {
		return err
	}

	result := db.Delete(&Module{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrModuleNotFound
	}
	return nil
}
