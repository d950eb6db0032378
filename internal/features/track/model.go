package track

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/pkg/ordering"
	"github.com/mkamel7/academy-server-go/pkg/pagination"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

// Track is an ordered course progression inside a school. Courses inside a
// track unlock sequentially; courses without a track are free-standing.
type Track struct {
	types.BaseModel

	SchoolID    uuid.UUID `gorm:"type:uuid;not null;column:school_id;index;uniqueIndex:idx_school_track_name" json:"schoolId"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_school_track_name" json:"name"`
	Description *string   `gorm:"type:varchar(400)" json:"description,omitempty"`
	Order       int       `gorm:"type:int;not null;default:0" json:"order"`
	Active      bool      `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`
}

// TableName overrides the default table name.
func (Track) TableName() string { return "tracks" }

// OrderKey returns the shared ordering key for this track.
func (t Track) OrderKey() ordering.Key {
	return ordering.Key{Order: t.Order, CreatedAt: t.CreatedAt}
}

// ListFilters defines track query filters.
type ListFilters struct {
	SchoolID   uuid.UUID
	Keyword    string
	ActiveOnly bool
}

// CreateInput carries data for creating a new track.
type CreateInput struct {
	SchoolID    uuid.UUID
	Name        string
	Description *string
	Order       *int
	Active      *bool
}

// UpdateInput captures mutable track fields.
type UpdateInput struct {
	Name          *string
	DescProvided  bool
	Description   *string
	OrderProvided bool
	Order         *int
	Active        *bool
}

// List retrieves paginated tracks for a school in progression order.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Track, int64, error) {
	query := db.Model(&Track{}).Where("school_id = ?", filters.SchoolID)

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(name) LIKE ?", keyword)
	}

	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tracks []Track
	err := query.
		Order(ordering.Clause).
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&tracks).Error

	return tracks, total, err
}

// Get retrieves a track by ID.
func Get(db *gorm.DB, id uuid.UUID) (Track, error) {
	var t Track
	if err := db.First(&t, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return t, ErrTrackNotFound
		}
		return t, err
	}
	return t, nil
}

// Create inserts a new track.
func Create(db *gorm.DB, input CreateInput) (Track, error) {
	trimmedName := strings.TrimSpace(input.Name)
	if trimmedName == "" {
		return Track{}, ErrNameRequired
	}

	if input.Order != nil && *input.Order < 0 {
		return Track{}, ErrOrderInvalid
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	order := 0
	if input.Order != nil {
		order = *input.Order
	}

	t := Track{
		SchoolID:    input.SchoolID,
		Name:        trimmedName,
		Description: input.Description,
		Order:       order,
		Active:      active,
	}

	if err := db.Create(&t).Error; err != nil {
		return Track{}, err
	}

	return t, nil
}

// Update modifies an existing track.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Track, error) {
	t, err := Get(db, id)
	if err != nil {
		return t, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return t, ErrNameRequired
		}
		t.Name = trimmed
	}

	if input.DescProvided {
		t.Description = input.Description
	}

	if input.OrderProvided {
		if input.Order != nil {
			if *input.Order < 0 {
				return t, ErrOrderInvalid
			}
			t.Order = *input.Order
		} else {
			t.Order = 0
		}
	}

	if input.Active != nil {
		t.Active = *input.Active
	}

	if err := db.Save(&t).Error; err != nil {
		return t, err
	}

	return t, nil
}

// Delete removes a track. Courses referencing the track become untracked.
func Delete(db *gorm.DB, id uuid.UUID) error {
	if err := db.Exec(`UPDATE courses SET track_id = NULL WHERE track_id = ?`, id).Error; err != nil {
		return err
	}

	result := db.Delete(&Track{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTrackNotFound
	}
	return nil
}

// GetBySchool retrieves all tracks for a school in progression order.
func GetBySchool(db *gorm.DB, schoolID uuid.UUID) ([]Track, error) {
	var tracks []Track
	err := db.Where("school_id = ?", schoolID).
		Order(ordering.Clause).
		Find(&tracks).Error
	return tracks, err
}
