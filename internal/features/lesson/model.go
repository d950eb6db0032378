package lesson

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/pkg/ordering"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

// Lesson is a single video lesson inside a module. Only published lessons
// participate in student listings and in the unlock chain.
type Lesson struct {
	types.BaseModel

	ModuleID        uuid.UUID `gorm:"type:uuid;not null;column:module_id;index" json:"moduleId"`
	Name            string    `gorm:"type:varchar(150);not null" json:"name"`
	Description     *string   `gorm:"type:varchar(600)" json:"description,omitempty"`
	Order           int       `gorm:"type:int;not null;default:0" json:"order"`
	Published       bool      `gorm:"type:boolean;not null;default:false;column:is_published" json:"isPublished"`
	DurationSeconds *float64  `gorm:"type:double precision;column:duration_seconds" json:"durationSeconds,omitempty"`
	VideoID         *string   `gorm:"type:varchar(100);column:video_id" json:"videoId,omitempty"`
	VideoReady      bool      `gorm:"type:boolean;not null;default:false;column:video_ready" json:"videoReady"`
}

// TableName overrides the default table name.
func (Lesson) TableName() string { return "lessons" }

// OrderKey returns the shared ordering key for this lesson.
func (l Lesson) OrderKey() ordering.Key {
	return ordering.Key{Order: l.Order, CreatedAt: l.CreatedAt}
}

// CreateInput carries data for creating a new lesson.
type CreateInput struct {
	ModuleID        uuid.UUID
	Name            string
	Description     *string
	Order           *int
	Published       *bool
	DurationSeconds *float64
	VideoID         *string
}

// UpdateInput captures mutable lesson fields.
type UpdateInput struct {
	Name             *string
	DescProvided     bool
	Description      *string
	OrderProvided    bool
	Order            *int
	Published        *bool
	DurationProvided bool
	DurationSeconds  *float64
	VideoIDProvided  bool
	VideoID          *string
}

// Get retrieves a lesson by ID.
func Get(db *gorm.DB, id uuid.UUID) (Lesson, error) {
	var l Lesson
	if err := db.First(&l, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return l, ErrLessonNotFound
		}
		return l, err
	}
	return l, nil
}

// GetPublished retrieves a lesson by ID, treating unpublished lessons as
// missing. Student-facing paths go through this.
func GetPublished(db *gorm.DB, id uuid.UUID) (Lesson, error) {
	l, err := Get(db, id)
	if err != nil {
		return l, err
	}
	if !l.Published {
		return l, ErrLessonNotFound
	}
	return l, nil
}

// GetByModule retrieves all lessons of a module in sequence order.
func GetByModule(db *gorm.DB, moduleID uuid.UUID) ([]Lesson, error) {
	var lessons []Lesson
	err := db.Where("module_id = ?", moduleID).
		Order(ordering.Clause).
		Find(&lessons).Error
	return lessons, err
}

// PublishedByModule retrieves published lessons of a module in sequence order.
func PublishedByModule(db *gorm.DB, moduleID uuid.UUID) ([]Lesson, error) {
	var lessons []Lesson
	err := db.Where("module_id = ? AND is_published = ?", moduleID, true).
		Order(ordering.Clause).
		Find(&lessons).Error
	return lessons, err
}

// PublishedByModules retrieves published lessons for a set of modules in one
// query, grouped by module, each group in sequence order.
func PublishedByModules(db *gorm.DB, moduleIDs []uuid.UUID) (map[uuid.UUID][]Lesson, error) {
	grouped := make(map[uuid.UUID][]Lesson, len(moduleIDs))
	if len(moduleIDs) == 0 {
		return grouped, nil
	}

	var lessons []Lesson
	err := db.Where("module_id IN ? AND is_published = ?", moduleIDs, true).
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}

	for _, l := range lessons {
		grouped[l.ModuleID] = append(grouped[l.ModuleID], l)
	}
	for id := range grouped {
		ordering.Sort(grouped[id], Lesson.OrderKey)
	}

	return grouped, nil
}

// Create inserts a new lesson.
func Create(db *gorm.DB, input CreateInput) (Lesson, error) {
	trimmedName := strings.TrimSpace(input.Name)
	if trimmedName == "" {
		return Lesson{}, ErrNameRequired
	}
	if nameLen := utf8.RuneCountInString(trimmedName); nameLen < 3 || nameLen > 150 {
		return Lesson{}, ErrNameLength
	}

	if input.Order != nil && *input.Order < 0 {
		return Lesson{}, ErrOrderInvalid
	}
	if err := validateDuration(input.DurationSeconds); err != nil {
		return Lesson{}, err
	}

	l := Lesson{
		ModuleID:        input.ModuleID,
		Name:            trimmedName,
		Description:     input.Description,
		DurationSeconds: input.DurationSeconds,
		VideoID:         input.VideoID,
	}
	if input.Order != nil {
		l.Order = *input.Order
	}
	if input.Published != nil {
		l.Published = *input.Published
	}

	if err := db.Create(&l).Error; err != nil {
		return Lesson{}, err
	}

	return l, nil
}

// Update modifies an existing lesson. Clearing the video id also resets the
// ready flag.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Lesson, error) {
	l, err := Get(db, id)
	if err != nil {
		return l, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return l, ErrNameRequired
		}
		if nameLen := utf8.RuneCountInString(trimmed); nameLen < 3 || nameLen > 150 {
			return l, ErrNameLength
		}
		l.Name = trimmed
	}

	if input.DescProvided {
		l.Description = input.Description
	}

	if input.OrderProvided {
		if input.Order != nil {
			if *input.Order < 0 {
				return l, ErrOrderInvalid
			}
			l.Order = *input.Order
		} else {
			l.Order = 0
		}
	}

	if input.Published != nil {
		l.Published = *input.Published
	}

	if input.DurationProvided {
		if err := validateDuration(input.DurationSeconds); err != nil {
			return l, err
		}
		l.DurationSeconds = input.DurationSeconds
	}

	if input.VideoIDProvided {
		if input.VideoID == nil || *input.VideoID != valueOrEmpty(l.VideoID) {
			l.VideoReady = false
		}
		l.VideoID = input.VideoID
	}

	if err := db.Save(&l).Error; err != nil {
		return l, err
	}

	return l, nil
}

// Delete removes a lesson and its progress rows.
func Delete(db *gorm.DB, id uuid.UUID) error {
	if err := db.Exec(`DELETE FROM lesson_progress WHERE lesson_id = ?`, id).Error; err != nil {
		return err
	}

	result := db.Delete(&Lesson{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

// MarkVideoReady flips the ready flag for every lesson carrying the given
// provider video id. Called from the encoding webhook.
func MarkVideoReady(db *gorm.DB, videoID string) (int64, error) {
	result := db.Model(&Lesson{}).
		Where("video_id = ?", videoID).
		Update("video_ready", true)
	return result.RowsAffected, result.Error
}

func validateDuration(d *float64) error {
	if d == nil {
		return nil
	}
	if *d < 0 || math.IsNaN(*d) || math.IsInf(*d, 0) {
		return ErrDurationInvalid
	}
	return nil
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
