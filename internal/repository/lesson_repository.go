package repository

import (
	"ai_sensei_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) FindByID(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, "id = ?", id).Error
	return &lesson, err
}

func (r *LessonRepository) FindByOwner(ownerID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) FindAll() ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Order("created_at DESC").Find(&lessons).Error
	return lessons, err
}

// UpdateField sets a single column. Authoring transitions commit one field
// per successful step, so a failed step never leaves a partial overwrite.
func (r *LessonRepository) UpdateField(id string, field string, value interface{}) error {
	return r.DB.Model(&model.Lesson{}).Where("id = ?", id).Update(field, value).Error
}

func (r *LessonRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.DB.Model(&model.Lesson{}).Where("id = ?", id).Updates(fields).Error
}

func (r *LessonRepository) Delete(id string) error {
	return r.DB.Delete(&model.Lesson{}, "id = ?", id).Error
}
