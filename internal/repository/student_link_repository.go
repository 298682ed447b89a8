package repository

import (
	"ai_sensei_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentLinkRepository struct {
	DB *gorm.DB
}

func NewStudentLinkRepository(db *gorm.DB) *StudentLinkRepository {
	return &StudentLinkRepository{DB: db}
}

// Upsert creates or replaces the link for a Telegram user. A repeated
// /start simply rebinds the active lesson.
func (r *StudentLinkRepository) Upsert(link *model.StudentLink) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"chat_id", "user_id", "active_lesson_id", "first_name", "last_name", "updated_at",
		}),
	}).Create(link).Error
}

func (r *StudentLinkRepository) FindByTelegramID(telegramID int64) (*model.StudentLink, error) {
	var link model.StudentLink
	err := r.DB.First(&link, "telegram_id = ?", telegramID).Error
	return &link, err
}

func (r *StudentLinkRepository) FindByUserID(userID uint) (*model.StudentLink, error) {
	var link model.StudentLink
	err := r.DB.First(&link, "user_id = ?", userID).Error
	return &link, err
}
