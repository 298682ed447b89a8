package repository

import (
	"ai_sensei_backend/internal/model"
	"errors"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

// FindOrCreateByTelegramID returns the student account bound to a Telegram
// user, provisioning one on first contact. Display name is refreshed on
// every call so renamed Telegram accounts stay current.
func (r *UserRepository) FindOrCreateByTelegramID(telegramID int64, displayName string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("telegram_id = ?", telegramID).First(&user).Error
	if err == nil {
		if displayName != "" && user.DisplayName != displayName {
			user.DisplayName = displayName
			if err := r.DB.Model(&user).Update("display_name", displayName).Error; err != nil {
				return nil, err
			}
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = model.User{
		DisplayName: displayName,
		Role:        model.Student,
		TelegramID:  &telegramID,
	}
	if err := r.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
