package model

import "time"

// StudentLink binds a Telegram user to an application student account and
// the lesson they are currently chatting in. A Telegram user has at most
// one active lesson; a new /start overwrites the previous binding.
type StudentLink struct {
	TelegramID     int64     `gorm:"primaryKey;autoIncrement:false" json:"telegramId"`
	ChatID         int64     `gorm:"not null" json:"chatId"`
	UserID         uint      `gorm:"index;not null" json:"userId"`
	ActiveLessonID string    `gorm:"type:varchar(36);index" json:"activeLessonId"`
	FirstName      string    `gorm:"size:100" json:"firstName"`
	LastName       string    `gorm:"size:100" json:"lastName"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (StudentLink) TableName() string {
	return "student_links"
}
