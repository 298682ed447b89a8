package repository

import (
	"ai_sensei_backend/internal/model"

	"gorm.io/gorm"
)

type ChatRepository struct {
	DB *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{DB: db}
}

// AppendMessage inserts one transcript row. The INSERT is the atomic
// append the delivery workflow relies on; there is deliberately no
// read-modify-write variant here.
func (r *ChatRepository) AppendMessage(msg *model.ChatMessage) error {
	return r.DB.Create(msg).Error
}

func (r *ChatRepository) AppendQuizResult(result *model.QuizResult) error {
	return r.DB.Create(result).Error
}

// Messages returns the transcript ordered by server-assigned timestamp,
// with id as the tiebreaker for same-millisecond appends.
func (r *ChatRepository) Messages(lessonID string, studentID uint) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := r.DB.
		Where("lesson_id = ? AND student_id = ?", lessonID, studentID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *ChatRepository) QuizResults(lessonID string, studentID uint) ([]model.QuizResult, error) {
	var results []model.QuizResult
	err := r.DB.
		Where("lesson_id = ? AND student_id = ?", lessonID, studentID).
		Order("submitted_at ASC, id ASC").
		Find(&results).Error
	return results, err
}

// StudentIDs lists the distinct students that have a chat session for a
// lesson, for the professor's interactions view.
func (r *ChatRepository) StudentIDs(lessonID string) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ChatMessage{}).
		Distinct("student_id").
		Where("lesson_id = ?", lessonID).
		Pluck("student_id", &ids).Error
	return ids, err
}
