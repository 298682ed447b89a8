package model

import "time"

type Sender string

const (
	SenderStudent   Sender = "student"
	SenderAI        Sender = "ai"
	SenderProfessor Sender = "professor"
)

// ChatMessage is one entry of a per-student, per-lesson transcript.
// Messages are append-only rows; an INSERT is the store's atomic append,
// so concurrent senders (web client, Telegram relay, professor console)
// can never clobber each other. Consumers must sort by (timestamp, id)
// on read rather than trust insertion order.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LessonID  string    `gorm:"type:varchar(36);index:idx_chat_session;not null" json:"lessonId"`
	StudentID uint      `gorm:"index:idx_chat_session;not null" json:"studentId"`
	Sender    Sender    `gorm:"type:enum('student','ai','professor');not null" json:"sender"`
	Text      string    `gorm:"type:text" json:"text"`
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// QuizResult is a student's scored quiz attempt. QuizData snapshots the
// prepared quiz at attempt time, so later regeneration of the lesson quiz
// does not rewrite history. Score is computed once at submission and
// stored immutably. Results live in a parallel append-only sequence to
// messages, never interleaved with them.
type QuizResult struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	LessonID    string      `gorm:"type:varchar(36);index:idx_quiz_session;not null" json:"lessonId"`
	StudentID   uint        `gorm:"index:idx_quiz_session;not null" json:"studentId"`
	QuizData    []Question  `gorm:"serializer:json" json:"quizData"`
	Answers     map[int]int `gorm:"serializer:json" json:"answers"`
	Score       int         `gorm:"not null" json:"score"`
	SubmittedAt time.Time   `gorm:"autoCreateTime" json:"submittedAt"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
