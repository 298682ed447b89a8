package service

import (
	"ai_sensei_backend/internal/model"
	"ai_sensei_backend/internal/util"
	"ai_sensei_backend/pkg/logger"
	"ai_sensei_backend/pkg/monitoring"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Fallback the student sees when generation fails. The failed turn still
// lands in the transcript so the professor can see it happened.
const chatFallbackText = "Omlouvám se, došlo k chybě."

type chatStore interface {
	AppendMessage(msg *model.ChatMessage) error
	AppendQuizResult(result *model.QuizResult) error
	Messages(lessonID string, studentID uint) ([]model.ChatMessage, error)
	QuizResults(lessonID string, studentID uint) ([]model.QuizResult, error)
	StudentIDs(lessonID string) ([]uint, error)
}

type linkStore interface {
	FindByUserID(userID uint) (*model.StudentLink, error)
}

type userStore interface {
	FindByID(id uint) (*model.User, error)
}

// ChatSession is one student's full history within a lesson: the message
// transcript and the parallel sequence of scored quiz attempts.
type ChatSession struct {
	LessonID    string              `json:"lessonId"`
	StudentID   uint                `json:"studentId"`
	Messages    []model.ChatMessage `json:"messages"`
	QuizResults []model.QuizResult  `json:"quizResults"`
}

// StudentInteraction is one row of the professor's interactions list.
type StudentInteraction struct {
	StudentID   uint   `json:"studentId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// StudentAnalysis is the structured pedagogical review of one session.
type StudentAnalysis struct {
	StrongPoints                []string `json:"strongPoints"`
	AreasForImprovement         []string `json:"areasForImprovement"`
	RecommendationsForStudent   []string `json:"recommendationsForStudent"`
	RecommendationsForProfessor []string `json:"recommendationsForProfessor"`
}

// ChatService runs the conversational delivery workflow: tutoring turns,
// quiz attempts, escalation to a human and the professor's side of the
// conversation.
type ChatService struct {
	lessons   lessonStore
	chats     chatStore
	links     linkStore
	users     userStore
	generator Generator
	bridge    MessagingBridge
}

func NewChatService(lessons lessonStore, chats chatStore, links linkStore, users userStore, generator Generator, bridge MessagingBridge) *ChatService {
	return &ChatService{
		lessons:   lessons,
		chats:     chats,
		links:     links,
		users:     users,
		generator: generator,
		bridge:    bridge,
	}
}

func (s *ChatService) findLesson(lessonID string) (*model.Lesson, error) {
	lesson, err := s.lessons.FindByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson %s: %w", lessonID, util.ErrNotFound)
		}
		return nil, err
	}
	return lesson, nil
}

func (s *ChatService) requireOwned(lessonID string, ownerID uint) (*model.Lesson, error) {
	lesson, err := s.findLesson(lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.OwnerID != ownerID {
		return nil, util.ErrPermissionDenied
	}
	return lesson, nil
}

// HandleStudentMessage appends the student's turn, asks the model for a
// grounded answer and appends that too. Both appends are independent row
// inserts, so a concurrent professor reply can never be lost. Generation
// failure degrades to an apologetic canned answer instead of an error.
func (s *ChatService) HandleStudentMessage(ctx context.Context, lessonID string, studentID uint, text string) (*model.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty message", util.ErrInvalidArgument)
	}

	lesson, err := s.findLesson(lessonID)
	if err != nil {
		return nil, err
	}

	studentMsg := &model.ChatMessage{
		LessonID:  lessonID,
		StudentID: studentID,
		Sender:    model.SenderStudent,
		Text:      text,
	}
	if err := s.chats.AppendMessage(studentMsg); err != nil {
		return nil, fmt.Errorf("append student message: %w", err)
	}

	system := "Jste expert a asistent. Odpovídejte pouze na základě poskytnutého kontextu."
	if lesson.ChatbotPersona != "" {
		system += " " + lesson.ChatbotPersona
	}
	system += " Kontext:\n\n" + lesson.StudentText

	answer, err := s.generator.Generate(ctx, text, nil, system)
	if err != nil {
		logger.Log.Warn("chat generation failed",
			zap.String("lesson_id", lessonID),
			zap.Uint("student_id", studentID),
			zap.Error(err))
		monitoring.GenerationCounter.WithLabelValues("chat", "error").Inc()
		answer = chatFallbackText
	} else {
		monitoring.GenerationCounter.WithLabelValues("chat", "ok").Inc()
	}

	aiMsg := &model.ChatMessage{
		LessonID:  lessonID,
		StudentID: studentID,
		Sender:    model.SenderAI,
		Text:      answer,
	}
	if err := s.chats.AppendMessage(aiMsg); err != nil {
		return nil, fmt.Errorf("append ai message: %w", err)
	}
	return aiMsg, nil
}

// ProfessorReply stores the professor's message and relays it to the
// student's Telegram chat. The message stays in the transcript even when
// the relay fails; web-only students without a link get ErrNotFound.
func (s *ChatService) ProfessorReply(ctx context.Context, lessonID string, professorID, studentID uint, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty message", util.ErrInvalidArgument)
	}
	if _, err := s.requireOwned(lessonID, professorID); err != nil {
		return err
	}

	msg := &model.ChatMessage{
		LessonID:  lessonID,
		StudentID: studentID,
		Sender:    model.SenderProfessor,
		Text:      text,
	}
	if err := s.chats.AppendMessage(msg); err != nil {
		return fmt.Errorf("append professor message: %w", err)
	}

	link, err := s.links.FindByUserID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("student %d has no telegram chat: %w", studentID, util.ErrNotFound)
		}
		return err
	}
	return s.bridge.SendToChat(link.ChatID, text)
}

// SubmitQuiz scores one attempt against the lesson's current prepared quiz
// and records it with a snapshot of the questions, so regenerating the
// quiz later does not rewrite past scores. Unanswered questions count as
// wrong.
func (s *ChatService) SubmitQuiz(lessonID string, studentID uint, answers map[int]int) (*model.QuizResult, error) {
	lesson, err := s.findLesson(lessonID)
	if err != nil {
		return nil, err
	}
	if len(lesson.PreparedQuiz) == 0 {
		return nil, fmt.Errorf("%w: lesson has no quiz", util.ErrInvalidArgument)
	}

	score := 0
	for i, q := range lesson.PreparedQuiz {
		if answer, ok := answers[i]; ok && answer == q.CorrectAnswerIndex {
			score++
		}
	}

	result := &model.QuizResult{
		LessonID:  lessonID,
		StudentID: studentID,
		QuizData:  lesson.PreparedQuiz,
		Answers:   answers,
		Score:     score,
	}
	if err := s.chats.AppendQuizResult(result); err != nil {
		return nil, fmt.Errorf("append quiz result: %w", err)
	}
	return result, nil
}

// Session returns one student's transcript and quiz attempts, both in
// chronological order.
func (s *ChatService) Session(lessonID string, studentID uint) (*ChatSession, error) {
	if _, err := s.findLesson(lessonID); err != nil {
		return nil, err
	}

	messages, err := s.chats.Messages(lessonID, studentID)
	if err != nil {
		return nil, err
	}
	results, err := s.chats.QuizResults(lessonID, studentID)
	if err != nil {
		return nil, err
	}
	return &ChatSession{
		LessonID:    lessonID,
		StudentID:   studentID,
		Messages:    messages,
		QuizResults: results,
	}, nil
}

// SessionForProfessor is Session plus the owner check.
func (s *ChatService) SessionForProfessor(lessonID string, ownerID, studentID uint) (*ChatSession, error) {
	if _, err := s.requireOwned(lessonID, ownerID); err != nil {
		return nil, err
	}
	return s.Session(lessonID, studentID)
}

// ListInteractions lists the students that have talked within a lesson.
func (s *ChatService) ListInteractions(lessonID string, ownerID uint) ([]StudentInteraction, error) {
	if _, err := s.requireOwned(lessonID, ownerID); err != nil {
		return nil, err
	}

	ids, err := s.chats.StudentIDs(lessonID)
	if err != nil {
		return nil, err
	}

	interactions := make([]StudentInteraction, 0, len(ids))
	for _, id := range ids {
		row := StudentInteraction{StudentID: id}
		if user, err := s.users.FindByID(id); err == nil {
			row.DisplayName = user.DisplayName
			row.Email = user.EmailAddress()
		}
		interactions = append(interactions, row)
	}
	return interactions, nil
}

// Escalate sends the full conversation digest to the professor's alert
// channel. The transcript itself is untouched.
func (s *ChatService) Escalate(ctx context.Context, lessonID string, studentID uint) error {
	lesson, err := s.findLesson(lessonID)
	if err != nil {
		return err
	}

	messages, err := s.chats.Messages(lessonID, studentID)
	if err != nil {
		return err
	}

	studentName := fmt.Sprintf("student %d", studentID)
	if user, err := s.users.FindByID(studentID); err == nil {
		if email := user.EmailAddress(); email != "" {
			studentName = email
		} else if user.DisplayName != "" {
			studentName = user.DisplayName
		}
	}

	digest := fmt.Sprintf("*Nová žádost o pomoc od studenta!*\n\n*Lekce:* %s\n*Student:* %s\n\n*Průběh konverzace:*\n```\n%s\n```",
		lesson.Title, studentName, transcriptDigest(messages))

	return s.bridge.SendAlert(digest)
}

// AnalyzeStudent produces the structured review of a session for its
// professor: strong points, gaps, and recommendations for both sides.
func (s *ChatService) AnalyzeStudent(ctx context.Context, lessonID string, ownerID, studentID uint) (*StudentAnalysis, error) {
	lesson, err := s.requireOwned(lessonID, ownerID)
	if err != nil {
		return nil, err
	}

	messages, err := s.chats.Messages(lessonID, studentID)
	if err != nil {
		return nil, err
	}
	results, err := s.chats.QuizResults(lessonID, studentID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 && len(results) == 0 {
		return nil, fmt.Errorf("%w: no activity to analyze", util.ErrInvalidArgument)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Jsi zkušený pedagog. Proveď analýzu interakce studenta v lekci \"%s\".\n\n", lesson.Title)
	sb.WriteString("Průběh konverzace:\n")
	sb.WriteString(transcriptDigest(messages))
	if len(results) > 0 {
		sb.WriteString("\n\nVýsledky kvízů:\n")
		for _, r := range results {
			fmt.Fprintf(&sb, "- skóre %d z %d otázek\n", r.Score, len(r.QuizData))
		}
	}
	sb.WriteString("\nVytvoř strukturovanou analýzu silných stránek, mezer a doporučení pro studenta i profesora.")

	result, err := s.generator.Generate(ctx, sb.String(), analysisSchema(), "")
	if err != nil {
		monitoring.GenerationCounter.WithLabelValues("student_analysis", "error").Inc()
		return nil, err
	}
	monitoring.GenerationCounter.WithLabelValues("student_analysis", "ok").Inc()

	var analysis StudentAnalysis
	if err := json.Unmarshal([]byte(result), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationMalformed, err)
	}
	return &analysis, nil
}

func transcriptDigest(messages []model.ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		label := "Student"
		switch msg.Sender {
		case model.SenderAI:
			label = "AI"
		case model.SenderProfessor:
			label = "Profesor"
		}
		lines = append(lines, label+": "+msg.Text)
	}
	return strings.Join(lines, "\n")
}
