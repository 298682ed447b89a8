package service

import (
	"ai_sensei_backend/internal/model"
	"ai_sensei_backend/pkg/logger"
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Student-facing notices sent back through the bot.
const (
	noticeStartUsage    = "Prosím, zadejte příkaz ve formátu /start <ID lekce>"
	noticeLessonMissing = "Lekce s tímto ID nebyla nalezena."
	noticeNoActiveChat  = "Nejprve prosím spusťte lekci příkazem /start <ID lekce>"
)

type telegramLinkStore interface {
	Upsert(link *model.StudentLink) error
	FindByTelegramID(telegramID int64) (*model.StudentLink, error)
}

type telegramUserStore interface {
	FindOrCreateByTelegramID(telegramID int64, displayName string) (*model.User, error)
}

// WebhookService turns inbound Telegram updates into lesson chat state.
// It never surfaces errors to Telegram: every problem is answered with a
// notice in the chat, and the webhook acknowledges regardless so Telegram
// does not redeliver.
type WebhookService struct {
	lessons lessonStore
	links   telegramLinkStore
	users   telegramUserStore
	chats   chatStore
	bridge  MessagingBridge
}

func NewWebhookService(lessons lessonStore, links telegramLinkStore, users telegramUserStore, chats chatStore, bridge MessagingBridge) *WebhookService {
	return &WebhookService{
		lessons: lessons,
		links:   links,
		users:   users,
		chats:   chats,
		bridge:  bridge,
	}
}

// HandleUpdate processes one webhook update. Updates without a text
// message (edits, stickers, channel posts) are ignored.
func (s *WebhookService) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	var err error
	if fields := strings.Fields(msg.Text); len(fields) > 0 && fields[0] == "/start" {
		err = s.handleStart(msg)
	} else {
		err = s.handleChat(ctx, msg)
	}
	if err != nil {
		logger.Log.Error("telegram update failed",
			zap.Int64("telegram_id", msg.From.ID),
			zap.Error(err))
	}
}

func displayName(from *tgbotapi.User) string {
	return strings.TrimSpace(from.FirstName + " " + from.LastName)
}

// handleStart binds the Telegram user to a lesson. A repeated /start
// simply switches the active lesson.
func (s *WebhookService) handleStart(msg *tgbotapi.Message) error {
	parts := strings.Fields(msg.Text)
	if len(parts) < 2 {
		return s.bridge.SendToChat(msg.Chat.ID, noticeStartUsage)
	}
	lessonID := parts[1]

	lesson, err := s.lessons.FindByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.bridge.SendToChat(msg.Chat.ID, noticeLessonMissing)
		}
		return err
	}

	user, err := s.users.FindOrCreateByTelegramID(msg.From.ID, displayName(msg.From))
	if err != nil {
		return err
	}

	link := &model.StudentLink{
		TelegramID:     msg.From.ID,
		ChatID:         msg.Chat.ID,
		UserID:         user.ID,
		ActiveLessonID: lessonID,
		FirstName:      msg.From.FirstName,
		LastName:       msg.From.LastName,
	}
	if err := s.links.Upsert(link); err != nil {
		return err
	}

	return s.bridge.SendToChat(msg.Chat.ID, "Vítejte v lekci \""+lesson.Title+"\"! Můžete začít chatovat.")
}

// handleChat appends a plain message to the active lesson's chat session
// as a student turn. This path is delivery to storage only: no tutor or
// professor reply is generated from here, answers reach the student when
// the professor relays one.
func (s *WebhookService) handleChat(ctx context.Context, msg *tgbotapi.Message) error {
	link, err := s.links.FindByTelegramID(msg.From.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.bridge.SendToChat(msg.Chat.ID, noticeNoActiveChat)
		}
		return err
	}
	if link.ActiveLessonID == "" {
		return s.bridge.SendToChat(msg.Chat.ID, noticeNoActiveChat)
	}

	user, err := s.users.FindOrCreateByTelegramID(msg.From.ID, displayName(msg.From))
	if err != nil {
		return err
	}

	return s.chats.AppendMessage(&model.ChatMessage{
		LessonID:  link.ActiveLessonID,
		StudentID: user.ID,
		Sender:    model.SenderStudent,
		Text:      msg.Text,
	})
}
