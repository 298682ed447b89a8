package service

import (
	"ai_sensei_backend/internal/config"
	"ai_sensei_backend/pkg/monitoring"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessagingBridge is outbound notification delivery: per-student relay to
// a Telegram chat, and operational alerts to one fixed channel (used for
// "ask a human" escalations).
type MessagingBridge interface {
	SendToChat(chatID int64, text string) error
	SendAlert(text string) error
}

// TelegramService implements MessagingBridge over the Telegram Bot API.
type TelegramService struct {
	api         *tgbotapi.BotAPI
	webhookURL  string
	alertChatID int64
}

func NewTelegramService(cfg config.TelegramConfig) (*TelegramService, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramService{
		api:         api,
		webhookURL:  cfg.WebhookURL,
		alertChatID: cfg.AlertChatID,
	}, nil
}

// SetWebhook registers the inbound webhook URL with Telegram. Called once
// at startup when a URL is configured.
func (s *TelegramService) SetWebhook() error {
	webhook, err := tgbotapi.NewWebhook(s.webhookURL)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := s.api.Request(webhook); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

func (s *TelegramService) SendToChat(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := s.api.Send(msg)
	if err != nil {
		monitoring.TelegramCounter.WithLabelValues("relay", "error").Inc()
		return fmt.Errorf("send telegram message: %w", err)
	}
	monitoring.TelegramCounter.WithLabelValues("relay", "ok").Inc()
	return nil
}

func (s *TelegramService) SendAlert(text string) error {
	msg := tgbotapi.NewMessage(s.alertChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := s.api.Send(msg)
	if err != nil {
		monitoring.TelegramCounter.WithLabelValues("alert", "error").Inc()
		return fmt.Errorf("send telegram alert: %w", err)
	}
	monitoring.TelegramCounter.WithLabelValues("alert", "ok").Inc()
	return nil
}
