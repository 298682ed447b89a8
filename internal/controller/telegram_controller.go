package controller

import (
	"ai_sensei_backend/internal/service"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramController receives webhook updates from the Telegram Bot API.
// The endpoint always acknowledges with 200 once a request parses as an
// update, malformed bodies included, so Telegram never retries.
type TelegramController struct {
	WebhookService *service.WebhookService
}

func NewTelegramController(webhookService *service.WebhookService) *TelegramController {
	return &TelegramController{WebhookService: webhookService}
}

func (c *TelegramController) Webhook(ctx *gin.Context) {
	var update tgbotapi.Update
	if err := json.NewDecoder(ctx.Request.Body).Decode(&update); err != nil {
		ctx.String(http.StatusOK, "OK")
		return
	}

	c.WebhookService.HandleUpdate(ctx.Request.Context(), update)
	ctx.String(http.StatusOK, "OK")
}
