package controller

import (
	"ai_sensei_backend/internal/service"
	"ai_sensei_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ChatController is the student side of lesson delivery.
type ChatController struct {
	ChatService *service.ChatService
}

func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

func (c *ChatController) SendMessage(ctx *gin.Context) {
	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	reply, err := c.ChatService.HandleStudentMessage(ctx.Request.Context(), ctx.Param("id"), claims.UserID, req.Text)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, reply)
}

func (c *ChatController) Session(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	session, err := c.ChatService.Session(ctx.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

type SubmitQuizRequest struct {
	Answers map[int]int `json:"answers" binding:"required"`
}

func (c *ChatController) SubmitQuiz(ctx *gin.Context) {
	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.ChatService.SubmitQuiz(ctx.Param("id"), claims.UserID, req.Answers)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// Escalate forwards the conversation to the professor's alert channel.
func (c *ChatController) Escalate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.ChatService.Escalate(ctx.Request.Context(), ctx.Param("id"), claims.UserID); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"escalated": true})
}
