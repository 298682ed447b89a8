package controller

import (
	"ai_sensei_backend/internal/service"
	"ai_sensei_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// StudentController is the professor's window into student sessions:
// listing interactions, reading transcripts, replying and analysis.
type StudentController struct {
	ChatService *service.ChatService
}

func NewStudentController(chatService *service.ChatService) *StudentController {
	return &StudentController{ChatService: chatService}
}

func studentIDParam(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("studentId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid student id")
		return 0, false
	}
	return uint(id), true
}

func (c *StudentController) ListInteractions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	interactions, err := c.ChatService.ListInteractions(ctx.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, interactions)
}

func (c *StudentController) Session(ctx *gin.Context) {
	studentID, ok := studentIDParam(ctx)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	session, err := c.ChatService.SessionForProfessor(ctx.Param("id"), claims.UserID, studentID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

type ProfessorReplyRequest struct {
	Text string `json:"text" binding:"required"`
}

func (c *StudentController) Reply(ctx *gin.Context) {
	var req ProfessorReplyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	studentID, ok := studentIDParam(ctx)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.ChatService.ProfessorReply(ctx.Request.Context(), ctx.Param("id"), claims.UserID, studentID, req.Text); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sent": true})
}

func (c *StudentController) Analyze(ctx *gin.Context) {
	studentID, ok := studentIDParam(ctx)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	analysis, err := c.ChatService.AnalyzeStudent(ctx.Request.Context(), ctx.Param("id"), claims.UserID, studentID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, analysis)
}
