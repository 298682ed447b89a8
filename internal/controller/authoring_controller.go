package controller

import (
	"ai_sensei_backend/internal/service"
	"ai_sensei_backend/internal/util"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthoringController exposes the generation steps of the lesson
// workflow. Every endpoint is professor-only and one-shot.
type AuthoringController struct {
	AuthoringService *service.AuthoringService
}

func NewAuthoringController(authoringService *service.AuthoringService) *AuthoringController {
	return &AuthoringController{AuthoringService: authoringService}
}

func (c *AuthoringController) GenerateStudyText(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	text, err := c.AuthoringService.GenerateStudyText(ctx.Request.Context(), ctx.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"studentText": text})
}

type RefineRequest struct {
	Instruction string `json:"instruction" binding:"required"`
}

func (c *AuthoringController) RefineStudyText(ctx *gin.Context) {
	var req RefineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	text, err := c.AuthoringService.RefineStudyText(ctx.Request.Context(), ctx.Param("id"), claims.UserID, req.Instruction)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"studentText": text})
}

type GenerateQuizRequest struct {
	QuestionCount int    `json:"questionCount" binding:"required,min=1,max=20"`
	Instructions  string `json:"instructions"`
}

func (c *AuthoringController) GenerateQuiz(ctx *gin.Context) {
	var req GenerateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	quiz, err := c.AuthoringService.GenerateQuiz(ctx.Request.Context(), ctx.Param("id"), claims.UserID, req.QuestionCount, req.Instructions)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

type GenerateFinalTestRequest struct {
	QuestionCount int    `json:"questionCount" binding:"required,min=1,max=30"`
	QuestionType  string `json:"questionType" binding:"required,oneof=multiple-choice true-false"`
	Difficulty    string `json:"difficulty" binding:"required,oneof=lehká střední těžká"`
}

func (c *AuthoringController) GenerateFinalTest(ctx *gin.Context) {
	var req GenerateFinalTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	test, err := c.AuthoringService.GenerateFinalTest(ctx.Request.Context(), ctx.Param("id"), claims.UserID, req.QuestionCount, req.QuestionType, req.Difficulty)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

type GeneratePresentationRequest struct {
	SlideCount int    `json:"slideCount" binding:"required,min=1,max=30"`
	ThemeColor string `json:"themeColor"`
}

// GeneratePresentation responds with the rendered PDF; the slide content
// is persisted on the lesson as a side effect.
func (c *AuthoringController) GeneratePresentation(ctx *gin.Context) {
	var req GeneratePresentationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	_, pdfBytes, err := c.AuthoringService.GeneratePresentation(ctx.Request.Context(), ctx.Param("id"), claims.UserID, req.SlideCount, req.ThemeColor)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=prezentace-%s.pdf", ctx.Param("id")))
	ctx.Data(http.StatusOK, "application/pdf", pdfBytes)
}

type AnalyzeFileRequest struct {
	FileName string `json:"fileName" binding:"required"`
}

func (c *AuthoringController) AnalyzeSourceFile(ctx *gin.Context) {
	var req AnalyzeFileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	analysis, err := c.AuthoringService.AnalyzeSourceFile(ctx.Request.Context(), ctx.Param("id"), claims.UserID, req.FileName)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"analysis": analysis})
}
