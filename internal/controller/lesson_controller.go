package controller

import (
	"ai_sensei_backend/internal/service"
	"ai_sensei_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

type CreateLessonRequest struct {
	Title    string `json:"title" binding:"required"`
	Subtitle string `json:"subtitle"`
}

func (c *LessonController) Create(ctx *gin.Context) {
	var req CreateLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	lesson, err := c.LessonService.Create(claims.UserID, req.Title, req.Subtitle)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// List returns the caller's own lessons.
func (c *LessonController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	lessons, err := c.LessonService.ListByOwner(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

// Catalogue lists every lesson, for students picking one to study.
func (c *LessonController) Catalogue(ctx *gin.Context) {
	lessons, err := c.LessonService.ListAll()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

func (c *LessonController) Get(ctx *gin.Context) {
	lesson, err := c.LessonService.Get(ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

func (c *LessonController) Update(ctx *gin.Context) {
	var req service.LessonUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	lesson, err := c.LessonService.Update(ctx.Param("id"), claims.UserID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

func (c *LessonController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.LessonService.Delete(ctx.Param("id"), claims.UserID); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": ctx.Param("id")})
}
