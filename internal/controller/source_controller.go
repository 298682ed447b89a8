package controller

import (
	"ai_sensei_backend/internal/service"
	"ai_sensei_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SourceController handles source files: per-lesson uploads and the
// professor's global library.
type SourceController struct {
	AuthoringService *service.AuthoringService
}

func NewSourceController(authoringService *service.AuthoringService) *SourceController {
	return &SourceController{AuthoringService: authoringService}
}

func (c *SourceController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	claims := util.GetUserFromContext(ctx)
	source, err := c.AuthoringService.UploadSource(ctx.Request.Context(),
		ctx.Param("id"), claims.UserID,
		fileHeader.Filename, file, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, source)
}

func (c *SourceController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	files, err := c.AuthoringService.ListSources(ctx.Request.Context(), ctx.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, files)
}

func (c *SourceController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	name := ctx.Param("name")
	if err := c.AuthoringService.DeleteSource(ctx.Request.Context(), ctx.Param("id"), claims.UserID, name); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": name})
}

func (c *SourceController) UploadGlobal(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	claims := util.GetUserFromContext(ctx)
	source, err := c.AuthoringService.UploadGlobal(ctx.Request.Context(), claims.UserID,
		fileHeader.Filename, file, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, source)
}

func (c *SourceController) ListGlobal(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	files, err := c.AuthoringService.ListGlobal(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, files)
}

func (c *SourceController) DeleteGlobal(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	name := ctx.Param("name")
	if err := c.AuthoringService.DeleteGlobal(ctx.Request.Context(), claims.UserID, name); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": name})
}

type FileContentRequest struct {
	FilePath string `json:"filePath" binding:"required"`
}

// Content extracts and returns the plain text of any stored file.
func (c *SourceController) Content(ctx *gin.Context) {
	var req FileContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	text, err := c.AuthoringService.SourceFileContent(ctx.Request.Context(), req.FilePath)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"textContent": text})
}
