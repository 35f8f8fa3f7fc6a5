package controller

import (
	"fmt"
	"path/filepath"

	"maang_tracker_backend/internal/service"
	"maang_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	ExportService *service.ExportService
}

func NewExportController(exportService *service.ExportService) *ExportController {
	return &ExportController{ExportService: exportService}
}

// ProgressCSV godoc
// @Summary Download progress as CSV
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "csv payload"
// @Router /api/export/progress [get]
func (c *ExportController) ProgressCSV(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	filename, data, err := c.ExportService.ProgressCSV(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(filename)))
	ctx.Data(200, "text/csv", data)
}
