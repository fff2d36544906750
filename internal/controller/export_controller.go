package controller

import (
	"strconv"

	"lpd_backend/internal/service"
	"lpd_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	ExportService *service.ExportService
	AuthService   *service.AuthService
}

func NewExportController(exportService *service.ExportService, authService *service.AuthService) *ExportController {
	return &ExportController{
		ExportService: exportService,
		AuthService:   authService,
	}
}

// Export godoc
// @Summary Export a learner's profile snapshot
// @Description Serialize answers and scores as JSON or CSV and store the file
// @Tags exports
// @Produce json
// @Param id path int true "dashboard id"
// @Param format query string false "json or csv" default(json)
// @Success 200 {object} util.Response{data=model.ProfileExport}
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/profile/{id}/export [post]
func (c *ExportController) Export(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboardID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid dashboard id")
		return
	}

	format := ctx.DefaultQuery("format", util.ExportFormatJSON)
	if format != util.ExportFormatJSON && format != util.ExportFormatCSV {
		util.BadRequest(ctx, "unsupported export format")
		return
	}

	export, err := c.ExportService.Export(ctx.Request.Context(), user, user.ID, uint(dashboardID), format)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, export)
}

// ListExports godoc
// @Summary List the user's previous exports
// @Tags exports
// @Produce json
// @Success 200 {object} util.Response{data=[]model.ProfileExport}
// @Failure 401 {object} util.Response
// @Router /api/exports [get]
func (c *ExportController) ListExports(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	exports, err := c.ExportService.ListExports(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, exports)
}
