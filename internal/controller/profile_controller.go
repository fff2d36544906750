package controller

import (
	"errors"
	"strconv"

	"lpd_backend/internal/service"
	"lpd_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProfileController struct {
	ProfileService *service.ProfileService
	AuthService    *service.AuthService
}

func NewProfileController(profileService *service.ProfileService, authService *service.AuthService) *ProfileController {
	return &ProfileController{
		ProfileService: profileService,
		AuthService:    authService,
	}
}

// GetProfile godoc
// @Summary Get the learner's view of a dashboard
// @Description Sections with questions in order, answer options in display order, and the learner's answers
// @Tags profile
// @Produce json
// @Param id path int true "dashboard id"
// @Success 200 {object} util.Response{data=service.DashboardView}
// @Failure 401 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/profile/{id} [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
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

	view, err := c.ProfileService.GetDashboard(user.ID, uint(dashboardID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, view)
}

// GetDefaultProfile godoc
// @Summary Get the learner's view of the default dashboard
// @Tags profile
// @Produce json
// @Success 200 {object} util.Response{data=service.DashboardView}
// @Failure 401 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/profile [get]
func (c *ProfileController) GetDefaultProfile(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.ProfileService.GetDefaultDashboard(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, view)
}
