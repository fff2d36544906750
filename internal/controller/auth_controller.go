package controller

import (
	"errors"
	"net/http"

	"lpd_backend/internal/service"
	"lpd_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	// LaunchURL is the externally visible URL of the LTI launch endpoint,
	// needed to reproduce the OAuth signature base string behind proxies.
	LaunchURL string
}

func NewAuthController(authService *service.AuthService, launchURL string) *AuthController {
	return &AuthController{
		AuthService: authService,
		LaunchURL:   launchURL,
	}
}

// LTILaunch godoc
// @Summary Handle LTI 1.1 launch
// @Description Verify the launch signature, provision the learner account, and issue a session token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} util.Response{data=object} "session token and user info"
// @Failure 400 {object} util.Response "malformed launch request"
// @Failure 401 {object} util.Response "invalid signature"
// @Router /lti/launch [post]
func (c *AuthController) LTILaunch(ctx *gin.Context) {
	if err := ctx.Request.ParseForm(); err != nil {
		util.BadRequest(ctx, "malformed launch request")
		return
	}
	form := ctx.Request.PostForm

	userID := form.Get("user_id")
	if userID == "" {
		util.BadRequest(ctx, "missing user_id")
		return
	}

	params := service.LTILaunchParams{
		UserID: userID,
		Email:  form.Get("lis_person_contact_email_primary"),
		Form:   form,
	}

	user, token, err := c.AuthService.AuthenticateLTI(c.LaunchURL, params)
	if err != nil {
		if errors.Is(err, util.ErrInvalidLTISignature) {
			util.Error(ctx, http.StatusUnauthorized, "Invalid LTI signature")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// LoginRequest carries admin credentials.
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Log in with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "credentials"
// @Success 200 {object} util.Response{data=object} "session token"
// @Failure 401 {object} util.Response "invalid credentials"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, token, err := c.AuthService.Login(req.Username, req.Password)
	if err != nil {
		util.Error(ctx, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	util.Success(ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}
