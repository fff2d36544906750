package controller

import (
	"math"
	"net/http"

	"lpd_backend/internal/service"
	"lpd_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
	AuthService       *service.AuthService
}

func NewSubmissionController(submissionService *service.SubmissionService, authService *service.AuthService) *SubmissionController {
	return &SubmissionController{
		SubmissionService: submissionService,
		AuthService:       authService,
	}
}

// SubmissionRequest carries a learner's answers for one dashboard section.
// swagger:model SubmissionRequest
type SubmissionRequest struct {
	SectionID           uint                              `json:"section_id" binding:"required"`
	QualitativeAnswers  []service.QualitativeAnswerInput  `json:"qualitative_answers"`
	QuantitativeAnswers []service.QuantitativeAnswerInput `json:"quantitative_answers"`
}

// Submit godoc
// @Summary Submit answers for a dashboard section
// @Description Persist answers, update scores, transmit them to the adaptive engine, and record the submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param body body SubmissionRequest true "answers"
// @Success 200 {object} object "message and last update info"
// @Failure 400 {object} object "malformed request"
// @Failure 401 {object} util.Response
// @Failure 500 {object} object "pipeline stage failure"
// @Router /api/submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, subErr := c.SubmissionService.ProcessSubmission(
		ctx.Request.Context(),
		user,
		req.SectionID,
		req.QualitativeAnswers,
		req.QuantitativeAnswers,
	)
	if subErr != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": subErr.Message})
		return
	}

	// Percentages are computed as floats throughout and only rounded here.
	ctx.JSON(http.StatusOK, gin.H{
		"message": util.MsgAnswersSaved,
		"last_update": gin.H{
			"timestamp": result.LastUpdate.UTC().Format(util.TimeFormat),
			"completion_percentages": gin.H{
				"profile": int(math.Round(result.Completion.DashboardPercent)),
				"section": int(math.Round(result.Completion.SectionPercent)),
			},
		},
	})
}
