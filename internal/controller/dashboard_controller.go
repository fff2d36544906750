package controller

import (
	"errors"
	"net/http"
	"strconv"

	"lpd_backend/internal/model"
	"lpd_backend/internal/service"
	"lpd_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardController exposes administrative CRUD for dashboards and their
// building blocks. All routes require the admin role.
type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// CreateDashboardRequest defines a new dashboard.
// swagger:model CreateDashboardRequest
type CreateDashboardRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateDashboard godoc
// @Summary Create a dashboard
// @Tags admin
// @Accept json
// @Produce json
// @Param body body CreateDashboardRequest true "dashboard"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/admin/dashboards [post]
func (c *DashboardController) CreateDashboard(ctx *gin.Context) {
	var req CreateDashboardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	dashboard := &model.Dashboard{Name: req.Name}
	if err := c.DashboardService.CreateDashboard(dashboard); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": dashboard.ID})
}

// ListDashboards godoc
// @Summary List dashboards
// @Tags admin
// @Produce json
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(12)
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/dashboards [get]
func (c *DashboardController) ListDashboards(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "12"))

	dashboards, total, err := c.DashboardService.ListDashboards(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"dashboards": dashboards,
		"total":      total,
		"page":       page,
		"limit":      limit,
	})
}

// GetDashboard godoc
// @Summary Get a dashboard with its sections
// @Tags admin
// @Produce json
// @Param id path int true "dashboard id"
// @Success 200 {object} util.Response{data=model.Dashboard}
// @Failure 404 {object} util.Response
// @Router /api/admin/dashboards/{id} [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid dashboard id")
		return
	}

	dashboard, err := c.DashboardService.GetDashboard(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, dashboard)
}

// DeleteDashboard godoc
// @Summary Delete a dashboard
// @Tags admin
// @Produce json
// @Param id path int true "dashboard id"
// @Success 200 {object} util.Response
// @Router /api/admin/dashboards/{id} [delete]
func (c *DashboardController) DeleteDashboard(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid dashboard id")
		return
	}

	if err := c.DashboardService.DeleteDashboard(uint(id)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// CreateSectionRequest defines a new section of a dashboard.
// swagger:model CreateSectionRequest
type CreateSectionRequest struct {
	DashboardID uint   `json:"dashboard_id" binding:"required"`
	Position    uint   `json:"position"`
	Title       string `json:"title"`
	IntroText   string `json:"intro_text"`
}

// CreateSection godoc
// @Summary Create a section
// @Tags admin
// @Accept json
// @Produce json
// @Param body body CreateSectionRequest true "section"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/admin/sections [post]
func (c *DashboardController) CreateSection(ctx *gin.Context) {
	var req CreateSectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section := &model.Section{
		DashboardID: req.DashboardID,
		Position:    req.Position,
		Title:       req.Title,
		IntroText:   req.IntroText,
	}
	if err := c.DashboardService.CreateSection(section); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": section.ID})
}

// CreateQualitativeQuestionRequest defines a free-text question.
// swagger:model CreateQualitativeQuestionRequest
type CreateQualitativeQuestionRequest struct {
	SectionID                 uint   `json:"section_id" binding:"required"`
	Number                    uint   `json:"number"`
	QuestionText              string `json:"question_text" binding:"required"`
	FramingText               string `json:"framing_text"`
	Notes                     string `json:"notes"`
	QuestionType              string `json:"question_type" binding:"required"`
	InfluencesGroupMembership bool   `json:"influences_group_membership"`
	SplitAnswer               bool   `json:"split_answer"`
}

// CreateQualitativeQuestion godoc
// @Summary Create a qualitative question
// @Tags admin
// @Accept json
// @Produce json
// @Param body body CreateQualitativeQuestionRequest true "question"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/admin/questions/qualitative [post]
func (c *DashboardController) CreateQualitativeQuestion(ctx *gin.Context) {
	var req CreateQualitativeQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question := &model.QualitativeQuestion{
		QuestionBase: model.QuestionBase{
			SectionID:    req.SectionID,
			Number:       req.Number,
			QuestionText: req.QuestionText,
			FramingText:  req.FramingText,
			Notes:        req.Notes,
		},
		QuestionType:              req.QuestionType,
		InfluencesGroupMembership: req.InfluencesGroupMembership,
		SplitAnswer:               req.SplitAnswer,
	}

	if err := c.DashboardService.CreateQualitativeQuestion(question); err != nil {
		var unknownType *model.UnknownQuestionTypeError
		if errors.As(err, &unknownType) {
			util.BadRequest(ctx, unknownType.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": question.ID})
}

// CreateQuantitativeQuestionRequest defines a question with answer options.
// swagger:model CreateQuantitativeQuestionRequest
type CreateQuantitativeQuestionRequest struct {
	SectionID    uint   `json:"section_id" binding:"required"`
	Number       uint   `json:"number"`
	QuestionText string `json:"question_text" binding:"required"`
	FramingText  string `json:"framing_text"`
	Notes        string `json:"notes"`

	RandomizeOptions bool `json:"randomize_options"`

	// MaxOptionsToSelect applies to multiple choice questions.
	MaxOptionsToSelect uint `json:"max_options_to_select"`
	// NumberOfOptionsToRank applies to ranking questions.
	NumberOfOptionsToRank uint `json:"number_of_options_to_rank"`
	// AnswerOptionRange applies to Likert scale questions.
	AnswerOptionRange string `json:"answer_option_range"`
}

// CreateQuantitativeQuestion godoc
// @Summary Create a quantitative question
// @Description The path parameter selects the question kind: multiple_choice, ranking, or likert
// @Tags admin
// @Accept json
// @Produce json
// @Param kind path string true "question kind"
// @Param body body CreateQuantitativeQuestionRequest true "question"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/admin/questions/{kind} [post]
func (c *DashboardController) CreateQuantitativeQuestion(ctx *gin.Context) {
	var req CreateQuantitativeQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	base := model.QuestionBase{
		SectionID:    req.SectionID,
		Number:       req.Number,
		QuestionText: req.QuestionText,
		FramingText:  req.FramingText,
		Notes:        req.Notes,
	}

	var id uint
	var err error
	switch ctx.Param("kind") {
	case model.QuestionKindMultipleChoice:
		question := &model.MultipleChoiceQuestion{
			QuestionBase:       base,
			MaxOptionsToSelect: req.MaxOptionsToSelect,
			RandomizeOptions:   req.RandomizeOptions,
		}
		err = c.DashboardService.CreateMultipleChoiceQuestion(question)
		id = question.ID
	case model.QuestionKindRanking:
		question := &model.RankingQuestion{
			QuestionBase:          base,
			NumberOfOptionsToRank: req.NumberOfOptionsToRank,
			RandomizeOptions:      req.RandomizeOptions,
		}
		err = c.DashboardService.CreateRankingQuestion(question)
		id = question.ID
	case model.QuestionKindLikert:
		question := &model.LikertScaleQuestion{
			QuestionBase:      base,
			AnswerOptionRange: req.AnswerOptionRange,
			RandomizeOptions:  req.RandomizeOptions,
		}
		err = c.DashboardService.CreateLikertQuestion(question)
		id = question.ID
	default:
		util.BadRequest(ctx, "unknown question kind")
		return
	}

	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"id": id})
}

// CreateAnswerOptionRequest attaches an answer option to a question.
// swagger:model CreateAnswerOptionRequest
type CreateAnswerOptionRequest struct {
	QuestionKind              string `json:"question_kind" binding:"required"`
	QuestionID                uint   `json:"question_id" binding:"required"`
	OptionText                string `json:"option_text" binding:"required"`
	KnowledgeComponentID      *uint  `json:"knowledge_component_id"`
	AllowsCustomInput         bool   `json:"allows_custom_input"`
	InfluencesRecommendations bool   `json:"influences_recommendations"`
	FallbackOption            bool   `json:"fallback_option"`
}

// CreateAnswerOption godoc
// @Summary Create an answer option
// @Tags admin
// @Accept json
// @Produce json
// @Param body body CreateAnswerOptionRequest true "answer option"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "knowledge component belongs to another dashboard"
// @Router /api/admin/answer-options [post]
func (c *DashboardController) CreateAnswerOption(ctx *gin.Context) {
	var req CreateAnswerOptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	option := &model.AnswerOption{
		QuestionKind:              req.QuestionKind,
		QuestionID:                req.QuestionID,
		OptionText:                req.OptionText,
		KnowledgeComponentID:      req.KnowledgeComponentID,
		AllowsCustomInput:         req.AllowsCustomInput,
		InfluencesRecommendations: req.InfluencesRecommendations,
		FallbackOption:            req.FallbackOption,
	}

	if err := c.DashboardService.CreateAnswerOption(option); err != nil {
		if errors.Is(err, util.ErrKnowledgeComponentMismatch) {
			util.Error(ctx, http.StatusConflict, err.Error())
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": option.ID})
}

// CreateKnowledgeComponentRequest defines a knowledge component.
// swagger:model CreateKnowledgeComponentRequest
type CreateKnowledgeComponentRequest struct {
	DashboardID *uint  `json:"dashboard_id"`
	KcID        string `json:"kc_id" binding:"required"`
	KcName      string `json:"kc_name" binding:"required"`
}

// CreateKnowledgeComponent godoc
// @Summary Create a knowledge component
// @Tags admin
// @Accept json
// @Produce json
// @Param body body CreateKnowledgeComponentRequest true "knowledge component"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/admin/knowledge-components [post]
func (c *DashboardController) CreateKnowledgeComponent(ctx *gin.Context) {
	var req CreateKnowledgeComponentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	kc := &model.KnowledgeComponent{
		DashboardID: req.DashboardID,
		KcID:        req.KcID,
		KcName:      req.KcName,
	}
	if err := c.DashboardService.CreateKnowledgeComponent(kc); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": kc.ID})
}

// ListKnowledgeComponents godoc
// @Summary List knowledge components of a dashboard
// @Tags admin
// @Produce json
// @Param id path int true "dashboard id"
// @Success 200 {object} util.Response{data=[]model.KnowledgeComponent}
// @Router /api/admin/dashboards/{id}/knowledge-components [get]
func (c *DashboardController) ListKnowledgeComponents(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid dashboard id")
		return
	}

	components, err := c.DashboardService.ListKnowledgeComponents(uint(id))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, components)
}
