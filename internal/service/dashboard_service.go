package service

import (
	"lpd_backend/internal/model"
	"lpd_backend/internal/repository"
	"lpd_backend/internal/util"
)

// DashboardService handles administrative management of dashboards,
// sections, questions, answer options, and knowledge components.
type DashboardService struct {
	DashboardRepo *repository.DashboardRepository
	QuestionRepo  *repository.QuestionRepository
	KCRepo        *repository.KnowledgeComponentRepository
}

func NewDashboardService(
	dashboardRepo *repository.DashboardRepository,
	questionRepo *repository.QuestionRepository,
	kcRepo *repository.KnowledgeComponentRepository,
) *DashboardService {
	return &DashboardService{
		DashboardRepo: dashboardRepo,
		QuestionRepo:  questionRepo,
		KCRepo:        kcRepo,
	}
}

func (s *DashboardService) CreateDashboard(dashboard *model.Dashboard) error {
	return s.DashboardRepo.Create(dashboard)
}

func (s *DashboardService) UpdateDashboard(dashboard *model.Dashboard) error {
	return s.DashboardRepo.Update(dashboard)
}

func (s *DashboardService) DeleteDashboard(id uint) error {
	return s.DashboardRepo.Delete(id)
}

func (s *DashboardService) GetDashboard(id uint) (*model.Dashboard, error) {
	return s.DashboardRepo.FindByID(id)
}

func (s *DashboardService) ListDashboards(page, limit int) ([]model.Dashboard, int64, error) {
	return s.DashboardRepo.List(page, limit)
}

func (s *DashboardService) CreateSection(section *model.Section) error {
	return s.DashboardRepo.CreateSection(section)
}

func (s *DashboardService) UpdateSection(section *model.Section) error {
	return s.DashboardRepo.UpdateSection(section)
}

func (s *DashboardService) DeleteSection(id uint) error {
	return s.DashboardRepo.DeleteSection(id)
}

func (s *DashboardService) CreateQualitativeQuestion(question *model.QualitativeQuestion) error {
	if !model.IsQualitativeType(question.QuestionType) {
		return &model.UnknownQuestionTypeError{QuestionType: question.QuestionType}
	}
	return s.QuestionRepo.CreateQualitative(question)
}

func (s *DashboardService) CreateMultipleChoiceQuestion(question *model.MultipleChoiceQuestion) error {
	return s.QuestionRepo.CreateMultipleChoice(question)
}

func (s *DashboardService) CreateRankingQuestion(question *model.RankingQuestion) error {
	return s.QuestionRepo.CreateRanking(question)
}

func (s *DashboardService) CreateLikertQuestion(question *model.LikertScaleQuestion) error {
	return s.QuestionRepo.CreateLikert(question)
}

// CreateAnswerOption attaches an option to a question. An option may only
// be linked to a knowledge component that belongs to the same dashboard as
// the question's section.
func (s *DashboardService) CreateAnswerOption(option *model.AnswerOption) error {
	if option.KnowledgeComponentID != nil {
		section, err := s.QuestionRepo.SectionForQuestion(option.QuestionKind, option.QuestionID)
		if err != nil {
			return err
		}
		kc, err := s.KCRepo.FindByID(*option.KnowledgeComponentID)
		if err != nil {
			return err
		}
		if kc.DashboardID != nil && *kc.DashboardID != section.DashboardID {
			return util.ErrKnowledgeComponentMismatch
		}
	}
	return s.QuestionRepo.CreateAnswerOption(option)
}

func (s *DashboardService) CreateKnowledgeComponent(kc *model.KnowledgeComponent) error {
	return s.KCRepo.Create(kc)
}

func (s *DashboardService) UpdateKnowledgeComponent(kc *model.KnowledgeComponent) error {
	return s.KCRepo.Update(kc)
}

func (s *DashboardService) DeleteKnowledgeComponent(id uint) error {
	return s.KCRepo.Delete(id)
}

func (s *DashboardService) ListKnowledgeComponents(dashboardID uint) ([]model.KnowledgeComponent, error) {
	return s.KCRepo.ListForDashboard(dashboardID)
}
