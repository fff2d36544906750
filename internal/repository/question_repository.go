package repository

import (
	"lpd_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) CreateQualitative(q *model.QualitativeQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) CreateMultipleChoice(q *model.MultipleChoiceQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) CreateRanking(q *model.RankingQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) CreateLikert(q *model.LikertScaleQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindQualitativeByID(id uint) (*model.QualitativeQuestion, error) {
	var q model.QualitativeQuestion
	err := r.DB.First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) FindMultipleChoiceByID(id uint) (*model.MultipleChoiceQuestion, error) {
	var q model.MultipleChoiceQuestion
	err := r.DB.First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) FindRankingByID(id uint) (*model.RankingQuestion, error) {
	var q model.RankingQuestion
	err := r.DB.First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) FindLikertByID(id uint) (*model.LikertScaleQuestion, error) {
	var q model.LikertScaleQuestion
	err := r.DB.First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) QualitativeBySection(sectionID uint) ([]model.QualitativeQuestion, error) {
	var qs []model.QualitativeQuestion
	err := r.DB.Where("section_id = ?", sectionID).Order("number asc").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) MultipleChoiceBySection(sectionID uint) ([]model.MultipleChoiceQuestion, error) {
	var qs []model.MultipleChoiceQuestion
	err := r.DB.Where("section_id = ?", sectionID).Order("number asc").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) RankingBySection(sectionID uint) ([]model.RankingQuestion, error) {
	var qs []model.RankingQuestion
	err := r.DB.Where("section_id = ?", sectionID).Order("number asc").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) LikertBySection(sectionID uint) ([]model.LikertScaleQuestion, error) {
	var qs []model.LikertScaleQuestion
	err := r.DB.Where("section_id = ?", sectionID).Order("number asc").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) CreateAnswerOption(option *model.AnswerOption) error {
	return r.DB.Create(option).Error
}

func (r *QuestionRepository) FindAnswerOptionByID(id uint) (*model.AnswerOption, error) {
	var option model.AnswerOption
	err := r.DB.Preload("KnowledgeComponent").First(&option, id).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}

// AnswerOptionsFor returns the options of one quantitative question,
// identified by its (kind, id) reference.
func (r *QuestionRepository) AnswerOptionsFor(questionKind string, questionID uint) ([]model.AnswerOption, error) {
	var options []model.AnswerOption
	err := r.DB.Preload("KnowledgeComponent").
		Where("question_kind = ? AND question_id = ?", questionKind, questionID).
		Find(&options).Error
	return options, err
}

// UnrankedOptionValue computes the value stored for ranking options a
// learner left unranked: one more than the largest number_of_options_to_rank
// across ALL ranking questions, so that answer values scale consistently
// between ranking questions. The maximum is global, not per dashboard.
func (r *QuestionRepository) UnrankedOptionValue() (int, error) {
	var maxRank *int
	err := r.DB.Model(&model.RankingQuestion{}).
		Select("MAX(number_of_options_to_rank)").Scan(&maxRank).Error
	if err != nil {
		return 0, err
	}
	if maxRank == nil {
		return 1, nil
	}
	return *maxRank + 1, nil
}

// SectionForQuestion resolves the parent section of a quantitative question
// via its (kind, id) reference.
func (r *QuestionRepository) SectionForQuestion(questionKind string, questionID uint) (*model.Section, error) {
	var sectionID uint
	var err error
	switch questionKind {
	case model.QuestionKindMultipleChoice:
		var q model.MultipleChoiceQuestion
		err = r.DB.Select("section_id").First(&q, questionID).Error
		sectionID = q.SectionID
	case model.QuestionKindRanking:
		var q model.RankingQuestion
		err = r.DB.Select("section_id").First(&q, questionID).Error
		sectionID = q.SectionID
	case model.QuestionKindLikert:
		var q model.LikertScaleQuestion
		err = r.DB.Select("section_id").First(&q, questionID).Error
		sectionID = q.SectionID
	default:
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	var section model.Section
	if err := r.DB.First(&section, sectionID).Error; err != nil {
		return nil, err
	}
	return &section, nil
}
