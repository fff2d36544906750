package repository

import (
	"errors"
	"lpd_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// DeleteQualitativeAnswers removes every stored answer row for a
// (learner, question) pair. Submissions fully replace qualitative answers
// because split-answer questions can change the number of stored rows
// between submissions.
func (r *AnswerRepository) DeleteQualitativeAnswers(learnerID, questionID uint) error {
	return r.DB.Unscoped().
		Where("learner_id = ? AND question_id = ?", learnerID, questionID).
		Delete(&model.QualitativeAnswer{}).Error
}

func (r *AnswerRepository) CreateQualitativeAnswer(answer *model.QualitativeAnswer) error {
	return r.DB.Create(answer).Error
}

// QualitativeAnswersForQuestion returns stored answer components in
// insertion order.
func (r *AnswerRepository) QualitativeAnswersForQuestion(learnerID, questionID uint) ([]model.QualitativeAnswer, error) {
	var answers []model.QualitativeAnswer
	err := r.DB.Where("learner_id = ? AND question_id = ?", learnerID, questionID).
		Order("id asc").Find(&answers).Error
	return answers, err
}

// InfluencingAnswerTexts returns the text of every qualitative answer the
// learner has on file for a dashboard, restricted to questions flagged to
// influence group membership. This is the classifier's input set.
func (r *AnswerRepository) InfluencingAnswerTexts(learnerID, dashboardID uint) ([]string, error) {
	var texts []string
	err := r.DB.Model(&model.QualitativeAnswer{}).
		Joins("JOIN qualitative_questions ON qualitative_questions.id = qualitative_answers.question_id").
		Joins("JOIN sections ON sections.id = qualitative_questions.section_id").
		Where("qualitative_answers.learner_id = ?", learnerID).
		Where("qualitative_questions.influences_group_membership = ?", true).
		Where("sections.dashboard_id = ?", dashboardID).
		Order("qualitative_answers.id asc").
		Pluck("qualitative_answers.text", &texts).Error
	return texts, err
}

// UpsertQuantitativeAnswer stores the learner's value for an answer option,
// replacing any previous row for the same (learner, answer option) pair.
func (r *AnswerRepository) UpsertQuantitativeAnswer(answer *model.QuantitativeAnswer) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "learner_id"}, {Name: "answer_option_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value", "custom_input", "updated_at",
		}),
	}).Create(answer).Error
}

// QuantitativeAnswerFor returns the learner's stored answer for one option,
// or nil when the learner has never answered it.
func (r *AnswerRepository) QuantitativeAnswerFor(learnerID, answerOptionID uint) (*model.QuantitativeAnswer, error) {
	var answer model.QuantitativeAnswer
	err := r.DB.Where("learner_id = ? AND answer_option_id = ?", learnerID, answerOptionID).
		First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// QuantitativeAnswersForOptions returns stored answers keyed by answer
// option id for one learner.
func (r *AnswerRepository) QuantitativeAnswersForOptions(learnerID uint, answerOptionIDs []uint) (map[uint]model.QuantitativeAnswer, error) {
	answers := make(map[uint]model.QuantitativeAnswer, len(answerOptionIDs))
	if len(answerOptionIDs) == 0 {
		return answers, nil
	}
	var rows []model.QuantitativeAnswer
	err := r.DB.Where("learner_id = ? AND answer_option_id IN ?", learnerID, answerOptionIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		answers[row.AnswerOptionID] = row
	}
	return answers, nil
}
