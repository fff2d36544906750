package repository

import (
	"lpd_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

// Upsert stores a learner's score for one knowledge component, replacing any
// previous value, and returns the row with the component preloaded.
func (r *ScoreRepository) Upsert(learnerID, knowledgeComponentID uint, value float64) (*model.Score, error) {
	score := model.Score{
		LearnerID:            learnerID,
		KnowledgeComponentID: knowledgeComponentID,
		Value:                value,
	}
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "learner_id"}, {Name: "knowledge_component_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&score).Error
	if err != nil {
		return nil, err
	}
	err = r.DB.Preload("KnowledgeComponent").
		Where("learner_id = ? AND knowledge_component_id = ?", learnerID, knowledgeComponentID).
		First(&score).Error
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (r *ScoreRepository) ListForLearner(learnerID uint) ([]model.Score, error) {
	var scores []model.Score
	err := r.DB.Preload("KnowledgeComponent").
		Where("learner_id = ?", learnerID).Find(&scores).Error
	return scores, err
}
