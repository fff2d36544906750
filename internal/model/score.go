package model

// Score is a learner's score for one knowledge component, kept unique per
// (learner, knowledge component) and mirrored to the adaptive engine. For a
// group component the value is 1 - membership probability; for an answer
// option component it is the transformed answer value. Lower scores make the
// engine recommend more of the associated content.
//
// swagger:model Score
type Score struct {
	BaseModel
	LearnerID            uint               `gorm:"uniqueIndex:idx_scores_learner_component;not null" json:"learnerId"`
	KnowledgeComponentID uint               `gorm:"uniqueIndex:idx_scores_learner_component;not null" json:"knowledgeComponentId"`
	KnowledgeComponent   KnowledgeComponent `gorm:"foreignKey:KnowledgeComponentID" json:"knowledgeComponent"`
	Value                float64            `gorm:"not null" json:"value"`
}

func (Score) TableName() string {
	return "scores"
}
