package model

// QualitativeAnswer is one stored component of a learner's answer to a
// qualitative question. Questions with SplitAnswer set can store several
// rows per (learner, question); all other questions store exactly one.
//
// swagger:model QualitativeAnswer
type QualitativeAnswer struct {
	BaseModel
	LearnerID  uint   `gorm:"index:idx_qualitative_answers_learner_question,priority:1;not null" json:"learnerId"`
	QuestionID uint   `gorm:"index:idx_qualitative_answers_learner_question,priority:2;not null" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
}

func (QualitativeAnswer) TableName() string {
	return "qualitative_answers"
}

// QuantitativeAnswer is a learner's stored value for a single answer option.
// The composite unique index is the upsert target: exactly one row exists
// per (learner, answer option).
//
// For multiple choice options the value is 1 (selected) or 0 (unselected).
// For ranking options it is the chosen rank, or the global unranked sentinel.
// For Likert options it is the chosen 1-based position on the scale.
//
// swagger:model QuantitativeAnswer
type QuantitativeAnswer struct {
	BaseModel
	LearnerID      uint   `gorm:"uniqueIndex:idx_quantitative_answers_learner_option;not null" json:"learnerId"`
	AnswerOptionID uint   `gorm:"uniqueIndex:idx_quantitative_answers_learner_option;not null" json:"answerOptionId"`
	Value          int    `gorm:"not null" json:"value"`
	CustomInput    string `gorm:"size:120" json:"customInput"`
}

func (QuantitativeAnswer) TableName() string {
	return "quantitative_answers"
}
