package model

import "time"

// Submission records when a learner last submitted a section. One row per
// (learner, section); every submit advances Updated, even when no answer
// changed.
//
// swagger:model Submission
type Submission struct {
	BaseModel
	LearnerID uint      `gorm:"uniqueIndex:idx_submissions_learner_section;not null" json:"learnerId"`
	SectionID uint      `gorm:"uniqueIndex:idx_submissions_learner_section;not null" json:"sectionId"`
	Updated   time.Time `json:"updated"`
}

func (Submission) TableName() string {
	return "submissions"
}
