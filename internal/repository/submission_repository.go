package repository

import (
	"errors"
	"lpd_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Upsert records when the learner last submitted a section. The timestamp
// always advances, even when the submission changed no answers.
func (r *SubmissionRepository) Upsert(learnerID, sectionID uint, updated time.Time) (*model.Submission, error) {
	submission := model.Submission{
		LearnerID: learnerID,
		SectionID: sectionID,
		Updated:   updated,
	}
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "learner_id"}, {Name: "section_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated", "updated_at"}),
	}).Create(&submission).Error
	if err != nil {
		return nil, err
	}
	err = r.DB.Where("learner_id = ? AND section_id = ?", learnerID, sectionID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// LastUpdate returns when the learner last submitted the section, or nil if
// they never have.
func (r *SubmissionRepository) LastUpdate(learnerID, sectionID uint) (*time.Time, error) {
	var submission model.Submission
	err := r.DB.Where("learner_id = ? AND section_id = ?", learnerID, sectionID).
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission.Updated, nil
}
