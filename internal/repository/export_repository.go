package repository

import (
	"lpd_backend/internal/model"

	"gorm.io/gorm"
)

type ExportRepository struct {
	DB *gorm.DB
}

func NewExportRepository(db *gorm.DB) *ExportRepository {
	return &ExportRepository{DB: db}
}

func (r *ExportRepository) Create(export *model.ProfileExport) error {
	return r.DB.Create(export).Error
}

func (r *ExportRepository) ListForUser(userID uint) ([]model.ProfileExport, error) {
	var exports []model.ProfileExport
	err := r.DB.Where("requested_by_id = ?", userID).
		Order("created_at desc").Find(&exports).Error
	return exports, err
}
