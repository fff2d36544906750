package repository

import (
	"lpd_backend/internal/model"

	"gorm.io/gorm"
)

type DashboardRepository struct {
	DB *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{DB: db}
}

func (r *DashboardRepository) Create(dashboard *model.Dashboard) error {
	return r.DB.Create(dashboard).Error
}

func (r *DashboardRepository) Update(dashboard *model.Dashboard) error {
	return r.DB.Save(dashboard).Error
}

func (r *DashboardRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Dashboard{}, id).Error
}

func (r *DashboardRepository) FindByID(id uint) (*model.Dashboard, error) {
	var dashboard model.Dashboard
	err := r.DB.Preload("Sections", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&dashboard, id).Error
	return &dashboard, err
}

// First returns the default dashboard shown to learners after launch.
func (r *DashboardRepository) First() (*model.Dashboard, error) {
	var dashboard model.Dashboard
	err := r.DB.Preload("Sections", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Order("id asc").First(&dashboard).Error
	return &dashboard, err
}

func (r *DashboardRepository) List(page, limit int) ([]model.Dashboard, int64, error) {
	var dashboards []model.Dashboard
	var total int64
	if err := r.DB.Model(&model.Dashboard{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := r.DB.Order("id asc").Offset(offset).Limit(limit).Find(&dashboards).Error
	return dashboards, total, err
}

func (r *DashboardRepository) CreateSection(section *model.Section) error {
	return r.DB.Create(section).Error
}

func (r *DashboardRepository) UpdateSection(section *model.Section) error {
	return r.DB.Save(section).Error
}

func (r *DashboardRepository) DeleteSection(id uint) error {
	return r.DB.Delete(&model.Section{}, id).Error
}

func (r *DashboardRepository) FindSectionByID(id uint) (*model.Section, error) {
	var section model.Section
	err := r.DB.First(&section, id).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *DashboardRepository) SectionsForDashboard(dashboardID uint) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Where("dashboard_id = ?", dashboardID).
		Order("position asc").Find(&sections).Error
	return sections, err
}
