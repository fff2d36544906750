package repository

import (
	"lpd_backend/internal/model"

	"gorm.io/gorm"
)

type KnowledgeComponentRepository struct {
	DB *gorm.DB
}

func NewKnowledgeComponentRepository(db *gorm.DB) *KnowledgeComponentRepository {
	return &KnowledgeComponentRepository{DB: db}
}

func (r *KnowledgeComponentRepository) Create(kc *model.KnowledgeComponent) error {
	return r.DB.Create(kc).Error
}

func (r *KnowledgeComponentRepository) Update(kc *model.KnowledgeComponent) error {
	return r.DB.Save(kc).Error
}

func (r *KnowledgeComponentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.KnowledgeComponent{}, id).Error
}

func (r *KnowledgeComponentRepository) FindByID(id uint) (*model.KnowledgeComponent, error) {
	var kc model.KnowledgeComponent
	err := r.DB.First(&kc, id).Error
	if err != nil {
		return nil, err
	}
	return &kc, nil
}

// FindByKcID resolves a knowledge component by its external identifier,
// scoped to one dashboard. Group components derived by the classifier are
// looked up this way.
func (r *KnowledgeComponentRepository) FindByKcID(kcID string, dashboardID uint) (*model.KnowledgeComponent, error) {
	var kc model.KnowledgeComponent
	err := r.DB.Where("kc_id = ? AND dashboard_id = ?", kcID, dashboardID).
		First(&kc).Error
	if err != nil {
		return nil, err
	}
	return &kc, nil
}

func (r *KnowledgeComponentRepository) ListForDashboard(dashboardID uint) ([]model.KnowledgeComponent, error) {
	var kcs []model.KnowledgeComponent
	err := r.DB.Where("dashboard_id = ?", dashboardID).Order("kc_id asc").Find(&kcs).Error
	return kcs, err
}
