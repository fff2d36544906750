package model

// Dashboard represents a single learner profile dashboard instance.
//
// swagger:model Dashboard
type Dashboard struct {
	BaseModel
	Name     string    `gorm:"type:text;not null" json:"name"`
	Sections []Section `gorm:"foreignKey:DashboardID" json:"sections,omitempty"`
}

func (Dashboard) TableName() string {
	return "dashboards"
}

// Section groups a set of related questions on a dashboard. Sections are
// kept in a dense, zero-based order per dashboard via Position.
//
// swagger:model Section
type Section struct {
	BaseModel
	DashboardID uint   `gorm:"index:idx_sections_dashboard_position,unique,priority:1;not null" json:"dashboardId"`
	Position    uint   `gorm:"index:idx_sections_dashboard_position,unique,priority:2;not null" json:"position"`
	Title       string `gorm:"size:120" json:"title"`
	IntroText   string `gorm:"type:text" json:"introText"`
}

func (Section) TableName() string {
	return "sections"
}
