package model

// KnowledgeComponent is a tag the adaptive engine uses to track topic
// mastery. A knowledge component is either tied one-to-one to an answer
// option, or represents a group that the qualitative classifier can assign
// learners to. Group components must set DashboardID explicitly; there is no
// other way to trace a group score back to a dashboard.
//
// swagger:model KnowledgeComponent
type KnowledgeComponent struct {
	BaseModel
	DashboardID *uint  `gorm:"index" json:"dashboardId,omitempty"`
	KcID        string `gorm:"size:50;index;not null" json:"kcId"`
	KcName      string `gorm:"size:100;not null" json:"kcName"`
}

func (KnowledgeComponent) TableName() string {
	return "knowledge_components"
}
