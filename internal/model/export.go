package model

// ProfileExport records a single export of a learner's profile for one
// dashboard, together with where the snapshot file ended up.
//
// swagger:model ProfileExport
type ProfileExport struct {
	BaseModel
	RequestedByID uint   `gorm:"index;not null" json:"requestedById"`
	DashboardID   uint   `gorm:"index;not null" json:"dashboardId"`
	Filename      string `gorm:"size:255;not null" json:"filename"`
	Format        string `gorm:"size:10;not null" json:"format"`
	FileURL       string `gorm:"size:255" json:"fileUrl"`
}

func (ProfileExport) TableName() string {
	return "profile_exports"
}
