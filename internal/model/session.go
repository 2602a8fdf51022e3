package model

type Session struct {
	BaseModel
	UserID         string `gorm:"size:255;not null;index" json:"user_id"`
	Name           string `gorm:"size:255;not null" json:"name"`
	Description    string `gorm:"type:text" json:"description"`
	TotalDocuments int    `gorm:"default:0" json:"total_documents"`
}

func (Session) TableName() string {
	return "sessions"
}
