package models

import "time"

// Note 笔记模型
type Note struct {
	ID          string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(200)" json:"title"`
	Content     string    `gorm:"type:text" json:"content"` // markdown
	Summary     string    `gorm:"type:varchar(500)" json:"summary"`
	IsPinned    bool      `gorm:"default:false" json:"isPinned"`
	IsArchived  bool      `gorm:"default:false" json:"isArchived"`
	ProjectID   *string   `gorm:"type:varchar(50);index" json:"projectId"`
	CreatedByID string    `gorm:"type:varchar(50);index" json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Tags    []Tag    `gorm:"many2many:note_tags" json:"tags,omitempty"`
	Tasks   []Task   `gorm:"many2many:note_tasks" json:"tasks,omitempty"`
}
