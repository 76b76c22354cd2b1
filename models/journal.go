package models

import "time"

// Journal 日志模型，每个用户每天至多一条
type Journal struct {
	ID           string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	EntryDate    time.Time `gorm:"index:idx_journal_date_user,unique" json:"entryDate"` // 已归一到本地零点
	Content      string    `gorm:"type:text" json:"content"`                            // markdown
	TemplateName string    `gorm:"type:varchar(50)" json:"templateName"`
	CreatedByID  string    `gorm:"type:varchar(50);index:idx_journal_date_user,unique" json:"createdById"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
