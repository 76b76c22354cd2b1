package models

import "time"

// 标签类型
const (
	TagTypeContext  = "context"
	TagTypeProject  = "project"
	TagTypePriority = "priority"
	TagTypeCustom   = "custom"
)

// Tag 标签模型，系统标签不可删除
type Tag struct {
	ID          string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50)" json:"name"`
	Type        string    `gorm:"type:varchar(20);default:custom" json:"type"`
	Color       string    `gorm:"type:varchar(20)" json:"color"`
	Icon        string    `gorm:"type:varchar(50)" json:"icon"`
	Category    string    `gorm:"type:varchar(50)" json:"category"`
	Description string    `gorm:"type:varchar(500)" json:"description"`
	IsSystem    bool      `gorm:"default:false" json:"isSystem"`
	CreatedByID string    `gorm:"type:varchar(50);index" json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidTagType 校验标签类型取值
func ValidTagType(t string) bool {
	switch t {
	case TagTypeContext, TagTypeProject, TagTypePriority, TagTypeCustom:
		return true
	}
	return false
}
