package utils

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor 不透明分页游标，指向上一页最后一行
type Cursor struct {
	SortKey time.Time `json:"k"`
	ID      string    `json:"id"`
}

// EncodeCursor 序列化游标
func EncodeCursor(sortKey time.Time, id string) string {
	data, err := json.Marshal(Cursor{SortKey: sortKey, ID: id})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor 解析游标
func DecodeCursor(raw string) (*Cursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("无效的游标")
	}
	var cursor Cursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("无效的游标")
	}
	return &cursor, nil
}

// NormalizeLimit 归一化分页大小，缺省20，上限100
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
