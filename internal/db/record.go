package db

import "time"

// StoredRecord 是记录库中一条通用记录的持久化形态
// ID 为存储层分配的 UUID，Kind 区分记录类型，Fields 保存 JSON 编码的字段
type StoredRecord struct {
	ID        string `gorm:"primaryKey"`
	Kind      string `gorm:"index"`
	Fields    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 固定表名，避免跟随模型改名漂移
func (StoredRecord) TableName() string {
	return "stored_records"
}
