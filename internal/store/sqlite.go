package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elliotrap/Widgeme/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SQLiteStore 基于 gorm/sqlite 实现 RecordStore
// 记录以 (uuid, kind, JSON 字段) 的形式落在 stored_records 表
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore 构造 SQLiteStore
func NewSQLiteStore(gdb *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: gdb}
}

// Create 写入一条新记录并返回存储层分配的 ID
func (s *SQLiteStore) Create(kind string, fields Fields) (Record, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return Record{}, fmt.Errorf("encode record fields: %w", err)
	}

	row := db.StoredRecord{
		ID:     uuid.NewString(),
		Kind:   kind,
		Fields: string(payload),
	}

	if err := s.db.Create(&row).Error; err != nil {
		return Record{}, fmt.Errorf("%w: create %s: %v", ErrUnavailable, kind, err)
	}

	return recordFromRow(row)
}

// Fetch 按 ID 读取单条记录
func (s *SQLiteStore) Fetch(id string) (Record, error) {
	var row db.StoredRecord
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("%w: fetch record: %v", ErrUnavailable, err)
	}
	return recordFromRow(row)
}

// Save 整条回写记录的字段
func (s *SQLiteStore) Save(rec Record) (Record, error) {
	payload, err := json.Marshal(rec.Fields)
	if err != nil {
		return Record{}, fmt.Errorf("encode record fields: %w", err)
	}

	result := s.db.Model(&db.StoredRecord{}).
		Where("id = ?", rec.ID).
		Update("fields", string(payload))
	if result.Error != nil {
		return Record{}, fmt.Errorf("%w: save record: %v", ErrUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return Record{}, ErrNotFound
	}

	return s.Fetch(rec.ID)
}

// Delete 删除记录；目标不存在时视为删除成功
func (s *SQLiteStore) Delete(id string) error {
	if err := s.db.Delete(&db.StoredRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("%w: delete record: %v", ErrUnavailable, err)
	}
	return nil
}

// Query 返回满足谓词的同类记录
// 字段无法解析的行被跳过，不影响整批结果
func (s *SQLiteStore) Query(kind string, pred Predicate) ([]Record, error) {
	var rows []db.StoredRecord
	if err := s.db.Where("kind = ?", kind).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrUnavailable, kind, err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := recordFromRow(row)
		if err != nil {
			continue
		}
		if !pred.Matches(rec.Fields) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Available 检查底层数据库是否可达，供同步前的前置判断使用
func (s *SQLiteStore) Available() bool {
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

func recordFromRow(row db.StoredRecord) (Record, error) {
	fields := Fields{}
	if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", row.ID, err)
	}
	return Record{ID: row.ID, Kind: row.Kind, Fields: fields}, nil
}
