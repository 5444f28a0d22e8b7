package store

import (
	"errors"
	"fmt"
)

// 记录类型名，对应远端记录库的两类 schema
const (
	KindHabit  = "PositiveHabit"
	KindRecord = "HabitRecord"
)

// Habit 记录的字段键
const (
	FieldName  = "name"
	FieldDays  = "days"
	FieldColor = "color"
)

// HabitRecord 记录的字段键
const (
	FieldHabit     = "habit"
	FieldDate      = "date"
	FieldCompleted = "completed"
)

var (
	// ErrNotFound 在目标记录不存在时返回
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable 表示记录库暂时不可达（网络/可用性问题）
	ErrUnavailable = errors.New("record store unavailable")
)

// FieldError 表示某条记录缺失或无法解码期望字段
// 调用方的约定是丢弃这一条记录，而不是让整批查询失败
type FieldError struct {
	Kind  string
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s record missing field %q", e.Kind, e.Field)
}

// Record 是记录库中一条记录的通用表示
type Record struct {
	ID     string
	Kind   string
	Fields Fields
}

// Predicate 描述查询过滤条件，仅支持匹配全部或单字段等值
type Predicate struct {
	field string
	value any
	all   bool
}

// MatchAll 返回恒真谓词，用于全量拉取
func MatchAll() Predicate {
	return Predicate{all: true}
}

// FieldEquals 返回按字段等值过滤的谓词
func FieldEquals(field string, value any) Predicate {
	return Predicate{field: field, value: value}
}

// Matches 判断一条记录的字段是否满足谓词
func (p Predicate) Matches(f Fields) bool {
	if p.all {
		return true
	}
	got, ok := f[p.field]
	if !ok {
		return false
	}
	return fmt.Sprint(got) == fmt.Sprint(p.value)
}

// RecordStore 抽象远端记录库的增删改查与谓词查询
// 实现不做任何重试；查询遇到无法解析的记录时跳过该条而非整体失败
type RecordStore interface {
	Create(kind string, fields Fields) (Record, error)
	Fetch(id string) (Record, error)
	Save(rec Record) (Record, error)
	Delete(id string) error
	Query(kind string, pred Predicate) ([]Record, error)
}
