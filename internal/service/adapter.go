package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elliotrap/Widgeme/internal/habit"
	"github.com/elliotrap/Widgeme/internal/store"
)

// ErrHabitNameRequired 在习惯名称为空时返回
var ErrHabitNameRequired = errors.New("habit name is required")

// StoreAdapter 负责领域实体与记录库通用字段表示之间的转换
// 自身不做重试；查询解码失败的记录按单条丢弃处理
type StoreAdapter struct {
	store store.RecordStore
}

// NewStoreAdapter 构造 StoreAdapter
func NewStoreAdapter(rs store.RecordStore) *StoreAdapter {
	return &StoreAdapter{store: rs}
}

// CreateHabit 在记录库中创建习惯并返回带存储层 ID 的实体
func (a *StoreAdapter) CreateHabit(name string, displayDays int, color habit.Color) (habit.Habit, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return habit.Habit{}, ErrHabitNameRequired
	}

	days := habit.ClampDisplayDays(displayDays)
	rec, err := a.store.Create(store.KindHabit, store.Fields{
		store.FieldName:  trimmed,
		store.FieldDays:  days,
		store.FieldColor: string(color),
	})
	if err != nil {
		return habit.Habit{}, fmt.Errorf("create habit: %w", err)
	}

	return habit.Habit{
		ID:          rec.ID,
		Name:        trimmed,
		DisplayDays: days,
		ColorTag:    color,
	}, nil
}

// CreateCompletion 写入一条打卡记录，日期截断到日粒度
// 不检查同日重复，数据层允许重复标记
func (a *StoreAdapter) CreateCompletion(habitID string, day time.Time, completed bool) (habit.CompletionRecord, error) {
	normalized := habit.StartOfDay(day)
	rec, err := a.store.Create(store.KindRecord, store.Fields{
		store.FieldHabit:     habitID,
		store.FieldDate:      normalized.Format(time.RFC3339),
		store.FieldCompleted: completed,
	})
	if err != nil {
		return habit.CompletionRecord{}, fmt.Errorf("create completion: %w", err)
	}

	return habit.CompletionRecord{
		ID:        rec.ID,
		HabitID:   habitID,
		Day:       normalized,
		Completed: completed,
	}, nil
}

// RenameHabit 采用先读后写的方式只更新名称字段，避免覆盖其他字段
func (a *StoreAdapter) RenameHabit(id, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrHabitNameRequired
	}

	rec, err := a.store.Fetch(id)
	if err != nil {
		return fmt.Errorf("fetch habit: %w", err)
	}

	rec.Fields = rec.Fields.Clone()
	rec.Fields[store.FieldName] = trimmed
	if _, err := a.store.Save(rec); err != nil {
		return fmt.Errorf("save habit: %w", err)
	}
	return nil
}

// DeleteHabit 删除习惯记录本身，不处理其打卡记录
func (a *StoreAdapter) DeleteHabit(id string) error {
	if err := a.store.Delete(id); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

// DeleteCompletionsFor 查询并删除指向某习惯的全部打卡记录
// 与习惯本身的删除是两次独立的远端操作，不具备事务性
func (a *StoreAdapter) DeleteCompletionsFor(habitID string) error {
	recs, err := a.store.Query(store.KindRecord, store.FieldEquals(store.FieldHabit, habitID))
	if err != nil {
		return fmt.Errorf("query completions: %w", err)
	}

	for _, rec := range recs {
		if err := a.store.Delete(rec.ID); err != nil {
			return fmt.Errorf("delete completion %s: %w", rec.ID, err)
		}
	}
	return nil
}

// QueryHabits 拉取全部习惯，解码失败的记录被丢弃
func (a *StoreAdapter) QueryHabits() ([]habit.Habit, error) {
	recs, err := a.store.Query(store.KindHabit, store.MatchAll())
	if err != nil {
		return nil, fmt.Errorf("query habits: %w", err)
	}

	habits := make([]habit.Habit, 0, len(recs))
	for _, rec := range recs {
		h, err := decodeHabit(rec)
		if err != nil {
			continue
		}
		habits = append(habits, h)
	}
	return habits, nil
}

// QueryCompletionsFor 拉取某习惯的打卡记录
// 记录的习惯引用直接取自入参，而非记录自身的字段
func (a *StoreAdapter) QueryCompletionsFor(habitID string) ([]habit.CompletionRecord, error) {
	recs, err := a.store.Query(store.KindRecord, store.FieldEquals(store.FieldHabit, habitID))
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}

	records := make([]habit.CompletionRecord, 0, len(recs))
	for _, rec := range recs {
		r, err := decodeCompletion(rec, habitID)
		if err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// QueryAllCompletions 拉取全部打卡记录，并从记录字段解析习惯引用
func (a *StoreAdapter) QueryAllCompletions() ([]habit.CompletionRecord, error) {
	recs, err := a.store.Query(store.KindRecord, store.MatchAll())
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}

	records := make([]habit.CompletionRecord, 0, len(recs))
	for _, rec := range recs {
		r, err := decodeCompletion(rec, "")
		if err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func decodeHabit(rec store.Record) (habit.Habit, error) {
	name, ok := rec.Fields.String(store.FieldName)
	if !ok || strings.TrimSpace(name) == "" {
		return habit.Habit{}, &store.FieldError{Kind: rec.Kind, Field: store.FieldName}
	}

	days, ok := rec.Fields.Int(store.FieldDays)
	if !ok {
		days = habit.DefaultDisplayDays
	}

	color, _ := rec.Fields.String(store.FieldColor)

	return habit.Habit{
		ID:          rec.ID,
		Name:        name,
		DisplayDays: habit.ClampDisplayDays(days),
		ColorTag:    habit.ParseColor(color),
	}, nil
}

// decodeCompletion 解析打卡记录；habitID 非空时沿用调用方给定的引用，
// 为空时要求记录自身携带合法的习惯引用字段
func decodeCompletion(rec store.Record, habitID string) (habit.CompletionRecord, error) {
	day, ok := rec.Fields.Time(store.FieldDate)
	if !ok {
		return habit.CompletionRecord{}, &store.FieldError{Kind: rec.Kind, Field: store.FieldDate}
	}

	completed, ok := rec.Fields.Bool(store.FieldCompleted)
	if !ok {
		return habit.CompletionRecord{}, &store.FieldError{Kind: rec.Kind, Field: store.FieldCompleted}
	}

	if habitID == "" {
		ref, ok := rec.Fields.Reference(store.FieldHabit)
		if !ok {
			return habit.CompletionRecord{}, &store.FieldError{Kind: rec.Kind, Field: store.FieldHabit}
		}
		habitID = ref
	}

	return habit.CompletionRecord{
		ID:        rec.ID,
		HabitID:   habitID,
		Day:       habit.StartOfDay(day),
		Completed: completed,
	}, nil
}
