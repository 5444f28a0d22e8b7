package service

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/elliotrap/Widgeme/internal/habit"
	"github.com/elliotrap/Widgeme/internal/store"
)

// ErrAccountUnavailable 在账户前置检查失败时返回
// 此时不会发起任何远端调用
var ErrAccountUnavailable = errors.New("account unavailable")

// AccountChecker 是同步前的账户可用性前置检查
type AccountChecker interface {
	Available() bool
}

// AccountCheckerFunc 将普通函数适配为 AccountChecker
type AccountCheckerFunc func() bool

// Available 实现 AccountChecker
func (f AccountCheckerFunc) Available() bool { return f() }

// ChangeKind 枚举缓存变更的类型
type ChangeKind int

const (
	HabitsReplaced ChangeKind = iota + 1
	HabitAdded
	HabitRenamed
	HabitRemoved
	HabitsReordered
	RecordsReplaced
	RecordAdded
)

// Change 描述一次缓存变更，发给订阅者
type Change struct {
	Kind   ChangeKind
	Habit  habit.Habit
	Record habit.CompletionRecord
}

// HabitResult 是涉及单个习惯的异步操作结果
type HabitResult struct {
	Habit habit.Habit
	Err   error
}

// HabitsResult 是习惯列表拉取的异步结果
type HabitsResult struct {
	Habits []habit.Habit
	Err    error
}

// RecordResult 是单条打卡的异步结果
type RecordResult struct {
	Record habit.CompletionRecord
	Err    error
}

// RecordsResult 是打卡记录拉取的异步结果
type RecordsResult struct {
	Records []habit.CompletionRecord
	Err     error
}

// DeleteResult 是删除习惯的两阶段结果
// 结果本身在习惯删除确认、缓存清理完成后送达；
// Cleanup 在关联打卡记录的远端删除结束后送达，可能携带失败
type DeleteResult struct {
	Err     error
	Cleanup <-chan error
}

// HabitTracker 是核心引擎：独占持有习惯与打卡记录的内存缓存，
// 封装对远端记录库的异步操作，并派生连击等统计数据。
//
// 并发约束：缓存只在内部唯一的事件循环 goroutine 上被读写；
// 远端 I/O 在各操作自己的 goroutine 上进行，确认成功后把缓存
// 变更闭包派发回事件循环。缓存永远不会被两个上下文并发修改。
//
// 背靠背发起的两次异步操作之间没有先后保证，需要顺序的调用方
// 必须等第一个结果送达后再发起第二个。
type HabitTracker struct {
	adapter *StoreAdapter
	account AccountChecker
	now     func() time.Time

	calls chan func()
	quit  chan struct{}
	stop  sync.Once

	// 以下字段仅允许在事件循环 goroutine 上访问
	habits  []habit.Habit
	records []habit.CompletionRecord
	subs    map[int]func(Change)
	nextSub int
}

// NewHabitTracker 构造引擎并启动缓存事件循环
func NewHabitTracker(rs store.RecordStore, account AccountChecker) *HabitTracker {
	t := &HabitTracker{
		adapter: NewStoreAdapter(rs),
		account: account,
		now:     time.Now,
		calls:   make(chan func()),
		quit:    make(chan struct{}),
		subs:    make(map[int]func(Change)),
	}
	go t.loop()
	return t
}

// Close 停止事件循环，之后的操作不再生效
func (t *HabitTracker) Close() {
	t.stop.Do(func() { close(t.quit) })
}

func (t *HabitTracker) loop() {
	for {
		select {
		case fn := <-t.calls:
			fn()
		case <-t.quit:
			return
		}
	}
}

// run 在事件循环 goroutine 上执行 fn 并等待完成
func (t *HabitTracker) run(fn func()) {
	done := make(chan struct{})
	select {
	case t.calls <- func() { fn(); close(done) }:
		<-done
	case <-t.quit:
	}
}

func (t *HabitTracker) notify(change Change) {
	for _, fn := range t.subs {
		fn(change)
	}
}

// Subscribe 注册缓存变更回调，返回取消函数
// 回调在事件循环 goroutine 上执行，期间不得再调用 Tracker 的阻塞方法
func (t *HabitTracker) Subscribe(fn func(Change)) (cancel func()) {
	var id int
	t.run(func() {
		id = t.nextSub
		t.nextSub++
		t.subs[id] = fn
	})
	return func() {
		t.run(func() { delete(t.subs, id) })
	}
}

func (t *HabitTracker) accountGate() error {
	if t.account != nil && !t.account.Available() {
		return ErrAccountUnavailable
	}
	return nil
}

// AddHabit 在远端创建习惯；确认成功后追加到缓存末尾
// 失败时缓存保持原样，错误通过结果通道送达
func (t *HabitTracker) AddHabit(name string, displayDays int, color habit.Color) <-chan HabitResult {
	out := make(chan HabitResult, 1)
	if err := t.accountGate(); err != nil {
		out <- HabitResult{Err: err}
		return out
	}

	go func() {
		h, err := t.adapter.CreateHabit(name, displayDays, color)
		if err != nil {
			out <- HabitResult{Err: err}
			return
		}
		t.run(func() {
			t.habits = append(t.habits, h)
			t.notify(Change{Kind: HabitAdded, Habit: h})
		})
		out <- HabitResult{Habit: h}
	}()
	return out
}

// Mark 为习惯写入某一天的打卡记录
// 不检查同日是否已有记录，重复打卡在数据层被容忍
func (t *HabitTracker) Mark(h habit.Habit, day time.Time, completed bool) <-chan RecordResult {
	out := make(chan RecordResult, 1)
	if err := t.accountGate(); err != nil {
		out <- RecordResult{Err: err}
		return out
	}

	go func() {
		rec, err := t.adapter.CreateCompletion(h.ID, day, completed)
		if err != nil {
			out <- RecordResult{Err: err}
			return
		}
		t.run(func() {
			t.records = append(t.records, rec)
			t.notify(Change{Kind: RecordAdded, Record: rec})
		})
		out <- RecordResult{Record: rec}
	}()
	return out
}

// FetchHabits 拉取全部习惯并整体替换缓存
// 顺序以查询返回为准，不承诺任何排序
func (t *HabitTracker) FetchHabits() <-chan HabitsResult {
	out := make(chan HabitsResult, 1)
	if err := t.accountGate(); err != nil {
		out <- HabitsResult{Err: err}
		return out
	}

	go func() {
		habits, err := t.adapter.QueryHabits()
		if err != nil {
			out <- HabitsResult{Err: err}
			return
		}
		t.run(func() {
			t.habits = habits
			t.notify(Change{Kind: HabitsReplaced})
		})
		out <- HabitsResult{Habits: slices.Clone(habits)}
	}()
	return out
}

// FetchRecordsFor 拉取单个习惯的打卡记录，并用其整体替换记录缓存
// 注意：缓存此后只包含这个习惯的记录；需要全量数据的调用方
// 应使用 FetchAllRecords
func (t *HabitTracker) FetchRecordsFor(h habit.Habit) <-chan RecordsResult {
	out := make(chan RecordsResult, 1)
	if err := t.accountGate(); err != nil {
		out <- RecordsResult{Err: err}
		return out
	}

	go func() {
		records, err := t.adapter.QueryCompletionsFor(h.ID)
		if err != nil {
			out <- RecordsResult{Err: err}
			return
		}
		t.run(func() {
			t.records = records
			t.notify(Change{Kind: RecordsReplaced})
		})
		out <- RecordsResult{Records: slices.Clone(records)}
	}()
	return out
}

// FetchAllRecords 拉取所有习惯的打卡记录并整体替换缓存
func (t *HabitTracker) FetchAllRecords() <-chan RecordsResult {
	out := make(chan RecordsResult, 1)
	if err := t.accountGate(); err != nil {
		out <- RecordsResult{Err: err}
		return out
	}

	go func() {
		records, err := t.adapter.QueryAllCompletions()
		if err != nil {
			out <- RecordsResult{Err: err}
			return
		}
		t.run(func() {
			t.records = records
			t.notify(Change{Kind: RecordsReplaced})
		})
		out <- RecordsResult{Records: slices.Clone(records)}
	}()
	return out
}

// Rename 更新习惯名称
// 远端采用先读后写；缓存侧只替换名称，DisplayDays 与 ColorTag
// 沿用之前缓存中的值，避免额外一次远端往返
func (t *HabitTracker) Rename(h habit.Habit, newName string) <-chan HabitResult {
	out := make(chan HabitResult, 1)
	if err := t.accountGate(); err != nil {
		out <- HabitResult{Err: err}
		return out
	}

	go func() {
		if err := t.adapter.RenameHabit(h.ID, newName); err != nil {
			out <- HabitResult{Err: err}
			return
		}
		updated := h
		t.run(func() {
			for i := range t.habits {
				if t.habits[i].ID != h.ID {
					continue
				}
				updated = t.habits[i]
				updated.Name = newName
				t.habits[i] = updated
				t.notify(Change{Kind: HabitRenamed, Habit: updated})
				break
			}
		})
		out <- HabitResult{Habit: updated}
	}()
	return out
}

// Delete 删除习惯及其全部打卡记录
// 习惯删除确认后立即清理缓存（含该习惯的记录）并送达结果；
// 关联记录的远端删除独立进行，其结果通过 Cleanup 通道送达。
// 两步之间没有事务保证，后一步失败会在远端留下孤儿记录。
func (t *HabitTracker) Delete(h habit.Habit) <-chan DeleteResult {
	out := make(chan DeleteResult, 1)
	if err := t.accountGate(); err != nil {
		out <- DeleteResult{Err: err}
		return out
	}

	go func() {
		if err := t.adapter.DeleteHabit(h.ID); err != nil {
			out <- DeleteResult{Err: err}
			return
		}

		t.run(func() {
			t.habits = slices.DeleteFunc(t.habits, func(cached habit.Habit) bool {
				return cached.ID == h.ID
			})
			t.records = slices.DeleteFunc(t.records, func(rec habit.CompletionRecord) bool {
				return rec.HabitID == h.ID
			})
			t.notify(Change{Kind: HabitRemoved, Habit: h})
		})

		cleanup := make(chan error, 1)
		go func() {
			cleanup <- t.adapter.DeleteCompletionsFor(h.ID)
		}()
		out <- DeleteResult{Cleanup: cleanup}
	}()
	return out
}

// Move 调整习惯在缓存中的位置
// 仅影响本地展示顺序，永远不会同步到远端
func (t *HabitTracker) Move(from, to int) {
	t.run(func() {
		if from < 0 || from >= len(t.habits) || to < 0 || to >= len(t.habits) || from == to {
			return
		}
		h := t.habits[from]
		t.habits = slices.Delete(t.habits, from, from+1)
		t.habits = slices.Insert(t.habits, to, h)
		t.notify(Change{Kind: HabitsReordered})
	})
}

// Habits 返回习惯缓存的快照
func (t *HabitTracker) Habits() []habit.Habit {
	var out []habit.Habit
	t.run(func() { out = slices.Clone(t.habits) })
	return out
}

// Records 返回打卡记录缓存的快照
func (t *HabitTracker) Records() []habit.CompletionRecord {
	var out []habit.CompletionRecord
	t.run(func() { out = slices.Clone(t.records) })
	return out
}

// HabitByID 在缓存中按 ID 查找习惯
func (t *HabitTracker) HabitByID(id string) (habit.Habit, bool) {
	var found habit.Habit
	var ok bool
	t.run(func() {
		for _, h := range t.habits {
			if h.ID == id {
				found = h
				ok = true
				return
			}
		}
	})
	return found, ok
}

// CompletionDates 返回习惯的打卡日期集合
// 只统计 completed 为真的记录，按日去重，顺序不作保证
func (t *HabitTracker) CompletionDates(h habit.Habit) []time.Time {
	var days []time.Time
	t.run(func() {
		for _, rec := range t.records {
			if rec.HabitID == h.ID && rec.Completed {
				days = append(days, rec.Day)
			}
		}
	})
	return dedupeDays(days)
}

// CurrentStreak 返回习惯截至今天的连续打卡天数
func (t *HabitTracker) CurrentStreak(h habit.Habit) int {
	return CurrentStreak(t.CompletionDates(h), t.now())
}

// LongestStreak 返回习惯历史最长连击
func (t *HabitTracker) LongestStreak(h habit.Habit) int {
	return LongestStreak(t.CompletionDates(h))
}

// Grid 返回以今天结尾、长度为 n 的打卡布尔序列
func (t *HabitTracker) Grid(h habit.Habit, n int) []bool {
	return CompletionGrid(t.CompletionDates(h), n, t.now())
}
