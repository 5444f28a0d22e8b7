// Package widget 提供桌面小组件的时间线数据
// 所有 Provider 都是 Tracker 的只读消费者：按外部驱动的刷新节奏
// 轮询数据，绝不修改缓存，并且在没有任何习惯时渲染占位内容。
package widget

import (
	"time"

	"github.com/elliotrap/Widgeme/internal/habit"
	"github.com/elliotrap/Widgeme/internal/service"
)

// 占位习惯名，原生客户端在空列表时展示同样的示例
const placeholderHabitName = "Meditation"

// DaysLeftEntry 是"年底倒计时"组件的单条时间线数据
type DaysLeftEntry struct {
	Date     time.Time
	DaysLeft int
}

// DaysLeftTimeline 计算年底倒计时及下一次刷新时间（次日零点）
// 不依赖任何远端数据，可独立于 Tracker 使用
func DaysLeftTimeline(now time.Time) (DaysLeftEntry, time.Time) {
	entry := DaysLeftEntry{Date: now, DaysLeft: habit.DaysLeftInYear(now)}
	nextRefresh := habit.StartOfDay(now).AddDate(0, 0, 1)
	return entry, nextRefresh
}

// StreakEntry 是连击组件的时间线数据
type StreakEntry struct {
	Date        time.Time
	HabitName   string
	Streak      int
	Placeholder bool
}

// ProgressEntry 是最近一周打卡格的时间线数据
type ProgressEntry struct {
	Date        time.Time
	HabitName   string
	Days        []bool
	Placeholder bool
}

// HabitCount 表示单个习惯的累计打卡天数
type HabitCount struct {
	Name  string
	Count int
}

// CountsEntry 是打卡总数组件的时间线数据
type CountsEntry struct {
	Date   time.Time
	Counts []HabitCount
}

// Provider 基于 Tracker 计算各组件的时间线
type Provider struct {
	tracker *service.HabitTracker
	now     func() time.Time
}

// NewProvider 构造 Provider
func NewProvider(tracker *service.HabitTracker) *Provider {
	return &Provider{tracker: tracker, now: time.Now}
}

// StreakTimeline 返回第一个习惯的当前连击，每小时刷新
// 没有习惯时返回占位条目，不报错也不崩溃
func (p *Provider) StreakTimeline() (StreakEntry, time.Time, error) {
	now := p.now()
	nextRefresh := now.Add(time.Hour)

	res := <-p.tracker.FetchHabits()
	if res.Err != nil {
		return StreakEntry{}, nextRefresh, res.Err
	}
	if len(res.Habits) == 0 {
		return StreakEntry{Date: now, HabitName: placeholderHabitName, Placeholder: true}, nextRefresh, nil
	}

	first := res.Habits[0]
	if recs := <-p.tracker.FetchRecordsFor(first); recs.Err != nil {
		return StreakEntry{}, nextRefresh, recs.Err
	}

	entry := StreakEntry{
		Date:      now,
		HabitName: first.Name,
		Streak:    p.tracker.CurrentStreak(first),
	}
	return entry, nextRefresh, nil
}

// ProgressTimeline 返回第一个习惯最近 7 天的打卡格，每小时刷新
func (p *Provider) ProgressTimeline() (ProgressEntry, time.Time, error) {
	now := p.now()
	nextRefresh := now.Add(time.Hour)

	res := <-p.tracker.FetchHabits()
	if res.Err != nil {
		return ProgressEntry{}, nextRefresh, res.Err
	}
	if len(res.Habits) == 0 {
		entry := ProgressEntry{
			Date:        now,
			HabitName:   placeholderHabitName,
			Days:        make([]bool, 7),
			Placeholder: true,
		}
		return entry, nextRefresh, nil
	}

	first := res.Habits[0]
	if recs := <-p.tracker.FetchRecordsFor(first); recs.Err != nil {
		return ProgressEntry{}, nextRefresh, recs.Err
	}

	entry := ProgressEntry{
		Date:      now,
		HabitName: first.Name,
		Days:      service.CompletionGrid(p.tracker.CompletionDates(first), 7, now),
	}
	return entry, nextRefresh, nil
}

// CountsTimeline 返回每个习惯的累计打卡天数，每小时刷新
// 两次拉取显式串联：先等习惯列表落地，再拉全量打卡记录
func (p *Provider) CountsTimeline() (CountsEntry, time.Time, error) {
	now := p.now()
	nextRefresh := now.Add(time.Hour)

	habitsRes := <-p.tracker.FetchHabits()
	if habitsRes.Err != nil {
		return CountsEntry{}, nextRefresh, habitsRes.Err
	}

	if recordsRes := <-p.tracker.FetchAllRecords(); recordsRes.Err != nil {
		return CountsEntry{}, nextRefresh, recordsRes.Err
	}

	counts := make([]HabitCount, 0, len(habitsRes.Habits))
	for _, h := range habitsRes.Habits {
		counts = append(counts, HabitCount{
			Name:  h.Name,
			Count: len(p.tracker.CompletionDates(h)),
		})
	}
	return CountsEntry{Date: now, Counts: counts}, nextRefresh, nil
}
