package service

import (
	"sort"
	"time"

	"github.com/elliotrap/Widgeme/internal/habit"
)

// CurrentStreak 计算截止到 today 的连续打卡天数
// 游标从今天开始逐日回退：命中则计数，出现缺口立即停止；
// 位于游标之后的日期（重复或未来记录）跳过不计。
// 今天没有打卡时结果为 0，即使昨天是连续的——这是有意的策略。
func CurrentStreak(days []time.Time, today time.Time) int {
	sorted := make([]time.Time, 0, len(days))
	for _, d := range days {
		sorted = append(sorted, habit.DayKey(d))
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	streak := 0
	cursor := habit.DayKey(today)
	for _, day := range sorted {
		switch {
		case day.Equal(cursor):
			streak++
			cursor = cursor.AddDate(0, 0, -1)
		case day.Before(cursor):
			return streak
		}
	}
	return streak
}

// LongestStreak 计算历史上最长的连续打卡天数
// 按日去重后升序扫描，相邻两天间隔恰好一天时延长当前连击
func LongestStreak(days []time.Time) int {
	uniq := dedupeDays(days)
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].Before(uniq[j]) })

	longest := 0
	current := 0
	var prev time.Time
	for i, day := range uniq {
		if i > 0 && prev.AddDate(0, 0, 1).Equal(day) {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
		prev = day
	}
	return longest
}

// CompletionGrid 生成以 today 结尾、长度为 n 的打卡布尔序列
// 纯函数，不持有任何状态，可随打卡集合变化反复调用
func CompletionGrid(days []time.Time, n int, today time.Time) []bool {
	if n <= 0 {
		return nil
	}

	marked := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		marked[habit.DayKey(d)] = struct{}{}
	}

	grid := make([]bool, n)
	start := habit.DayKey(today).AddDate(0, 0, -(n - 1))
	for i := range grid {
		_, grid[i] = marked[start.AddDate(0, 0, i)]
	}
	return grid
}

func dedupeDays(days []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(days))
	uniq := make([]time.Time, 0, len(days))
	for _, d := range days {
		key := habit.DayKey(d)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		uniq = append(uniq, key)
	}
	return uniq
}
