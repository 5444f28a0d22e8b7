package habit

import "time"

// StartOfDay 将时间截断到当日零点，保留原始时区
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey 返回日粒度的规范表示，用于跨时区的同日比较
func DayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay 判断两个时间是否落在同一个日历日
func SameDay(a, b time.Time) bool {
	return DayKey(a).Equal(DayKey(b))
}

// DaysLeftInYear 计算从 t 所在日到次年 1 月 1 日之间的天数
func DaysLeftInYear(t time.Time) int {
	current := DayKey(t)
	startOfNextYear := time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(startOfNextYear.Sub(current).Hours() / 24)
}
