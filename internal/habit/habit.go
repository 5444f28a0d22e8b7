package habit

import (
	"strings"
	"time"
)

// Color 表示习惯的显示颜色标签
// 仅允许固定的六种取值，未识别的输入统一回退到绿色
type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
)

// DefaultColor 是未指定或无法识别颜色时的回退值
const DefaultColor = ColorGreen

// Colors 返回全部可选颜色，顺序与客户端选择器一致
func Colors() []Color {
	return []Color{ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple}
}

// ParseColor 将任意字符串解析为合法颜色，大小写不敏感
func ParseColor(name string) Color {
	switch Color(normalizeColorName(name)) {
	case ColorRed:
		return ColorRed
	case ColorOrange:
		return ColorOrange
	case ColorYellow:
		return ColorYellow
	case ColorBlue:
		return ColorBlue
	case ColorPurple:
		return ColorPurple
	default:
		return DefaultColor
	}
}

func normalizeColorName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// 日历窗口大小的默认值与合法区间
const (
	DefaultDisplayDays = 28
	MinDisplayDays     = 1
	MaxDisplayDays     = 90
)

// ClampDisplayDays 将窗口天数收敛到合法区间
// 非正数视为未指定，取默认值
func ClampDisplayDays(days int) int {
	if days <= 0 {
		return DefaultDisplayDays
	}
	if days > MaxDisplayDays {
		return MaxDisplayDays
	}
	return days
}

// Habit 表示一个用户定义的习惯
// ID 由远端记录库在创建时分配，此后不可变
type Habit struct {
	ID          string
	Name        string
	DisplayDays int
	ColorTag    Color
}

// CompletionRecord 表示某个习惯在某一天的打卡标记
// Day 始终被截断到日粒度；Completed 实际写入时恒为 true，
// 但读取路径不得依赖这一点
type CompletionRecord struct {
	ID        string
	HabitID   string
	Day       time.Time
	Completed bool
}
