package handler

import (
	"net/http"
	"time"

	"github.com/elliotrap/Widgeme/internal/widget"
	"github.com/gin-gonic/gin"
)

// 小组件信息流：只读轮询接口，由客户端按刷新时间表驱动
// 空习惯列表返回占位数据，绝不报 404

// WidgetDaysLeft 返回年底倒计时组件数据，次日零点刷新
func (a *API) WidgetDaysLeft(c *gin.Context) {
	entry, nextRefresh := widget.DaysLeftTimeline(time.Now())
	c.JSON(http.StatusOK, gin.H{
		"days_left":    entry.DaysLeft,
		"date":         entry.Date.Format(dateFormat),
		"next_refresh": nextRefresh.Format(time.RFC3339),
	})
}

// WidgetStreak 返回第一个习惯的连击组件数据
func (a *API) WidgetStreak(c *gin.Context) {
	entry, nextRefresh, err := a.widgets.StreakTimeline()
	if err != nil {
		respondTrackerError(c, err, "获取连击数据失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit_name":   entry.HabitName,
		"streak":       entry.Streak,
		"placeholder":  entry.Placeholder,
		"next_refresh": nextRefresh.Format(time.RFC3339),
	})
}

// WidgetProgress 返回第一个习惯最近一周的打卡格
func (a *API) WidgetProgress(c *gin.Context) {
	entry, nextRefresh, err := a.widgets.ProgressTimeline()
	if err != nil {
		respondTrackerError(c, err, "获取打卡格数据失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit_name":   entry.HabitName,
		"days":         entry.Days,
		"placeholder":  entry.Placeholder,
		"next_refresh": nextRefresh.Format(time.RFC3339),
	})
}

// WidgetCounts 返回各习惯的累计打卡天数
func (a *API) WidgetCounts(c *gin.Context) {
	entry, nextRefresh, err := a.widgets.CountsTimeline()
	if err != nil {
		respondTrackerError(c, err, "获取打卡总数失败")
		return
	}

	counts := make([]gin.H, 0, len(entry.Counts))
	for _, item := range entry.Counts {
		counts = append(counts, gin.H{"name": item.Name, "count": item.Count})
	}

	c.JSON(http.StatusOK, gin.H{
		"counts":       counts,
		"next_refresh": nextRefresh.Format(time.RFC3339),
	})
}
