package handler

import (
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/elliotrap/Widgeme/internal/habit"
	"github.com/gin-gonic/gin"
)

const dateFormat = "2006-01-02"

type habitView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Days  int    `json:"days"`
	Color string `json:"color"`
}

type habitPayload struct {
	Name  string `json:"name"`
	Days  int    `json:"days"`
	Color string `json:"color"`
}

type renamePayload struct {
	Name string `json:"name"`
}

type markPayload struct {
	Date      string `json:"date"`
	Completed *bool  `json:"completed"`
}

type reorderPayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func viewFromHabit(h habit.Habit) habitView {
	return habitView{
		ID:    h.ID,
		Name:  h.Name,
		Days:  h.DisplayDays,
		Color: string(h.ColorTag),
	}
}

// ListHabits 拉取全部习惯并返回 JSON 列表
func (a *API) ListHabits(c *gin.Context) {
	res := <-a.tracker.FetchHabits()
	if res.Err != nil {
		respondTrackerError(c, res.Err, "获取习惯列表失败")
		return
	}

	views := make([]habitView, 0, len(res.Habits))
	for _, h := range res.Habits {
		views = append(views, viewFromHabit(h))
	}
	c.JSON(http.StatusOK, gin.H{"habits": views})
}

// CreateHabit 新建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	res := <-a.tracker.AddHabit(payload.Name, payload.Days, habit.ParseColor(payload.Color))
	if res.Err != nil {
		respondTrackerError(c, res.Err, "创建习惯失败")
		return
	}

	c.JSON(http.StatusCreated, viewFromHabit(res.Habit))
}

// UpdateHabit 重命名习惯，其余字段保持缓存中的旧值
func (a *API) UpdateHabit(c *gin.Context) {
	h, ok := a.tracker.HabitByID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "习惯不存在")
		return
	}

	var payload renamePayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	res := <-a.tracker.Rename(h, payload.Name)
	if res.Err != nil {
		respondTrackerError(c, res.Err, "更新习惯失败")
		return
	}

	c.JSON(http.StatusOK, viewFromHabit(res.Habit))
}

// DeleteHabit 删除习惯及其打卡记录
// 响应在习惯删除确认后立即返回；关联记录的远端清理在后台继续
func (a *API) DeleteHabit(c *gin.Context) {
	h, ok := a.tracker.HabitByID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "习惯不存在")
		return
	}

	res := <-a.tracker.Delete(h)
	if res.Err != nil {
		respondTrackerError(c, res.Err, "删除习惯失败")
		return
	}

	go func() {
		if err := <-res.Cleanup; err != nil {
			log.Printf("cleanup records for habit %s: %v", h.ID, err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ReorderHabits 调整习惯的本地展示顺序，不写远端
func (a *API) ReorderHabits(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	a.tracker.Move(payload.From, payload.To)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MarkHabit 为习惯打卡，日期缺省为今天
// 同一天重复打卡会各自生成记录，统计口径按日去重
func (a *API) MarkHabit(c *gin.Context) {
	h, ok := a.tracker.HabitByID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "习惯不存在")
		return
	}

	var payload markPayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	day := time.Now()
	if payload.Date != "" {
		parsed, err := time.ParseInLocation(dateFormat, payload.Date, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "日期格式错误")
			return
		}
		day = parsed
	}

	completed := true
	if payload.Completed != nil {
		completed = *payload.Completed
	}

	res := <-a.tracker.Mark(h, day, completed)
	if res.Err != nil {
		respondTrackerError(c, res.Err, "打卡失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        res.Record.ID,
		"habit_id":  res.Record.HabitID,
		"date":      res.Record.Day.Format(dateFormat),
		"completed": res.Record.Completed,
	})
}

// HabitStats 返回习惯的连击与日历窗口数据
func (a *API) HabitStats(c *gin.Context) {
	h, ok := a.tracker.HabitByID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "习惯不存在")
		return
	}

	if res := <-a.tracker.FetchRecordsFor(h); res.Err != nil {
		respondTrackerError(c, res.Err, "获取打卡记录失败")
		return
	}

	dates := a.tracker.CompletionDates(h)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format(dateFormat))
	}

	c.JSON(http.StatusOK, gin.H{
		"habit":            viewFromHabit(h),
		"current_streak":   a.tracker.CurrentStreak(h),
		"longest_streak":   a.tracker.LongestStreak(h),
		"completion_dates": formatted,
		"grid":             a.tracker.Grid(h, h.DisplayDays),
	})
}
