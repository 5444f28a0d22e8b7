package main

import (
	"fmt"
	"log"
	"time"

	"github.com/elliotrap/Widgeme/internal/config"
	"github.com/elliotrap/Widgeme/internal/db"
	"github.com/elliotrap/Widgeme/internal/habit"
	"github.com/elliotrap/Widgeme/internal/service"
	"github.com/elliotrap/Widgeme/internal/store"
)

// 演示数据生成器：创建几个习惯并补齐最近的打卡历史
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	recordStore := store.NewSQLiteStore(db.DB)
	tracker := service.NewHabitTracker(recordStore, recordStore)
	defer tracker.Close()

	fmt.Println("开始生成演示数据...")

	seeds := []struct {
		name    string
		days    int
		color   habit.Color
		history []int // 距今天数的偏移，0 表示今天
	}{
		{"晨跑", 28, habit.ColorOrange, []int{0, 1, 2, 3, 5, 6}},
		{"冥想", 14, habit.ColorBlue, []int{0, 1, 2}},
		{"阅读", 56, habit.ColorGreen, []int{1, 2, 4, 7, 8, 9}},
	}

	today := time.Now()
	for _, seed := range seeds {
		res := <-tracker.AddHabit(seed.name, seed.days, seed.color)
		if res.Err != nil {
			log.Fatalf("创建习惯 %s 失败: %v", seed.name, res.Err)
		}

		for _, offset := range seed.history {
			day := today.AddDate(0, 0, -offset)
			if mark := <-tracker.Mark(res.Habit, day, true); mark.Err != nil {
				log.Fatalf("打卡失败 %s %s: %v", seed.name, day.Format("2006-01-02"), mark.Err)
			}
		}

		fmt.Printf("已创建习惯 %s（%d 条打卡）\n", seed.name, len(seed.history))
	}

	fmt.Println("演示数据生成完成")
}
