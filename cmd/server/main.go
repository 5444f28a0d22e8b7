package main

import (
	"log"

	"github.com/elliotrap/Widgeme/internal/config"
	"github.com/elliotrap/Widgeme/internal/db"
	"github.com/elliotrap/Widgeme/internal/handler"
	"github.com/elliotrap/Widgeme/internal/router"
	"github.com/elliotrap/Widgeme/internal/service"
	"github.com/elliotrap/Widgeme/internal/store"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 按需创建超级管理员账号
	if err := db.EnsureUser(cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		log.Fatalf("failed to ensure root user: %v", err)
	}

	// 组装记录库、核心引擎与路由
	recordStore := store.NewSQLiteStore(db.DB)
	tracker := service.NewHabitTracker(recordStore, recordStore)
	defer tracker.Close()

	api := handler.NewAPI(tracker)
	r := router.SetupRouter(api, cfg.SessionSecret)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
