package router

import (
	"github.com/elliotrap/Widgeme/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("widgeme_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 小组件信息流：只读，无需登录
	widgets := r.Group("/api/widgets")
	{
		widgets.GET("/days-left", api.WidgetDaysLeft)
		widgets.GET("/streak", api.WidgetStreak)
		widgets.GET("/progress", api.WidgetProgress)
		widgets.GET("/counts", api.WidgetCounts)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/login", handler.Login)
		admin.GET("/logout", handler.Logout)

		// 需要认证的后台路由
		auth := admin.Group("/api")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/habits", api.ListHabits)
			auth.POST("/habits", api.CreateHabit)
			auth.POST("/habits/reorder", api.ReorderHabits)
			auth.PUT("/habits/:id", api.UpdateHabit)
			auth.DELETE("/habits/:id", api.DeleteHabit)
			auth.POST("/habits/:id/logs", api.MarkHabit)
			auth.GET("/habits/:id/stats", api.HabitStats)
		}
	}

	return r
}
