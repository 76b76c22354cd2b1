package routes

import (
	"DoneflowGo/controllers"
	"DoneflowGo/middleware"
	"DoneflowGo/services"

	"github.com/gin-gonic/gin"
)

// Deps 路由依赖的服务集合
type Deps struct {
	TaskService       *services.TaskService
	JournalService    *services.JournalService
	SettingsService   *services.SettingsService
	Scheduler         *services.Scheduler
	InternalAuthToken string
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	authController := controllers.AuthController{}
	taskController := controllers.NewTaskController(deps.TaskService)
	projectController := controllers.ProjectController{}
	noteController := controllers.NoteController{}
	journalController := controllers.NewJournalController(deps.JournalService)
	tagController := controllers.NewTagController()
	userController := controllers.NewUserController(deps.SettingsService)
	schedulerController := controllers.NewSchedulerController(deps.Scheduler, deps.JournalService)

	// 公开路由（无需认证）
	public := r.Group("/api/v1")
	{
		public.POST("/auth/test-user", authController.CreateTestUser)
	}

	// 需要认证的路由
	private := r.Group("/api/v1")
	private.Use(middleware.AuthMiddleware())
	{
		// 任务
		private.POST("/tasks", taskController.Create)
		private.GET("/tasks", taskController.List)
		private.GET("/tasks/stats", taskController.Stats)
		private.GET("/tasks/:id", taskController.Get)
		private.PUT("/tasks/:id", taskController.Update)
		private.DELETE("/tasks/:id", taskController.Delete)
		private.POST("/tasks/:id/status", taskController.UpdateStatus)
		private.POST("/tasks/:id/restart", taskController.Restart)
		private.POST("/tasks/:id/archive", taskController.Archive)
		private.POST("/tasks/:id/timer/start", taskController.StartTimer)
		private.POST("/tasks/:id/timer/pause", taskController.PauseTimer)
		private.POST("/tasks/:id/timer/stop", taskController.StopTimer)
		private.POST("/tasks/:id/recurrence", taskController.SetRecurring)
		private.POST("/tasks/:id/next-instance", taskController.GenerateNextInstance)
		private.GET("/tasks/:id/time-entries", taskController.GetTimeEntries)

		// 项目
		private.POST("/projects", projectController.Create)
		private.GET("/projects", projectController.List)
		private.POST("/projects/batch", projectController.Batch)
		private.GET("/projects/:id", projectController.Get)
		private.PUT("/projects/:id", projectController.Update)
		private.DELETE("/projects/:id", projectController.Delete)
		private.POST("/projects/:id/archive", projectController.Archive)
		private.GET("/projects/:id/stats", projectController.Stats)
		private.GET("/projects/:id/tasks", projectController.GetTasks)
		private.GET("/projects/:id/notes", projectController.GetNotes)

		// 笔记
		private.POST("/notes", noteController.Create)
		private.GET("/notes", noteController.List)
		private.GET("/notes/search", noteController.Search)
		private.GET("/notes/stats", noteController.Stats)
		private.POST("/notes/batch", noteController.Batch)
		private.GET("/notes/:id", noteController.Get)
		private.PUT("/notes/:id", noteController.Update)
		private.DELETE("/notes/:id", noteController.Delete)
		private.POST("/notes/:id/archive", noteController.Archive)
		private.POST("/notes/:id/tasks/:taskId", noteController.LinkTask)
		private.DELETE("/notes/:id/tasks/:taskId", noteController.UnlinkTask)

		// 日志
		private.POST("/journals", journalController.Create)
		private.GET("/journals", journalController.List)
		private.GET("/journals/by-date", journalController.GetByDate)
		private.POST("/journals/upsert", journalController.Upsert)
		private.GET("/journals/search", journalController.Search)
		private.GET("/journals/stats", journalController.Stats)
		private.GET("/journals/timeline", journalController.Timeline)
		private.GET("/journals/template-stats", journalController.TemplateStats)
		private.GET("/journals/writing-habits", journalController.WritingHabits)
		private.POST("/journals/auto-generate", journalController.AutoGenerate)
		private.POST("/journals/batch-delete", journalController.BatchDelete)
		private.GET("/journals/:id", journalController.Get)
		private.PUT("/journals/:id", journalController.Update)
		private.DELETE("/journals/:id", journalController.Delete)

		// 标签
		private.POST("/tags", tagController.Create)
		private.GET("/tags", tagController.List)
		private.GET("/tags/stats", tagController.Stats)
		private.POST("/tags/batch-delete", tagController.BatchDelete)
		private.GET("/tags/:id", tagController.Get)
		private.PUT("/tags/:id", tagController.Update)
		private.DELETE("/tags/:id", tagController.Delete)

		// 用户与配置
		private.GET("/user", userController.GetUser)
		private.GET("/settings", userController.GetSettings)
		private.PUT("/settings", userController.UpdateSettings)
	}

	// 管理员路由
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware(deps.SettingsService))
	{
		admin.GET("/users", userController.ListUsers)
	}

	// 内部路由组（仅限服务器内部调用）
	internal := r.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(deps.InternalAuthToken))
	{
		internal.GET("/scheduler/status", schedulerController.GetStatus)
		internal.POST("/scheduler/journal-generation", schedulerController.ExecuteJournalGeneration)
		internal.POST("/scheduler/task/:taskId", schedulerController.ExecuteTask)
	}

	// 测试路由
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
}
