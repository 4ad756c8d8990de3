package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c, repos)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		// 课程目录对游客开放，登录用户可带 mine=true 查自己的课程
		public.GET("/courses", middleware.TryAuthMiddleware(a.Config), c.course.List)
		public.GET("/courses/:id", middleware.TryAuthMiddleware(a.Config), c.course.Get)
		public.GET("/courses/slug/:slug", middleware.TryAuthMiddleware(a.Config), c.course.GetBySlug)

		// 排行榜与证书校验无需登录
		public.GET("/leaderboard", c.achievement.Leaderboard)
		public.GET("/certificates/verify/:code", c.certificate.Verify)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/profile", c.auth.UpdateProfile)

	// 选课台账
	rg.GET("/enrollments", c.enrollment.ListMine)
	rg.GET("/enrollments/stats", c.enrollment.Stats)
	rg.POST("/courses/:id/enroll", c.enrollment.Enroll)
	rg.DELETE("/courses/:id/enroll", c.enrollment.Unenroll)
	rg.GET("/courses/:id/progress", c.enrollment.GetProgress)
	rg.POST("/courses/:id/progress/recalculate", c.enrollment.Recalculate)

	// 课时学习与测验
	rg.GET("/courses/:id/lessons/:lessonId", c.lesson.Get)
	rg.POST("/courses/:id/lessons/:lessonId/complete", c.enrollment.CompleteLesson)
	rg.POST("/courses/:id/lessons/:lessonId/quiz", c.enrollment.SubmitQuiz)
	rg.POST("/courses/:id/lessons/:lessonId/quiz/retry", c.enrollment.RetryQuiz)

	// 成就与证书
	rg.GET("/badges", c.achievement.MyBadges)
	rg.GET("/certificates", c.certificate.ListMine)
	rg.GET("/courses/:id/certificate", c.certificate.GetByCourse)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		// 课程管理，归属校验在 handler 内完成
		teacher.POST("/courses", c.course.Create)
		teacher.PUT("/courses/:id", c.course.Update)
		teacher.DELETE("/courses/:id", c.course.Delete)
		teacher.POST("/courses/:id/publish", c.course.Publish)

		// 章节管理
		teacher.POST("/courses/:id/modules", c.course.AddModule)
		teacher.PUT("/courses/:id/modules/:moduleId", c.course.UpdateModule)
		teacher.DELETE("/courses/:id/modules/:moduleId", c.course.DeleteModule)

		// 课时管理
		teacher.POST("/courses/:id/lessons", c.lesson.Create)
		teacher.PUT("/courses/:id/lessons/:lessonId", c.lesson.Update)
		teacher.DELETE("/courses/:id/lessons/:lessonId", c.lesson.Delete)
		teacher.POST("/courses/:id/lessons/:lessonId/publish", c.lesson.Publish)
		teacher.POST("/courses/:id/lessons/:lessonId/video", c.lesson.UploadVideo)

		// 学员名单
		teacher.GET("/courses/:id/students", c.enrollment.CourseStudents)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.GetUsers)
		admin.GET("/users/:id", c.user.GetUser)
		admin.POST("/users/:id/disable", c.user.SetDisabled)
	}
}
