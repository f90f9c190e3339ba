package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aptiva/examgate-backend/internal/config"
	"github.com/aptiva/examgate-backend/internal/handler"
	"github.com/aptiva/examgate-backend/internal/middleware"
	"github.com/aptiva/examgate-backend/internal/model"
	"github.com/aptiva/examgate-backend/internal/response"
	"github.com/aptiva/examgate-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Exam     *handler.ExamHandler
	Question *handler.QuestionHandler
	Attempt  *handler.AttemptHandler
	Proctor  *handler.ProctorHandler
	Monitor  *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// CORS: restrict to the configured list; allow all in dev when unset.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID middleware runs globally so every response carries metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for credential endpoints.
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)

	// Auth group: login and refresh are public but rate limited.
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/refresh", authLimiter.Middleware(), handlers.Auth.Refresh)

		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// User management (admin only).
	users := router.Group("/api/v1/users")
	users.Use(middleware.RequireAuth(authService), middleware.RequireRoles(model.RoleAdmin))
	{
		users.POST("", handlers.Auth.CreateUser)
	}

	// Question bank (professors author their own questions).
	questions := router.Group("/api/v1/questions")
	questions.Use(middleware.RequireAuth(authService), middleware.RequireRoles(model.RoleProfessor))
	{
		questions.POST("", handlers.Question.Create)
		questions.GET("", handlers.Question.List)
	}

	// Exams: listing and detail are role-scoped inside the service; creation
	// is professor only. The attempt lifecycle hangs off the exam resource.
	exams := router.Group("/api/v1/exams")
	exams.Use(middleware.RequireAuth(authService))
	{
		exams.GET("", handlers.Exam.List)
		exams.GET("/:id", handlers.Exam.Get)
		exams.POST("", middleware.RequireRoles(model.RoleProfessor), handlers.Exam.Create)

		student := middleware.RequireRoles(model.RoleStudent)
		exams.POST("/:id/attempts", student, handlers.Attempt.Start)
		exams.POST("/:id/attempts/submit", student, handlers.Attempt.Submit)
		exams.POST("/:id/attempts/timeout", student, handlers.Attempt.Timeout)
	}

	// Attempt results for the authenticated student.
	attempts := router.Group("/api/v1/attempts")
	attempts.Use(middleware.RequireAuth(authService), middleware.RequireRoles(model.RoleStudent))
	{
		attempts.GET("/results", handlers.Attempt.Results)
	}

	// Student proctor views.
	proctor := router.Group("/api/v1/proctor")
	proctor.Use(middleware.RequireAuth(authService), middleware.RequireRoles(model.RoleStudentProctor))
	{
		proctor.GET("/students", handlers.Proctor.Students)
		proctor.GET("/students/:id/performance", handlers.Proctor.StudentPerformance)
	}

	// Live exam monitor over WebSocket for supervising roles.
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireAuth(authService),
		middleware.RequireRoles(model.RoleAdmin, model.RolePrincipal, model.RoleProfessor, model.RoleStudentProctor),
	)
	{
		ws.GET("/exams/:id/monitor", handlers.Monitor.MonitorExam)
	}

	return router
}
