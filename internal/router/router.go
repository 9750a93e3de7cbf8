package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/focushub/backend/api/handler"
)

type Handlers struct {
	Auth       *apiHandler.AuthHandler
	Task       *apiHandler.TaskHandler
	Stats      *apiHandler.StatsHandler
	Commitment *apiHandler.CommitmentHandler
	Checkin    *apiHandler.CheckinHandler
	Suggest    *apiHandler.SuggestHandler
	Health     *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/signup", handlers.Auth.Signup)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Tasks
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PATCH("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	r.POST("/api/v1/tasks/{id}/breakdown", authMiddleware(handlers.Suggest.BreakdownTask))
	r.POST("/api/v1/tasks/suggest", authMiddleware(handlers.Suggest.SuggestTasks))

	// Stats and pomodoro
	r.GET("/api/v1/stats", authMiddleware(handlers.Stats.GetStats))
	r.POST("/api/v1/stats/pomodoro", authMiddleware(handlers.Stats.LogPomodoro))

	// Commitment fund
	r.GET("/api/v1/commitment", authMiddleware(handlers.Commitment.Get))
	r.PUT("/api/v1/commitment", authMiddleware(handlers.Commitment.Set))
	r.DELETE("/api/v1/commitment", authMiddleware(handlers.Commitment.Cancel))

	// Daily check-in
	r.POST("/api/v1/checkin", authMiddleware(handlers.Checkin.Run))

	return r
}
