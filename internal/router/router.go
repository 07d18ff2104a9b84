package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quarry-dev/quarry/internal/handlers"
	"github.com/quarry-dev/quarry/internal/metrics"
	"github.com/quarry-dev/quarry/internal/middleware"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Projects *handlers.ProjectHandler
	Tickets  *handlers.TicketHandler
	Ws       *handlers.WsHandler
}

func NewRouter(h Handlers, collector *metrics.Collector, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(collector.Middleware())
	r.GET("/metrics", collector.Handler())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", middleware.AuthMiddleware(), h.Ws.TicketFeed)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), h.Auth.Me)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", h.Projects.Create)
			projects.GET("", h.Projects.List)
			projects.GET("/:project_id", h.Projects.Get)
			projects.PATCH("/:project_id", h.Projects.Update)
			projects.DELETE("/:project_id", h.Projects.Delete)

			// Team member sub-resource
			projects.POST("/:project_id/members", h.Projects.AddTeamMember)
			projects.DELETE("/:project_id/members/:user_id", h.Projects.RemoveTeamMember)
		}

		tickets := api.Group("/tickets", middleware.AuthMiddleware())
		{
			tickets.POST("", h.Tickets.Create)
			tickets.GET("", h.Tickets.List)
			tickets.GET("/:ticket_id", h.Tickets.Get)
			tickets.PUT("/:ticket_id", h.Tickets.Update)
			tickets.DELETE("/:ticket_id", h.Tickets.Delete)
		}
	}

	return r
}
