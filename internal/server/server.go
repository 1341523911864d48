package server

import (
	"context"
	"net/http"
	"time"

	"rowmatch/internal/activity"
	"rowmatch/internal/auth"
	"rowmatch/internal/config"
	"rowmatch/internal/notification"
	"rowmatch/internal/user"

	"github.com/gin-gonic/gin"
)

// Deps are the domain services the HTTP layer exposes.
type Deps struct {
	Users         user.Service
	Activities    activity.Service
	Notifications *notification.Service
	Queue         QueueReporter
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     *config.Config
}

func New(cfg *config.Config, deps Deps) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
		RateLimitMiddleware("ip", cfg.RateLimitRPS, cfg.RateLimitBurst, ClientIPKey),
	)

	userHandler := user.NewHandler(deps.Users)
	activityHandler := activity.NewHandler(deps.Activities)
	notificationHandler := notification.NewHandler(deps.Notifications)

	router.GET("/health", Health(deps.Queue))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)

	members := router.Group("/")
	members.Use(
		authMiddleware,
		auth.RequireRole(auth.RoleMember),
		RateLimitMiddleware("member", cfg.MemberRateLimitRPS, cfg.MemberRateLimitBurst, MemberKey),
	)
	{
		members.GET("/me", userHandler.GetMe)
		members.PATCH("/me", userHandler.UpdateMe)
		members.POST("/me/availability", userHandler.AddAvailability)
		members.POST("/me/availability/remove", userHandler.RemoveAvailability)
		members.POST("/me/availability/edit", userHandler.EditAvailability)
		members.GET("/users/:userID", userHandler.GetUser)

		members.POST("/activities", activityHandler.CreateActivity)
		members.GET("/activities", activityHandler.ListActivities)
		members.GET("/activities/:id", activityHandler.GetActivity)
		members.DELETE("/activities/:id", activityHandler.DeleteActivity)
		members.PATCH("/activities/:id", activityHandler.UpdateActivity)
		members.POST("/activities/:id/sign-up", activityHandler.SignUp)
		members.POST("/activities/:id/sign-off", activityHandler.SignOff)
		members.POST("/activities/:id/accept", activityHandler.Accept)
		members.POST("/activities/:id/reject", activityHandler.Reject)
		members.POST("/activities/:id/kick", activityHandler.Kick)
		members.GET("/activities/:id/participants", activityHandler.Participants)
	}

	services := router.Group("/")
	services.Use(authMiddleware, auth.RequireRole(auth.RoleService))
	{
		services.POST("/notify", notificationHandler.Notify)
	}

	return &Server{
		router: router,
		config: cfg,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
