package api

import (
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services bundles everything the routes dispatch to.
type Services struct {
	Auth          service.AuthService
	Tariffs       service.TariffService
	Gyms          service.GymService
	Plans         service.PlanService
	Members       service.MemberService
	Subscriptions service.SubscriptionService
	Coaches       service.CoachService
	Classes       service.ClassService
	Equipment     service.EquipmentService
	Messages      service.MessageService
	Reports       service.ReportService
	Exports       service.ExportService
}

// RouterOptions carries the HTTP concerns that come from configuration.
type RouterOptions struct {
	AllowedOrigins []string
	// AuthLimiter throttles the public auth endpoints. Nil disables throttling.
	AuthLimiter *RateLimiter
}

// NewRouter builds the engine with its middleware stack and every route.
func NewRouter(s Services, opts RouterOptions, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(log), RequestLogger(log), MetricsMiddleware(), CORSMiddleware(opts.AllowedOrigins))
	SetupRoutes(router, s, opts.AuthLimiter, log)
	return router
}

func SetupRoutes(router *gin.Engine, s Services, authLimiter *RateLimiter, log *zap.Logger) {
	authHandler := NewAuthHandler(s.Auth, s.Tariffs, log)
	adminHandler := NewAdminHandler(s.Gyms, s.Tariffs, s.Reports, s.Exports, log)
	gymHandler := NewGymHandler(GymServices{
		Members:       s.Members,
		Subscriptions: s.Subscriptions,
		Plans:         s.Plans,
		Coaches:       s.Coaches,
		Classes:       s.Classes,
		Equipment:     s.Equipment,
		Messages:      s.Messages,
		Reports:       s.Reports,
		Exports:       s.Exports,
	}, log)
	clientHandler := NewClientHandler(s.Reports, s.Classes, s.Subscriptions, s.Messages, log)

	authMiddleware := AuthMiddleware(s.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "home": "/"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		if authLimiter != nil {
			authGroup.Use(RateLimitMiddleware(authLimiter))
		}
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
		apiV1.GET("/tariffs/public", authHandler.PublicTariffs)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		// --- Platform administrator ---
		admin := protected.Group("/admin")
		admin.Use(RoleMiddleware(domain.RolePlatformAdmin))
		{
			admin.GET("/gyms", adminHandler.ListGyms)
			admin.POST("/gyms", adminHandler.CreateGym)
			admin.GET("/gyms/:id", adminHandler.GetGym)
			admin.PUT("/gyms/:id", adminHandler.UpdateGym)
			admin.PATCH("/gyms/:id/status", adminHandler.SetGymStatus)
			admin.DELETE("/gyms/:id", adminHandler.DeleteGym)

			admin.GET("/tariffs", adminHandler.ListTariffs)
			admin.POST("/tariffs", adminHandler.CreateTariff)
			admin.PUT("/tariffs/:id", adminHandler.UpdateTariff)
			admin.PATCH("/tariffs/:id/status", adminHandler.SetTariffStatus)
			admin.DELETE("/tariffs/:id", adminHandler.DeleteTariff)

			admin.GET("/reports", adminHandler.Report)
			admin.POST("/exports/gyms", adminHandler.ExportGyms)
			admin.POST("/exports/report", adminHandler.ExportReport)
		}

		// --- Gym administrator, scoped to the session's gym ---
		gym := protected.Group("/gym")
		gym.Use(RoleMiddleware(domain.RoleGymAdmin))
		{
			gym.GET("/dashboard", gymHandler.Dashboard)
			gym.GET("/reports/revenue", gymHandler.RevenueChart)

			gym.GET("/members", gymHandler.ListMembers)
			gym.POST("/members", gymHandler.CreateMember)
			gym.GET("/members/:id", gymHandler.GetMember)
			gym.PUT("/members/:id", gymHandler.UpdateMember)
			gym.DELETE("/members/:id", gymHandler.DeleteMember)
			gym.POST("/members/:id/renew", gymHandler.RenewMember)

			gym.GET("/subscriptions", gymHandler.ListSubscriptions)
			gym.POST("/subscriptions", gymHandler.CreateSubscription)
			gym.DELETE("/subscriptions/:id", gymHandler.DeleteSubscription)

			gym.GET("/plans", gymHandler.ListPlans)
			gym.POST("/plans", gymHandler.CreatePlan)
			gym.PUT("/plans/:id", gymHandler.UpdatePlan)
			gym.PATCH("/plans/:id/toggle", gymHandler.TogglePlan)
			gym.DELETE("/plans/:id", gymHandler.DeletePlan)

			gym.GET("/coaches", gymHandler.ListCoaches)
			gym.POST("/coaches", gymHandler.CreateCoach)
			gym.GET("/coaches/:id", gymHandler.GetCoach)
			gym.PUT("/coaches/:id", gymHandler.UpdateCoach)
			gym.DELETE("/coaches/:id", gymHandler.DeleteCoach)

			gym.GET("/classes", gymHandler.ListClasses)
			gym.GET("/classes/upcoming", gymHandler.UpcomingClasses)
			gym.POST("/classes", gymHandler.CreateClass)
			gym.GET("/classes/:id", gymHandler.GetClass)
			gym.PUT("/classes/:id", gymHandler.UpdateClass)
			gym.DELETE("/classes/:id", gymHandler.DeleteClass)
			gym.POST("/classes/:id/book", gymHandler.BookClass)

			gym.GET("/equipment", gymHandler.ListEquipment)
			gym.POST("/equipment", gymHandler.CreateEquipment)
			gym.PUT("/equipment/:id", gymHandler.UpdateEquipment)
			gym.DELETE("/equipment/:id", gymHandler.DeleteEquipment)

			gym.GET("/messages/contacts", gymHandler.Contacts)
			gym.GET("/messages/:contactId", gymHandler.Conversation)
			gym.POST("/messages/:contactId", gymHandler.SendMessage)

			gym.POST("/exports", gymHandler.Export)
		}

		// --- Members ---
		client := protected.Group("/client")
		client.Use(RoleMiddleware(domain.RoleClient))
		{
			client.GET("/dashboard", clientHandler.Dashboard)
			client.GET("/classes", clientHandler.ListClasses)
			client.GET("/classes/upcoming", clientHandler.UpcomingClasses)
			client.POST("/classes/:id/book", clientHandler.BookClass)
			client.GET("/subscriptions", clientHandler.Subscriptions)
			client.POST("/subscription/renew", clientHandler.Renew)
			client.GET("/messages", clientHandler.Messages)
			client.POST("/messages", clientHandler.SendMessage)
		}
	}
}
