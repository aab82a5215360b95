package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/metrics"
	"tristar/fitness-hub/internal/service"
)

// Services bundles everything the handlers call.
type Services struct {
	Auth       service.AuthService
	Members    service.MemberService
	Invoices   service.InvoiceService
	Trainers   service.TrainerService
	Visitors   service.VisitorService
	FollowUps  service.FollowUpService
	Sessions   service.SessionService
	Activities service.ActivityService
	CheckIns   service.CheckInService
	Sync       service.SyncService
	Backups    service.BackupService
}

// RouterOptions controls authentication and the outer middleware.
type RouterOptions struct {
	JWTSecret       string
	AllowDemoTokens bool
	RateLimit       int
	RateWindow      time.Duration
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
}

func SetupRoutes(router *gin.Engine, opts RouterOptions, svc Services) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	router.Use(RequestLogger(opts.Logger))
	if opts.Metrics != nil {
		router.Use(MetricsMiddleware(opts.Metrics))
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	authHandler := NewAuthHandler(svc.Auth)
	memberHandler := NewMemberHandler(svc.Members)
	invoiceHandler := NewInvoiceHandler(svc.Invoices)
	trainerHandler := NewTrainerHandler(svc.Trainers, svc.Sessions)
	frontDeskHandler := NewFrontDeskHandler(svc.Visitors, svc.FollowUps)
	activityHandler := NewActivityHandler(svc.Activities, svc.CheckIns)
	syncHandler := NewSyncHandler(svc.Sync, svc.Backups)

	authMiddleware := AuthMiddleware(opts.JWTSecret, opts.AllowDemoTokens)
	ownerOnly := RoleMiddleware(domain.RoleOwner)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/health", func(c *gin.Context) {
		respond(c, http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	apiV1 := router.Group("/api/v1")
	apiV1.Use(RateLimitMiddleware(opts.RateLimit, opts.RateWindow))
	{
		apiV1.POST("/auth/login", authHandler.Login)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/auth/me", authHandler.Me)

		members := protected.Group("/members")
		{
			members.GET("", memberHandler.ListMembers)
			members.POST("", memberHandler.CreateMember)
			members.GET("/expiring-soon", memberHandler.ExpiringSoon)
			members.POST("/expire", memberHandler.ExpireLapsed)
			members.GET("/:id", memberHandler.GetMember)
			members.PUT("/:id", memberHandler.UpdateMember)
			members.DELETE("/:id", ownerOnly, memberHandler.DeleteMember)
			members.POST("/:id/checkin", memberHandler.CheckIn)
			members.POST("/:id/renew", memberHandler.Renew)
			members.GET("/:id/stats", memberHandler.Stats)
		}

		invoices := protected.Group("/invoices")
		{
			invoices.GET("", invoiceHandler.ListInvoices)
			invoices.POST("", invoiceHandler.CreateInvoice)
			invoices.GET("/stats/summary", invoiceHandler.Summary)
			invoices.GET("/:id", invoiceHandler.GetInvoice)
			invoices.PUT("/:id", invoiceHandler.UpdateInvoice)
			invoices.PUT("/:id/status", invoiceHandler.UpdateInvoiceStatus)
			invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
		}

		trainers := protected.Group("/trainers")
		{
			trainers.GET("", trainerHandler.ListTrainers)
			trainers.POST("", trainerHandler.CreateTrainer)
			trainers.GET("/:id", trainerHandler.GetTrainer)
			trainers.PUT("/:id", trainerHandler.UpdateTrainer)
			trainers.DELETE("/:id", trainerHandler.DeleteTrainer)
		}

		sessions := protected.Group("/sessions")
		{
			sessions.GET("", trainerHandler.ListSessions)
			sessions.POST("", trainerHandler.CreateSession)
			sessions.GET("/:id", trainerHandler.GetSession)
			sessions.PUT("/:id", trainerHandler.UpdateSession)
			sessions.DELETE("/:id", trainerHandler.DeleteSession)
		}

		visitors := protected.Group("/visitors")
		{
			visitors.GET("", frontDeskHandler.ListVisitors)
			visitors.POST("", frontDeskHandler.CreateVisitor)
			visitors.GET("/:id", frontDeskHandler.GetVisitor)
			visitors.PUT("/:id", frontDeskHandler.UpdateVisitor)
			visitors.DELETE("/:id", frontDeskHandler.DeleteVisitor)
		}

		followUps := protected.Group("/followups")
		{
			followUps.GET("", frontDeskHandler.ListFollowUps)
			followUps.POST("", frontDeskHandler.CreateFollowUp)
			followUps.GET("/:id", frontDeskHandler.GetFollowUp)
			followUps.PUT("/:id", frontDeskHandler.UpdateFollowUp)
			followUps.DELETE("/:id", frontDeskHandler.DeleteFollowUp)
		}

		protected.GET("/activities", activityHandler.ListActivities)
		protected.DELETE("/activities", ownerOnly, activityHandler.ClearActivities)
		protected.GET("/checkins", activityHandler.ListCheckIns)

		protected.GET("/sync/:collection", syncHandler.Collection)
		protected.POST("/admin/backup", ownerOnly, syncHandler.Backup)
	}
}
