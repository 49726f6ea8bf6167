package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"therapy-admin-server/internal/auth"
	"therapy-admin-server/internal/config"
	"therapy-admin-server/internal/handlers"
	"therapy-admin-server/internal/logging"
	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/middleware"
	"therapy-admin-server/internal/models"
	"therapy-admin-server/internal/services"
	"therapy-admin-server/internal/storage"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	DB       *gorm.DB
	Config   *config.Config
	Logger   *slog.Logger
	Store    storage.ObjectStore
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	m := deps.Metrics
	secure := cfg.Environment == "production"
	log := func(name string) *slog.Logger { return logging.Component(deps.Logger, name) }

	// Initialize services
	provider := auth.NewProvider(deps.DB, cfg.JWTSecret, time.Duration(cfg.JWTExpirationMinutes)*time.Minute)
	profiles := services.NewProfileService(deps.DB)
	approvals := services.NewApprovalService(deps.DB, m)
	content := services.NewContentService(deps.DB, services.OrderPolicy(cfg.OrderPolicy))
	booking := services.NewBookingService(deps.DB, m)

	gate := middleware.NewGate(provider, profiles, m, log("gate"), secure)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(provider, profiles, secure, log("auth"), m)
	supaHandler := handlers.NewSuperAdminHandler(approvals, log("supa"), m)
	adminModules := handlers.NewModuleHandler(content, false, "/admin/modules", log("content"), m)
	adminArticles := handlers.NewArticleHandler(content, false, "/admin/articles", log("content"), m)
	community := handlers.NewCommunityHandler(content, "/admin/community", log("community"), m)
	therapistModules := handlers.NewModuleHandler(content, true, "/therapist-admin/modules", log("content"), m)
	therapistArticles := handlers.NewArticleHandler(content, true, "/therapist-admin/articles", log("content"), m)
	therapistCommunity := handlers.NewCommunityHandler(content, "/therapist-admin/community", log("community"), m)
	appointments := handlers.NewAppointmentHandler(booking, log("booking"), m)
	therapist := handlers.NewTherapistHandler(booking, profiles, log("therapist"), m)
	uploads := handlers.NewUploadHandler(deps.Store, profiles, log("uploads"), m)

	// Every /admin, /therapist-admin and /supa path is gated by its area
	router.Use(gate.Guard())

	// Public routes (no session required)
	router.POST(services.LoginPath, authHandler.Login)
	router.POST(services.SignUpPath, authHandler.SignUp)

	// Staff-admin area: any valid session, role checks per page group
	admin := router.Group("/admin")
	{
		admin.POST("/logout", authHandler.Logout)
		admin.GET("/me", authHandler.Me)

		staff := admin.Group("", gate.RequireRole(models.RoleStaffAdmin))
		registerModuleRoutes(staff, adminModules)
		registerArticleRoutes(staff, adminArticles)
		staff.GET("/articles/:id/comments", adminArticles.ListComments)
		staff.DELETE("/article-comments/:id", adminArticles.DeleteComment)
		staff.POST("/uploads/:entity", uploads.UploadCover)

		staff.GET("/community", community.ListForums)
		staff.POST("/community", community.CreateForum)
		staff.GET("/community/:id", community.GetForum)
		staff.PUT("/community/:id", community.UpdateForum)
		staff.DELETE("/community/:id", community.DeleteForum)
		staff.POST("/community/:id/threads", community.CreateThread)
		staff.GET("/threads/:id", community.GetThread)
		staff.DELETE("/threads/:id", community.DeleteThread)
		staff.POST("/threads/:id/comments", community.AddComment)
		staff.DELETE("/comments/:id", community.DeleteComment)

		staff.GET("/journals", community.ListJournals)
		staff.DELETE("/journals/:id", community.DeleteJournal)
	}

	// Therapist area: active therapists only
	tp := router.Group("/therapist-admin")
	{
		tp.GET("", therapist.Dashboard)
		tp.GET("/calendar", therapist.Calendar)

		tp.GET("/appointments", appointments.ListAppointments)
		tp.GET("/appointments/:id", appointments.GetAppointment)
		tp.POST("/appointments/:id/confirm", appointments.Confirm)
		tp.POST("/appointments/:id/reject", appointments.Reject)
		tp.POST("/appointments/:id/cancel", appointments.Cancel)
		tp.POST("/appointments/:id/reschedule", appointments.Reschedule)
		tp.POST("/appointments/:id/message", appointments.Message)

		tp.GET("/availability", therapist.GetAvailability)
		tp.PUT("/availability/:weekday", therapist.SetAvailability)
		tp.POST("/availability/:weekday/toggle", therapist.ToggleAvailability)

		tp.GET("/sessions", therapist.ListLiveSessions)
		tp.POST("/sessions", therapist.CreateLiveSession)
		tp.GET("/sessions/:id", therapist.GetLiveSession)
		tp.PUT("/sessions/:id", therapist.UpdateLiveSession)
		tp.DELETE("/sessions/:id", therapist.DeleteLiveSession)

		tp.GET("/profile", therapist.GetProfile)
		tp.PUT("/profile", therapist.UpdateProfile)
		tp.POST("/profile/avatar", uploads.UploadAvatar)
		tp.POST("/uploads/:entity", uploads.UploadCover)

		registerModuleRoutes(tp, therapistModules)
		registerArticleRoutes(tp, therapistArticles)

		tp.GET("/community", therapistCommunity.ListForums)
		tp.GET("/community/:id", therapistCommunity.GetForum)
		tp.POST("/community/:id/threads", therapistCommunity.CreateThread)
		tp.GET("/threads/:id", therapistCommunity.GetThread)
		tp.POST("/threads/:id/comments", therapistCommunity.AddComment)
	}

	// Super-admin area: platform owners only
	supa := router.Group("/supa")
	{
		supa.GET("", supaHandler.Dashboard)
		supa.GET("/approvals", supaHandler.ListPending)
		supa.POST("/approvals/:id", supaHandler.Approve)
		supa.POST("/roles", supaHandler.SaveRoles)
		supa.GET("/users", supaHandler.ListUsers)
		supa.GET("/users/:id", supaHandler.GetUser)
		supa.PUT("/users/:id/role", supaHandler.ChangeRole)
		supa.POST("/users/:id/suspend", supaHandler.Suspend)
		supa.POST("/users/:id/restore", supaHandler.Restore)
		supa.POST("/users/:id/toggle-status", supaHandler.ToggleStatus)
		supa.DELETE("/users/:id", supaHandler.DeleteUser)
	}

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}

func registerModuleRoutes(g *gin.RouterGroup, h *handlers.ModuleHandler) {
	g.GET("/modules", h.ListModules)
	g.POST("/modules", h.CreateModule)
	g.GET("/modules/:id", h.GetModule)
	g.PUT("/modules/:id", h.UpdateModule)
	g.DELETE("/modules/:id", h.DeleteModule)
	g.POST("/modules/:id/lessons", h.CreateLesson)
	g.GET("/lessons/:id", h.GetLesson)
	g.PUT("/lessons/:id", h.UpdateLesson)
	g.DELETE("/lessons/:id", h.DeleteLesson)
	g.POST("/lessons/:id/steps", h.CreateStep)
	g.GET("/steps/:id", h.GetStep)
	g.PUT("/steps/:id", h.UpdateStep)
	g.DELETE("/steps/:id", h.DeleteStep)
}

func registerArticleRoutes(g *gin.RouterGroup, h *handlers.ArticleHandler) {
	g.GET("/articles", h.ListArticles)
	g.POST("/articles", h.CreateArticle)
	g.GET("/articles/:id", h.GetArticle)
	g.PUT("/articles/:id", h.UpdateArticle)
	g.DELETE("/articles/:id", h.DeleteArticle)
}
