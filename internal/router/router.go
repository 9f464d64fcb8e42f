package router

import (
	"time"

	"kejani/config"
	"kejani/internal/authz"
	"kejani/internal/handler"
	"kejani/internal/middleware"
	"kejani/internal/repository"
	"kejani/internal/service"
	"kejani/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second), "global"))
	loginLimiter := middleware.NewRateLimiter(10, 60*time.Second)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	propertySvc := service.NewPropertyService(propertyRepo, userRepo)
	unitSvc := service.NewUnitService(unitRepo, propertyRepo, userRepo)
	paymentSvc := service.NewPaymentService(paymentRepo, unitRepo)
	noticeSvc := service.NewNoticeService(noticeRepo, unitRepo, userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, auditRepo)
	meHandler := handler.NewMeHandler(authSvc, paymentSvc, noticeSvc)
	propertyHandler := handler.NewPropertyHandler(propertySvc, auditRepo)
	unitHandler := handler.NewUnitHandler(unitSvc, auditRepo)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, auditRepo)
	noticeHandler := handler.NewNoticeHandler(noticeSvc, auditRepo, cloud)

	authMw := middleware.AuthRequired(&cfg.JWT)
	identityMw := middleware.RequireIdentity(authz.NewResolver(db))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			// Register is authenticated: who may create whom depends on the
			// creator's role. Landlords are minted by kejanictl, never here.
			authGroup.POST("/register", authMw, identityMw, authHandler.Register)
			authGroup.POST("/login", middleware.RateLimit(loginLimiter, "login"), authHandler.Login)
			authGroup.POST("/refresh", middleware.RateLimit(loginLimiter, "refresh"), authHandler.Refresh)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		me := api.Group("/me")
		me.Use(authMw, identityMw)
		{
			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/profile", meHandler.UpdateProfile)
			me.GET("/payments", middleware.TenantRequired(), meHandler.Payments)
			me.GET("/feed", middleware.TenantRequired(), meHandler.Feed)
		}

		properties := api.Group("/properties")
		properties.Use(authMw, identityMw)
		{
			properties.GET("", propertyHandler.List)
			properties.POST("", middleware.LandlordRequired(), propertyHandler.Create)
			properties.GET("/:id", propertyHandler.Get)
			properties.PATCH("/:id", middleware.LandlordRequired(), propertyHandler.Update)
			properties.DELETE("/:id", middleware.LandlordRequired(), propertyHandler.Delete)
			properties.PUT("/:id/caretakers/:user_id", middleware.LandlordRequired(), propertyHandler.LinkCaretaker)
			properties.DELETE("/:id/caretakers/:user_id", middleware.LandlordRequired(), propertyHandler.UnlinkCaretaker)
		}

		units := api.Group("/units")
		units.Use(authMw, identityMw)
		{
			units.GET("", unitHandler.List)
			units.POST("", middleware.ManagerRequired(), unitHandler.Create)
			units.GET("/:id", unitHandler.Get)
			units.PATCH("/:id", middleware.ManagerRequired(), unitHandler.Update)
			units.POST("/:id/assign-tenant", middleware.ManagerRequired(), unitHandler.AssignTenant)
			units.POST("/:id/unassign-tenant", middleware.ManagerRequired(), unitHandler.UnassignTenant)
			units.POST("/:id/transfer-tenant", middleware.ManagerRequired(), unitHandler.TransferTenant)
		}

		payments := api.Group("/payments")
		payments.Use(authMw, identityMw)
		{
			payments.GET("", paymentHandler.List)
			payments.POST("", middleware.ManagerRequired(), paymentHandler.Record)
			payments.GET("/summary", middleware.ManagerRequired(), paymentHandler.Summary)
			payments.GET("/monthly-report", middleware.LandlordRequired(), paymentHandler.MonthlyReport)
			payments.GET("/:id", paymentHandler.Get)
		}

		notices := api.Group("/notices")
		notices.Use(authMw, identityMw)
		{
			notices.GET("", middleware.ManagerRequired(), noticeHandler.List)
			notices.POST("", middleware.ManagerRequired(), noticeHandler.Create)
			notices.GET("/stats", noticeHandler.Stats)
			notices.GET("/:id", noticeHandler.Get)
			notices.PATCH("/:id", middleware.ManagerRequired(), noticeHandler.Update)
			notices.POST("/:id/attachments", middleware.ManagerRequired(), noticeHandler.AddAttachment)
			notices.GET("/:id/read-report", middleware.ManagerRequired(), noticeHandler.ReadReport)
			notices.POST("/:id/read", middleware.TenantRequired(), noticeHandler.MarkRead)
		}
	}

	return r
}
