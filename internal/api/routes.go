package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/api/middleware"
	"github.com/EvgeniyGal/hr-agency/internal/auth"
	"github.com/EvgeniyGal/hr-agency/internal/config"
	"github.com/EvgeniyGal/hr-agency/internal/rbac"
)

// RegisterRoutes wires the full v1 surface. The capability middleware on
// each group is the only authorization point; handlers assume the caller
// is already allowed. Status and board endpoints are deliberately
// auth-only so every signed-in user can work the kanban views.
func RegisterRoutes(
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient ObjectStore,
) {
	activity := NewActivityRecorder(asynqClient, logger)

	authHandler := NewAuthHandler(db, authService, redisClient, logger,
		cfg.Auth.LoginRateLimitPerHour, cfg.Auth.LoginLockThreshold, cfg.Auth.LoginLockTTL, cfg.Auth.CookieDomain)
	profileHandler := NewProfileHandler(db, storageClient, activity, cfg.Uploads.MaxAvatarBytes)
	clientHandler := NewClientHandler(db, activity)
	jobHandler := NewJobHandler(db, activity)
	candidateHandler := NewCandidateHandler(db, activity)
	applicationHandler := NewApplicationHandler(db, activity)
	userHandler := NewUserHandler(db, activity)
	cvHandler := NewCVHandler(db, storageClient, asynqClient, cfg.Uploads.ClamdAddr, cfg.Uploads.MaxCVBytes)
	boardHandler := NewBoardHandler(db, redisClient, activity)
	reportHandler := NewReportHandler(db)
	wsHandler := NewWsHandler(redisClient, authService, logger, cfg.API.AllowedWSOrigins)

	authMiddleware := middleware.AuthMiddleware(authService)
	passwordGate := middleware.RequirePasswordChangeCompletedMiddleware()

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/change-password", authMiddleware, authHandler.ChangePassword)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}

		profileGroup := v1.Group("/profile")
		profileGroup.Use(authMiddleware, passwordGate)
		{
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.PUT("", profileHandler.UpdateProfile)
			profileGroup.POST("/avatar", profileHandler.UploadAvatar)
		}

		clientGroup := v1.Group("/clients")
		clientGroup.Use(authMiddleware, passwordGate, middleware.RequireCapability(rbac.CapManageClients))
		{
			clientGroup.POST("", clientHandler.CreateClient)
			clientGroup.GET("", clientHandler.ListClients)
			clientGroup.GET("/:id", clientHandler.GetClient)
			clientGroup.PUT("/:id", clientHandler.UpdateClient)
			clientGroup.DELETE("/:id", clientHandler.DeleteClient)
		}

		jobGroup := v1.Group("/jobs")
		jobGroup.Use(authMiddleware, passwordGate)
		{
			jobGroup.PATCH("/:id/status", jobHandler.UpdateJobStatus)

			managed := jobGroup.Group("")
			managed.Use(middleware.RequireCapability(rbac.CapManageJobs))
			{
				managed.POST("", jobHandler.CreateJob)
				managed.GET("", jobHandler.ListJobs)
				managed.GET("/:id", jobHandler.GetJob)
				managed.PUT("/:id", jobHandler.UpdateJob)
				managed.DELETE("/:id", jobHandler.DeleteJob)
			}
		}

		candidateGroup := v1.Group("/candidates")
		candidateGroup.Use(authMiddleware, passwordGate)
		{
			candidateGroup.PATCH("/:id/status", candidateHandler.UpdateCandidateStatus)

			managed := candidateGroup.Group("")
			managed.Use(middleware.RequireCapability(rbac.CapManageCandidates))
			{
				managed.POST("", candidateHandler.CreateCandidate)
				managed.GET("", candidateHandler.ListCandidates)
				managed.GET("/:id", candidateHandler.GetCandidate)
				managed.PUT("/:id", candidateHandler.UpdateCandidate)
				managed.DELETE("/:id", candidateHandler.DeleteCandidate)

				managed.POST("/:id/cvs", cvHandler.UploadCV)
				managed.GET("/:id/cvs", cvHandler.ListCVs)
				managed.GET("/:id/cvs/:cvID/download-link", cvHandler.DownloadCV)
				managed.DELETE("/:id/cvs/:cvID", cvHandler.DeleteCV)
			}
		}

		applicationGroup := v1.Group("/applications")
		applicationGroup.Use(authMiddleware, passwordGate)
		{
			applicationGroup.PATCH("/:id/status", applicationHandler.UpdateApplicationStatus)

			managed := applicationGroup.Group("")
			managed.Use(middleware.RequireCapability(rbac.CapManageApplications))
			{
				managed.POST("", applicationHandler.CreateApplication)
				managed.GET("", applicationHandler.ListApplications)
				managed.GET("/:id", applicationHandler.GetApplication)
				managed.PUT("/:id", applicationHandler.UpdateApplication)
				managed.DELETE("/:id", applicationHandler.DeleteApplication)
			}
		}

		boardGroup := v1.Group("/boards")
		boardGroup.Use(authMiddleware, passwordGate)
		{
			boardGroup.GET("/:type", boardHandler.GetBoard)
			boardGroup.POST("/:type/move", boardHandler.MoveCard)
		}

		reportGroup := v1.Group("/reports")
		reportGroup.Use(authMiddleware, passwordGate, middleware.RequireCapability(rbac.CapViewReports))
		{
			reportGroup.GET("/summary", reportHandler.GetSummary)
			reportGroup.GET("/placements.csv", reportHandler.ExportPlacements)
		}

		userGroup := v1.Group("/users")
		userGroup.Use(authMiddleware, passwordGate, middleware.RequireCapability(rbac.CapManageUsers))
		{
			userGroup.GET("", userHandler.ListUsers)
			userGroup.POST("/invite", userHandler.InviteUser)
			userGroup.PATCH("/:id/role", userHandler.UpdateUserRole)
			userGroup.DELETE("/:id", userHandler.DeleteUser)
		}
	}
}
