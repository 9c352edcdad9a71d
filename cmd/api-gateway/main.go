package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/innovation-hub-api/api/swagger"
	"github.com/noah-isme/innovation-hub-api/internal/directory"
	"github.com/noah-isme/innovation-hub-api/internal/handler"
	"github.com/noah-isme/innovation-hub-api/internal/middleware"
	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/repository"
	"github.com/noah-isme/innovation-hub-api/internal/service"
	"github.com/noah-isme/innovation-hub-api/pkg/cache"
	"github.com/noah-isme/innovation-hub-api/pkg/config"
	"github.com/noah-isme/innovation-hub-api/pkg/database"
	"github.com/noah-isme/innovation-hub-api/pkg/jobs"
	"github.com/noah-isme/innovation-hub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/innovation-hub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/innovation-hub-api/pkg/middleware/requestid"
	"github.com/noah-isme/innovation-hub-api/pkg/storage"
)

// @title Innovation Hub API
// @version 1.0.0
// @description Healthcare innovation tracking backend
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("postgres connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis connection failed", "error", err)
	}
	defer redisClient.Close()

	directoryClient := directory.NewClient(cfg.Directory, redisClient, logr)

	evidenceStore, err := storage.NewLocalStorage(cfg.Evidence.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("evidence storage init failed", "error", err)
	}
	reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("report storage init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Evidence.SignedURLSecret, cfg.Evidence.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	organisationRepo := repository.NewOrganisationRepository(db)
	innovationRepo := repository.NewInnovationRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	actionRepo := repository.NewActionRepository(db)
	supportRepo := repository.NewSupportRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)

	notificationSvc := service.NewNotificationService(notificationRepo, innovationRepo, supportRepo, organisationRepo, userRepo, directoryClient, nil, redisClient, logr)
	notificationSvc.SetCounterTTL(cfg.Notifications.UnreadCountTTL)

	if cfg.Email.Enabled {
		emailQueue := jobs.NewQueue("email", notificationSvc.EmailJobHandler, jobs.QueueConfig{
			Workers:    cfg.Email.WorkerConcurrency,
			BufferSize: cfg.Email.QueueSize,
			NoRetry:    true,
			Logger:     logr,
		})
		emailQueue.Start(ctx)
		defer emailQueue.Stop()
		notificationSvc.AttachQueue(emailQueue)
	}

	innovationSvc := service.NewInnovationService(innovationRepo, notificationSvc, logr)
	sectionSvc := service.NewSectionService(sectionRepo, actionRepo, innovationRepo, logr)
	actionSvc := service.NewActionService(actionRepo, sectionRepo, supportRepo, organisationRepo, userRepo, directoryClient, innovationRepo, notificationSvc, logr)
	supportSvc := service.NewSupportService(supportRepo, commentRepo, innovationRepo, notificationSvc, logr)
	assessmentSvc := service.NewAssessmentService(assessmentRepo, innovationRepo, organisationRepo, userRepo, directoryClient, innovationRepo, notificationSvc, notificationSvc, logr)
	commentSvc := service.NewCommentService(commentRepo, supportRepo, userRepo, directoryClient, innovationRepo, notificationSvc, notificationSvc, logr)
	transferSvc := service.NewTransferService(transferRepo, userRepo, directoryClient, innovationRepo, notificationSvc, cfg.Transfers.ExpiryWindow, logr)
	evidenceSvc := service.NewEvidenceService(evidenceRepo, innovationRepo, signer, logr)
	fileSvc := service.NewFileService(evidenceRepo, innovationRepo, evidenceStore, signer, cfg.Evidence, logr)
	userSvc := service.NewUserService(userRepo, organisationRepo, directoryClient, transferSvc, logr)
	organisationSvc := service.NewOrganisationService(organisationRepo, directoryClient, logr)
	reportSvc := service.NewReportService(assessmentSvc, innovationRepo, reportStore, logr)
	metricsSvc := service.NewMetricsService()

	go transferSvc.RunExpirySweeper(ctx, cfg.Transfers.CleanupInterval)

	innovationHandler := handler.NewInnovationHandler(innovationSvc)
	sectionHandler := handler.NewSectionHandler(sectionSvc)
	actionHandler := handler.NewActionHandler(actionSvc)
	supportHandler := handler.NewSupportHandler(supportSvc)
	assessmentHandler := handler.NewAssessmentHandler(assessmentSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	transferHandler := handler.NewTransferHandler(transferSvc)
	evidenceHandler := handler.NewEvidenceHandler(evidenceSvc)
	fileHandler := handler.NewFileHandler(fileSvc)
	userHandler := handler.NewUserHandler(userSvc)
	organisationHandler := handler.NewOrganisationHandler(organisationSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	api.Use(middleware.Actor(userRepo, organisationRepo))

	api.GET("/me", userHandler.Me)
	api.POST("/users", middleware.RequireTypes(models.UserTypeAdmin), userHandler.Create)
	api.PUT("/users", middleware.RequireTypes(models.UserTypeAdmin), userHandler.Update)

	api.GET("/organisations", organisationHandler.List)
	api.GET("/organisation-units/:unitId/users", organisationHandler.ListUnitUsers)

	api.GET("/notifications/counters", notificationHandler.Counters)
	api.PATCH("/notifications/dismiss", notificationHandler.Dismiss)
	api.PATCH("/notifications/read", notificationHandler.MarkAllRead)

	api.GET("/actions", middleware.RequireTypes(models.UserTypeAccessor), actionHandler.Worklist)

	api.GET("/transfers", transferHandler.List)
	api.PATCH("/transfers/:transferId", transferHandler.Update)

	innovations := api.Group("/innovations")
	{
		innovations.POST("", middleware.RequireTypes(models.UserTypeInnovator), innovationHandler.Create)
		innovations.GET("", innovationHandler.List)
		innovations.GET("/:innovationId", innovationHandler.Get)
		innovations.DELETE("/:innovationId", middleware.RequireTypes(models.UserTypeInnovator), innovationHandler.Archive)
		innovations.PATCH("/:innovationId/submit", middleware.RequireTypes(models.UserTypeInnovator), innovationHandler.Submit)
		innovations.GET("/:innovationId/shares", innovationHandler.GetShares)
		innovations.PUT("/:innovationId/shares", middleware.RequireTypes(models.UserTypeInnovator), innovationHandler.UpdateShares)

		innovations.GET("/:innovationId/sections", sectionHandler.List)
		innovations.GET("/:innovationId/sections/:sectionKey", sectionHandler.Get)
		innovations.PUT("/:innovationId/sections/:sectionKey", middleware.RequireTypes(models.UserTypeInnovator), sectionHandler.Save)
		innovations.PATCH("/:innovationId/sections", middleware.RequireTypes(models.UserTypeInnovator), sectionHandler.Submit)

		innovations.POST("/:innovationId/evidence", middleware.RequireTypes(models.UserTypeInnovator), evidenceHandler.Create)
		innovations.GET("/:innovationId/evidence", evidenceHandler.List)
		innovations.GET("/:innovationId/evidence/:evidenceId", evidenceHandler.Get)
		innovations.PUT("/:innovationId/evidence/:evidenceId", middleware.RequireTypes(models.UserTypeInnovator), evidenceHandler.Update)
		innovations.DELETE("/:innovationId/evidence/:evidenceId", middleware.RequireTypes(models.UserTypeInnovator), evidenceHandler.Delete)

		innovations.POST("/:innovationId/files", middleware.RequireTypes(models.UserTypeInnovator), fileHandler.Upload)
		innovations.GET("/:innovationId/files/download", fileHandler.Download)

		innovations.POST("/:innovationId/actions", middleware.RequireTypes(models.UserTypeAccessor), actionHandler.Create)
		innovations.GET("/:innovationId/actions", actionHandler.List)
		innovations.GET("/:innovationId/actions/:actionId", actionHandler.Get)
		innovations.PUT("/:innovationId/actions/:actionId", actionHandler.Update)

		innovations.POST("/:innovationId/supports", middleware.RequireTypes(models.UserTypeAccessor), supportHandler.Save)
		innovations.GET("/:innovationId/supports", supportHandler.List)
		innovations.GET("/:innovationId/supports/:supportId", supportHandler.Get)

		innovations.POST("/:innovationId/assessments", middleware.RequireTypes(models.UserTypeAssessment), assessmentHandler.Create)
		innovations.GET("/:innovationId/assessments/:assessmentId", assessmentHandler.Get)
		innovations.PUT("/:innovationId/assessments/:assessmentId", middleware.RequireTypes(models.UserTypeAssessment), assessmentHandler.Update)

		if cfg.Reports.Enabled {
			innovations.GET("/:innovationId/assessments/:assessmentId/pdf", reportHandler.PDF)
			innovations.GET("/:innovationId/assessments/:assessmentId/csv", reportHandler.CSV)
		}

		innovations.POST("/:innovationId/comments", commentHandler.Create)
		innovations.GET("/:innovationId/comments", commentHandler.List)

		innovations.POST("/:innovationId/transfers", middleware.RequireTypes(models.UserTypeInnovator), transferHandler.Create)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
