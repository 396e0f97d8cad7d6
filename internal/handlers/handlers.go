package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"autovision/backend/internal/config"
	"autovision/backend/internal/detect"
	"autovision/backend/internal/middleware"
	"autovision/backend/internal/models"
	"autovision/backend/internal/queue"
	"autovision/backend/internal/repository"
	"autovision/backend/internal/service"
	"autovision/backend/internal/storage"
	"autovision/backend/internal/telemetry"
)

type HandlerSet struct {
	log            zerolog.Logger
	cfg            *config.AppConfig
	authService    *service.AuthService
	videoService   *service.VideoService
	cleanupService *service.CleanupService
	controller     *detect.ThresholdController
	db             *pgxpool.Pool
	cache          *redis.Client
	store          *storage.ObjectStore
	publisher      *queue.Publisher
	metrics        *telemetry.Metrics
	users          *repository.UserRepository
	sessions       *repository.SessionRepository
	videos         *repository.VideoRepository
	events         *repository.EventRepository
	settings       *repository.SettingsRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	metrics *telemetry.Metrics,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	eventRepo := repository.NewEventRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	publisher := queue.NewPublisher(cache, cfg.Redis.Stream)
	controller := detect.NewThresholdController(cfg.Detection.InitialThreshold, cfg.Detection.LearningRate)

	auth := service.NewAuthService(userRepo, sessionRepo, cfg.Security, log)
	videos := service.NewVideoService(videoRepo, eventRepo, store, publisher, cfg.Detection.MaxVideoSizeMB, log)
	cleanup := service.NewCleanupService(videoRepo, eventRepo, settingsRepo, store, log)

	return HandlerSet{
		log:            log,
		cfg:            cfg,
		authService:    auth,
		videoService:   videos,
		cleanupService: cleanup,
		controller:     controller,
		db:             db,
		cache:          cache,
		store:          store,
		publisher:      publisher,
		metrics:        metrics,
		users:          userRepo,
		sessions:       sessionRepo,
		videos:         videoRepo,
		events:         eventRepo,
		settings:       settingsRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", h.SignUp)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)

	authed := middleware.Auth(h.cfg, h.users, h.sessions)

	protected := v1.Group("/auth")
	protected.Use(authed)
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
	protected.GET("/sessions", h.ListSessions)
	protected.DELETE("/sessions/:deviceId", h.RevokeSession)

	videos := v1.Group("/videos")
	videos.Use(authed)
	videos.POST("/upload", h.UploadVideo)
	videos.GET("", h.ListVideos)
	videos.GET("/:id", h.GetVideo)
	videos.GET("/:id/analysis", h.GetVideoAnalysis)
	videos.POST("/:id/process", h.ProcessVideo)
	videos.DELETE("/:id", h.DeleteVideo)

	// The stream endpoint also accepts ?token= so a bare <video> tag can
	// play it without an Authorization header.
	stream := v1.Group("/videos")
	stream.Use(middleware.AuthWithOptions(h.cfg, h.users, h.sessions, middleware.AuthOptions{AllowQueryToken: true}))
	stream.GET("/:id/stream", h.StreamVideo)

	events := v1.Group("/events")
	events.Use(authed)
	events.GET("", h.ListEvents)
	events.GET("/video/:videoId", h.ListVideoEvents)
	events.POST("/:id/feedback", h.EventFeedback)

	settings := v1.Group("/settings")
	settings.Use(authed)
	settings.GET("", h.GetSettings)
	settings.PUT("", h.UpdateSettings)

	cleanup := v1.Group("/cleanup")
	cleanup.Use(authed)
	cleanup.GET("/preview", h.CleanupPreview)
	cleanup.POST("/run", h.CleanupRun)

	analytics := v1.Group("/analytics")
	analytics.Use(authed)
	analytics.GET("/stats", h.AnalyticsStats)

	system := v1.Group("/system")
	system.Use(authed)
	system.GET("/status", h.SystemStatus)

	admin := v1.Group("/admin")
	admin.Use(authed, middleware.RequireRoles(models.UserRoleAdmin))
	admin.GET("/videos", h.AdminListVideos)
}
