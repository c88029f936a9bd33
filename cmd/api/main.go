package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/berlinbruno/podpirate/internal/auth"
	"github.com/berlinbruno/podpirate/internal/cache"
	"github.com/berlinbruno/podpirate/internal/config"
	"github.com/berlinbruno/podpirate/internal/content"
	"github.com/berlinbruno/podpirate/internal/logging"
	"github.com/berlinbruno/podpirate/internal/media"
	"github.com/berlinbruno/podpirate/internal/metrics"
	"github.com/berlinbruno/podpirate/internal/middleware"
	"github.com/berlinbruno/podpirate/internal/queue"
	"github.com/berlinbruno/podpirate/internal/storage"
	"github.com/berlinbruno/podpirate/internal/store"
	"github.com/berlinbruno/podpirate/internal/token"
	"github.com/berlinbruno/podpirate/internal/tracing"
	"github.com/berlinbruno/podpirate/pkg/models"
)

type API struct {
	accounts  store.AccountStore
	podcasts  store.PodcastStore
	auth      *auth.Service
	content   *content.Service
	discovery *content.Discovery
	media     *media.Service
	queue     *queue.Queue
	db        *store.Client
	logger    *logging.Logger
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewDefaultLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer closer.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := store.NewClient(ctx, cfg.Mongo)
	cancel()
	if err != nil {
		logger.Fatalf("Failed to connect to document store: %v", err)
	}
	defer db.Close(context.Background())

	blobs, err := storage.New(cfg.Storage, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize blob storage: %v", err)
	}

	discoveryCache, err := cache.NewCache(cfg.Redis)
	if err != nil {
		logger.Fatalf("Failed to connect to cache: %v", err)
	}
	defer discoveryCache.Close()

	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	codec := token.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, cfg.Auth.VerificationTTL)
	mediaSvc := media.NewService(blobs)

	accounts := db.Accounts()
	podcasts := db.Podcasts()

	api := &API{
		accounts:  accounts,
		podcasts:  podcasts,
		auth:      auth.NewService(accounts, codec, q, discoveryCache, cfg.Auth, logger),
		content:   content.NewService(podcasts, accounts, mediaSvc, discoveryCache, logger),
		discovery: content.NewDiscovery(podcasts, accounts, discoveryCache, logger),
		media:     mediaSvc,
		queue:     q,
		db:        db,
		logger:    logger,
	}

	router := setupRouter(api, codec, cfg)

	metricsServer := metrics.NewServer(cfg.Server.MetricsPort)
	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.ErrorWithErr("metrics server failed", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr("metrics server shutdown failed", err)
	}

	logger.Info("Server stopped")
}

func setupRouter(api *API, codec *token.Codec, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(api.logger))
	router.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)))

	router.GET("/health", api.healthCheck)

	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", api.register)
		authRoutes.POST("/login", api.login)
		authRoutes.POST("/refresh", api.refresh)
		authRoutes.POST("/verify-email", api.verifyEmail)
		authRoutes.POST("/send-verification", api.sendVerification)
		authRoutes.POST("/forgot-password", api.forgotPassword)
		authRoutes.POST("/reset-password", api.resetPassword)
	}

	me := router.Group("/api/me")
	me.Use(middleware.JWTAuth(codec, api.accounts))
	{
		me.GET("", api.getProfile)
		me.PATCH("", api.updateProfile)
		me.DELETE("", api.deleteAccount)
		me.POST("/profile-image-url", api.profileImageUploadURL)
		me.POST("/sign-out", api.signOut)
		me.POST("/change-password", api.changePassword)

		me.GET("/podcasts", api.listMyPodcasts)
		me.POST("/podcasts", api.createPodcast)
		me.GET("/podcasts/:id", api.getMyPodcast)
		me.PATCH("/podcasts/:id", api.updatePodcast)
		me.DELETE("/podcasts/:id", api.deletePodcast)
		me.POST("/podcasts/:id/publish", api.publishPodcast)
		me.POST("/podcasts/:id/archive", api.archivePodcast)
		me.POST("/podcasts/:id/cover-url", api.podcastCoverUploadURL)
		me.POST("/podcasts/:id/banner-url", api.podcastBannerUploadURL)

		me.POST("/podcasts/:id/episodes", api.addEpisode)
		me.PATCH("/podcasts/:id/episodes/:index", api.updateEpisode)
		me.DELETE("/podcasts/:id/episodes/:index", api.deleteEpisode)
		me.POST("/podcasts/:id/episodes/:index/publish", api.publishEpisode)
		me.POST("/podcasts/:id/episodes/:index/archive", api.archiveEpisode)
		me.POST("/podcasts/:id/episodes/:index/image-url", api.episodeImageUploadURL)
		me.POST("/podcasts/:id/episodes/:index/audio-url", api.episodeAudioUploadURL)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.JWTAuth(codec, api.accounts), middleware.RequireAdmin())
	{
		admin.GET("/accounts", api.adminListAccounts)
		admin.GET("/accounts/:id", api.adminGetAccount)
		admin.POST("/accounts/:id/lock", api.adminLockAccount)
		admin.POST("/accounts/:id/unlock", api.adminUnlockAccount)
		admin.DELETE("/accounts/:id", api.adminDeleteAccount)

		admin.GET("/podcasts", api.adminListPodcasts)
		admin.GET("/podcasts/:id", api.adminGetPodcast)
		admin.POST("/podcasts/:id/flag", api.adminFlagPodcast)
		admin.POST("/podcasts/:id/unflag", api.adminUnflagPodcast)
		admin.DELETE("/podcasts/:id", api.adminDeletePodcast)
		admin.DELETE("/podcasts/:id/episodes/:index", api.adminDeleteEpisode)
	}

	public := router.Group("/api/public")
	{
		public.GET("/podcasts", api.publicListPodcasts)
		public.GET("/podcasts/:id", api.publicGetPodcast)
		public.GET("/podcasts/:id/media-url", api.publicMediaURL)
		public.GET("/creators/:id", api.publicGetCreator)
		public.GET("/creators/:id/podcasts", api.publicListCreatorPodcasts)
	}

	return router
}

// Health check endpoint
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := api.db.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// notifyDeletion enqueues the farewell mail after an account cascade. The
// deletion has already committed, so a publish failure is only logged.
func (api *API) notifyDeletion(c *gin.Context, email, username string) {
	job := &models.MailJob{
		ID:         uuid.New().String(),
		Kind:       models.MailKindDeletion,
		To:         email,
		Username:   username,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := api.queue.PublishMail(c.Request.Context(), job); err != nil {
		api.logger.ErrorWithErr("failed to enqueue deletion mail", err)
		return
	}
	metrics.MailJobsEnqueuedTotal.WithLabelValues(string(models.MailKindDeletion)).Inc()
}
