package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"submerge/cache"
	"submerge/config"
	"submerge/core/auth"
	"submerge/core/discovery"
	"submerge/core/feed"
	"submerge/core/follow"
	"submerge/core/playback"
	"submerge/core/post"
	"submerge/core/session"
	"submerge/db"
	"submerge/logger"
	"submerge/model"
	"submerge/repository"
	"submerge/storage"
)

// Start wires the application together and runs the HTTP server until an
// interrupt signal arrives.
func Start() {
	cfg := config.Load()
	logger.InitLogger(logger.Config{Level: logger.LogLevel(cfg.LogLevel), OutputPath: cfg.LogPath})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect gorm", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect to Redis", logger.ErrorField(err))
	}
	defer cache.CloseRedis()

	if err := db.InitDB(); err != nil {
		logger.Fatal("failed to initialize database schema", logger.ErrorField(err))
	}
	if err := db.AutoMigrateModels(&model.Post{}); err != nil {
		logger.Fatal("failed to migrate models", logger.ErrorField(err))
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	postRepo := repository.NewGormPostRepository(db.GormDB)

	sessionCache := cache.NewSessionCache(cfg.JWTTTL)
	profileCache := cache.NewProfileCache(5 * time.Minute)
	trackCache := cache.NewTrackCache(cfg.TrackTTL)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	sessions := session.NewManager(userRepo, tokens, sessionCache)

	composer := post.NewComposer(postRepo, userRepo, storage.NewMediaStore(), cache.PublishPostsChanged)
	follows := follow.NewService(userRepo, profileCache.Invalidate)

	discoveryClient := discovery.NewClient(cfg.DiscoveryBaseURL, cfg.DiscoveryAppName, cfg.DiscoveryTimeout)
	playbackClient := playback.NewClient(cfg.PlaybackAPIURL, cfg.PlaybackToken, 10*time.Second)

	feedHub := feed.NewHub()
	feedSync := feed.NewSynchronizer(postRepo, userRepo, profileCache, feedHub, cfg.FeedTick)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feedHub.Run()
	defer feedHub.Stop()
	go feedSync.Run(runCtx)

	apiHandler := NewAPIHandler(cfg, tokens, sessions, composer, follows,
		discoveryClient, trackCache, feedSync, feedHub, playbackClient,
		storage.NewMediaStore())

	server.Handler = NewRouter(apiHandler)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// NewRouter builds the route table with the CORS middleware applied.
func NewRouter(apiHandler *APIHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Auth endpoints
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", apiHandler.AuthMiddleware(apiHandler.LogoutHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/me", apiHandler.AuthMiddleware(apiHandler.MeHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/refresh", apiHandler.AuthMiddleware(apiHandler.RefreshHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/profile", apiHandler.AuthMiddleware(apiHandler.CompleteProfileHandler)).Methods(http.MethodPost)

	// Track discovery endpoints
	router.HandleFunc("/api/trending", apiHandler.TrendingHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/trending/{category}", apiHandler.TrendingCategoryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/search", apiHandler.SearchHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}/stream", apiHandler.StreamHandler).Methods(http.MethodGet)

	// Post endpoints
	router.HandleFunc("/api/posts", apiHandler.AuthMiddleware(apiHandler.CreatePostHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/posts", apiHandler.AuthMiddleware(apiHandler.ListPostsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/posts/{id}/like", apiHandler.AuthMiddleware(apiHandler.LikePostHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/upload", apiHandler.AuthMiddleware(apiHandler.UploadMediaHandler)).Methods(http.MethodPost)

	// Follow endpoints
	router.HandleFunc("/api/follow/{musicianId}", apiHandler.AuthMiddleware(apiHandler.FollowHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/follow/{musicianId}", apiHandler.AuthMiddleware(apiHandler.UnfollowHandler)).Methods(http.MethodDelete)

	// Live feed
	router.HandleFunc("/ws/feed", apiHandler.FeedWebSocketHandler).Methods(http.MethodGet)

	// Remote playback
	router.HandleFunc("/api/playback/{command}", apiHandler.AuthMiddleware(apiHandler.PlaybackCommandHandler)).Methods(http.MethodPost)

	return router
}
