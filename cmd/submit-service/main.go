package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mirocommunity/submit-service/internal/cache"
	"github.com/mirocommunity/submit-service/internal/classify"
	"github.com/mirocommunity/submit-service/internal/config"
	"github.com/mirocommunity/submit-service/internal/events"
	"github.com/mirocommunity/submit-service/internal/http/handlers/submit"
	"github.com/mirocommunity/submit-service/internal/http/handlers/users"
	wsHandler "github.com/mirocommunity/submit-service/internal/http/handlers/websocket"
	"github.com/mirocommunity/submit-service/internal/http/middleware"
	"github.com/mirocommunity/submit-service/internal/ratelimit"
	"github.com/mirocommunity/submit-service/internal/resolver"
	"github.com/mirocommunity/submit-service/internal/services/media"
	"github.com/mirocommunity/submit-service/internal/staging"
	"github.com/mirocommunity/submit-service/internal/storage/postgres"
	"github.com/mirocommunity/submit-service/internal/types"
	"github.com/mirocommunity/submit-service/internal/websocket"
)

const submitURL = "/submit/"

var dests = classify.Destinations{
	Scraped: "/submit/scraped/",
	Direct:  "/submit/directlink/",
	Embed:   "/submit/embed/",
}

func main() {
	// load config
	cfg := config.MustLoad()

	// database setup
	storage, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	// redis setup
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	slog.Info("Connected to Redis")

	cacheService := cache.NewCacheService(storage, redisClient)
	stagingStore := staging.NewStore(redisClient, time.Duration(cfg.Submit.StagingTTL)*time.Second)
	videoResolver := resolver.NewService()

	// thumbnail storage is optional; submissions still work without it
	var thumbnails media.ThumbnailStore
	if mediaService, err := media.NewService(cfg); err != nil {
		slog.Warn("Thumbnail storage unavailable, uploads disabled",
			slog.String("error", err.Error()))
	} else {
		thumbnails = mediaService
	}

	// moderation live feed
	hub := websocket.NewHub()
	go hub.Run()

	notifier := events.NewNotifier()
	notifier.Subscribe(events.NewHubListener(hub))
	notifier.Subscribe(func(video *types.Video) {
		slog.Info("Submission finished",
			slog.String("video_id", video.ID),
			slog.String("name", video.Name))
	})

	submitHandlers := submit.NewHandlers(cacheService, stagingStore, videoResolver,
		notifier, thumbnails, dests, submitURL, cfg.Submit.RequireEmail)

	bucket := ratelimit.NewTokenBucket(redisClient, cfg.Submit.RateLimit, cfg.Submit.RateLimit)

	// submission endpoints share the session/auth/permission/rate-limit chain
	submitRouter := http.NewServeMux()
	submitRouter.HandleFunc("GET /submit/", submitHandlers.SubmitURL())
	submitRouter.HandleFunc("POST /submit/", submitHandlers.SubmitURL())
	for _, destination := range []string{dests.Scraped, dests.Embed, dests.Direct} {
		submitRouter.HandleFunc("GET "+destination, submitHandlers.SubmitVideo(destination))
		submitRouter.HandleFunc("POST "+destination, submitHandlers.SubmitVideo(destination))
	}

	var submitChain http.Handler = submitRouter
	submitChain = middleware.RateLimitSubmissions(bucket, cfg.Submit.RateLimit)(submitChain)
	submitChain = middleware.RequireSubmitPermissions(cacheService)(submitChain)
	submitChain = middleware.OptionalAuthMiddleware(cfg.JWTSecret)(submitChain)
	submitChain = middleware.SessionMiddleware(submitChain)

	router := http.NewServeMux()
	router.Handle("/submit/", submitChain)
	// The confirmation page is not permission-gated; anyone who finished a
	// submission may view it.
	router.Handle("GET /submit/thanks/{video_id}",
		middleware.SessionMiddleware(submitHandlers.Thanks()))
	router.HandleFunc("POST /signup", users.SignUp(cacheService))
	router.HandleFunc("POST /signin", users.SignIn(cacheService, cfg.JWTSecret))
	router.HandleFunc("GET /ws", wsHandler.ModerationFeedHandler(hub, cfg.JWTSecret))
	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: router,
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
